// Package entries marks remote content types that still hold entries.
//
// The validator refuses to delete a content type with entries, but it does no
// I/O. Annotate performs the lookups up front, one per content type a plan
// deletes, and returns an annotated copy of the remote snapshot.
package entries

import (
	"context"
	"fmt"
	"net/url"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/ctmigrate/internal/chunk"
	"github.com/roach88/ctmigrate/internal/ir"
)

// DefaultConcurrency bounds the number of lookups in flight.
const DefaultConcurrency = 4

// Option configures Annotate.
type Option func(*options)

type options struct {
	concurrency int
}

// WithConcurrency sets the maximum number of lookups in flight. Values below
// one are ignored.
func WithConcurrency(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// Request builds the lookup for content type id.
func Request(id string) ir.HTTPRequest {
	return ir.HTTPRequest{
		Method: "GET",
		URL:    "/entries?sys.contentType.sys.id=" + url.QueryEscape(id),
	}
}

// Annotate sets HasEntries on every remote content type that chunks delete.
// The result has the same length and order as remote; remote itself is not
// modified. Content types the plan does not delete keep their flag. Lookups
// run concurrently and any failure fails the whole call.
func Annotate(ctx context.Context, chunks []ir.Chunk, remote []ir.RemoteContentType, req ir.RequestFunc, opts ...Option) ([]ir.RemoteContentType, error) {
	o := options{concurrency: DefaultConcurrency}
	for _, opt := range opts {
		opt(&o)
	}

	deleted := chunk.DeletedContentTypes(chunks)
	if len(deleted) == 0 {
		return remote, nil
	}

	out := slices.Clone(remote)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)

	for i := range out {
		id := out[i].Sys.ID
		if !slices.Contains(deleted, id) {
			continue
		}
		g.Go(func() error {
			resp, err := req(gctx, Request(id))
			if err != nil {
				return fmt.Errorf("look up entries of content type %q: %w", id, err)
			}
			// Each goroutine writes only its own index.
			out[i].HasEntries = len(resp.Items) > 0
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
