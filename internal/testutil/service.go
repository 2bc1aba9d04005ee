package testutil

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/roach88/ctmigrate/internal/ir"
)

const entriesPrefix = "/entries?"

// FakeService answers entry lookups from a table of entry counts per content
// type id. Unknown content types have no entries.
//
// Thread-safety: all methods are safe for concurrent use.
type FakeService struct {
	mu       sync.Mutex
	counts   map[string]int
	failures map[string]error
	requests []ir.HTTPRequest
	inFlight int
	peak     int

	// Delay is how long each request blocks before answering.
	Delay time.Duration
}

// NewFakeService creates a service with the given entry counts.
func NewFakeService(counts map[string]int) *FakeService {
	if counts == nil {
		counts = map[string]int{}
	}
	return &FakeService{counts: counts, failures: map[string]error{}}
}

// Fail makes lookups for content type id return err.
func (s *FakeService) Fail(id string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[id] = err
}

// Request implements ir.RequestFunc.
func (s *FakeService) Request(ctx context.Context, req ir.HTTPRequest) (ir.CollectionResponse, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.inFlight++
	s.peak = max(s.peak, s.inFlight)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight--
		s.mu.Unlock()
	}()

	if s.Delay > 0 {
		select {
		case <-time.After(s.Delay):
		case <-ctx.Done():
			return ir.CollectionResponse{}, ctx.Err()
		}
	}

	if !strings.HasPrefix(req.URL, entriesPrefix) {
		return ir.CollectionResponse{}, errors.New("fake service: unsupported request " + req.URL)
	}
	query, err := url.ParseQuery(strings.TrimPrefix(req.URL, entriesPrefix))
	if err != nil {
		return ir.CollectionResponse{}, err
	}
	id := query.Get("sys.contentType.sys.id")

	s.mu.Lock()
	n, failure := s.counts[id], s.failures[id]
	s.mu.Unlock()
	if failure != nil {
		return ir.CollectionResponse{}, failure
	}

	items := make([]json.RawMessage, n)
	for i := range items {
		items[i] = json.RawMessage(`{"sys":{"type":"Entry"}}`)
	}
	return ir.CollectionResponse{Total: n, Items: items}, nil
}

// Requests returns a copy of every request received, in arrival order.
func (s *FakeService) Requests() []ir.HTTPRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ir.HTTPRequest(nil), s.requests...)
}

// Peak returns the largest number of requests that were in flight at once.
func (s *FakeService) Peak() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.peak
}
