package migration

import (
	"context"
	"io"
	"log/slog"

	"github.com/roach88/ctmigrate/internal/ir"
)

// Func is a migration script. It receives the recording handle and may block
// on its own setup before returning; the log is sealed when it returns.
type Func func(ctx context.Context, m *Migration) error

// Option configures a recording.
type Option func(*session)

// WithLogger sets the logger used for debug output. Defaults to discarding.
func WithLogger(logger *slog.Logger) Option {
	return func(s *session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Record runs fn exactly once and returns every action it caused, in emission
// order. If fn returns an error, Record returns that error unchanged and no
// log: partial logs are never surfaced.
func Record(ctx context.Context, fn Func, opts ...Option) (ir.ActionLog, error) {
	s := &session{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(s)
	}

	m := &Migration{s: s}
	err := fn(ctx, m)
	s.sealed = true
	if err != nil {
		s.logger.Debug("migration failed during recording", "error", err, "actions", len(s.actions))
		return nil, err
	}

	s.logger.Debug("migration recorded", "actions", len(s.actions))
	return s.actions, nil
}

// session is the mutable state of one recording.
type session struct {
	actions  ir.ActionLog
	callsite *ir.Callsite
	sealed   bool
	logger   *slog.Logger
	ctIDs    InstanceIDs
}

func (s *session) dispatch(a ir.Action) {
	if s.sealed {
		panic("migration: builder used after Record returned")
	}
	if s.callsite != nil {
		cs := *s.callsite
		a.Callsite = &cs
	}
	s.logger.Debug("action recorded",
		"type", a.Type,
		"content_type", a.Meta.ContentTypeInstanceID,
		"field", a.Meta.FieldInstanceID,
	)
	s.actions = append(s.actions, a)
}

func (s *session) setCallsite(cs ir.Callsite) {
	s.callsite = &cs
}

// Migration is the entry point handed to a migration script.
type Migration struct {
	s *session
}

// At sets the source location stamped on every action recorded from now on.
func (m *Migration) At(cs ir.Callsite) *Migration {
	m.s.setCallsite(cs)
	return m
}

// CreateContentType records the creation of content type id. Each entry of
// init is applied as a builder call, in sorted key order.
func (m *Migration) CreateContentType(id string, init ir.Object) *ContentType {
	n := m.s.ctIDs.Next(id)
	m.s.dispatch(ir.Action{
		Type:    ir.ContentTypeCreate,
		Meta:    ir.Meta{ContentTypeInstanceID: ir.ContentTypeInstanceID(id, n)},
		Payload: ir.Payload{ContentTypeID: id},
	})
	return newContentType(m.s, id, n, init)
}

// EditContentType opens content type id for editing. No action is recorded
// for the edit itself; its existence is checked by the validator when the
// builder is used.
func (m *Migration) EditContentType(id string, changes ir.Object) *ContentType {
	n := m.s.ctIDs.Next(id)
	return newContentType(m.s, id, n, changes)
}

// DeleteContentType records the deletion of content type id.
func (m *Migration) DeleteContentType(id string) {
	n := m.s.ctIDs.Next(id)
	m.s.dispatch(ir.Action{
		Type:    ir.ContentTypeDelete,
		Meta:    ir.Meta{ContentTypeInstanceID: ir.ContentTypeInstanceID(id, n)},
		Payload: ir.Payload{ContentTypeID: id},
	})
}
