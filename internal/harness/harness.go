package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/ctmigrate/internal/chunk"
	"github.com/roach88/ctmigrate/internal/migration"
	"github.com/roach88/ctmigrate/internal/script"
	"github.com/roach88/ctmigrate/internal/store"
	"github.com/roach88/ctmigrate/internal/validate"
)

// Option configures Run.
type Option func(*Harness)

// WithLogger sets the logger. Defaults to discarding.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Harness) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// Harness runs scenarios against a throwaway store.
type Harness struct {
	store  *store.Store
	logger *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Record the script
// 2. Partition and validate against the scenario baseline
// 3. Write the plan to the store and read it back
// 4. Compare errors and evaluate assertions on the stored plan
//
// A script that fails to load or record is an error, not a failed result.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store:  st,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}
	for _, opt := range opts {
		opt(h)
	}

	return h.run(context.Background(), scenario)
}

func (h *Harness) run(ctx context.Context, scenario *Scenario) (*Result, error) {
	_, log, err := script.RecordFile(ctx, scenario.Script, migration.WithLogger(h.logger))
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	chunks := chunk.Partition(log)
	errs := validate.Validate(chunks, scenario.RemoteContentTypes())
	h.logger.Debug("scenario planned",
		"scenario", scenario.Name,
		"actions", len(log),
		"chunks", len(chunks),
		"errors", len(errs),
	)

	sum, err := h.store.WritePlan(ctx, store.Plan{
		Name:   scenario.Name,
		Source: scenario.Script,
		Chunks: chunks,
		Errors: errs,
	})
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}
	rec, err := h.store.ReadPlan(ctx, sum.ID)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	result := NewResult()
	result.PlanHash = rec.PlanHash
	result.Chunks = rec.ChunkList
	result.Errors = rec.ErrorList

	for _, f := range matchErrors(result.Errors, scenario.ExpectErrors) {
		result.AddFailure(f)
	}
	for _, f := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddFailure(f)
	}
	return result, nil
}
