package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/ctmigrate/internal/ir"
)

// ErrPlanNotFound is returned by ReadPlan for an unknown run id.
var ErrPlanNotFound = errors.New("plan not found")

// Plan is one run to append.
type Plan struct {
	Name   string
	Source string
	Chunks []ir.Chunk
	Errors []ir.ValidationError
}

// PlanSummary is a stored run without its actions.
type PlanSummary struct {
	ID          string `json:"id"`
	Seq         int64  `json:"seq"`
	Name        string `json:"name"`
	Source      string `json:"source,omitempty"`
	PlanHash    string `json:"plan_hash"`
	Actions     int    `json:"actions"`
	Chunks      int    `json:"chunks"`
	Errors      int    `json:"errors"`
	ToolVersion string `json:"tool_version"`
	PlanVersion string `json:"plan_version"`
}

// PlanRecord is a stored run with its chunks and errors.
type PlanRecord struct {
	PlanSummary
	ChunkList []ir.Chunk
	ErrorList []ir.ValidationError
	ActionIDs []string
}

// NewRunID returns a time-ordered run id.
func NewRunID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate run id: %w", err)
	}
	return id.String(), nil
}

// WritePlan appends p as a new run and returns its summary. The whole run is
// written in one transaction.
func (s *Store) WritePlan(ctx context.Context, p Plan) (PlanSummary, error) {
	var log ir.ActionLog
	for _, c := range p.Chunks {
		log = append(log, c...)
	}

	hash, err := ir.PlanHash(log)
	if err != nil {
		return PlanSummary{}, fmt.Errorf("write plan: %w", err)
	}
	id, err := NewRunID()
	if err != nil {
		return PlanSummary{}, fmt.Errorf("write plan: %w", err)
	}

	sum := PlanSummary{
		ID:          id,
		Name:        p.Name,
		Source:      p.Source,
		PlanHash:    hash,
		Actions:     len(log),
		Chunks:      len(p.Chunks),
		Errors:      len(p.Errors),
		ToolVersion: ir.ToolVersion,
		PlanVersion: ir.PlanVersion,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return PlanSummary{}, fmt.Errorf("write plan: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM plans`).Scan(&sum.Seq); err != nil {
		return PlanSummary{}, fmt.Errorf("write plan: next seq: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO plans
		(id, seq, name, source, plan_hash, action_count, chunk_count, error_count, tool_version, plan_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		sum.ID, sum.Seq, sum.Name, sum.Source, sum.PlanHash,
		sum.Actions, sum.Chunks, sum.Errors, sum.ToolVersion, sum.PlanVersion,
	)
	if err != nil {
		return PlanSummary{}, fmt.Errorf("write plan: %w", err)
	}

	seq := int64(0)
	for ci, c := range p.Chunks {
		for _, a := range c {
			if err := writeAction(ctx, tx, sum.ID, hash, seq, ci, a); err != nil {
				return PlanSummary{}, fmt.Errorf("write plan: action %d: %w", seq, err)
			}
			seq++
		}
	}

	for i, e := range p.Errors {
		step, err := ir.MarshalCanonical(e.Details.Step)
		if err != nil {
			return PlanSummary{}, fmt.Errorf("write plan: error %d: %w", i, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO validation_errors (plan_id, seq, type, message, step)
			VALUES (?, ?, ?, ?, ?)
		`, sum.ID, i, e.Type, e.Message, string(step))
		if err != nil {
			return PlanSummary{}, fmt.Errorf("write plan: error %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return PlanSummary{}, fmt.Errorf("write plan: commit: %w", err)
	}
	return sum, nil
}

func writeAction(ctx context.Context, tx *sql.Tx, planID, planHash string, seq int64, chunk int, a ir.Action) error {
	actionID, err := ir.ActionID(planHash, seq, a)
	if err != nil {
		return err
	}
	data, err := ir.MarshalCanonical(a)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO actions
		(plan_id, seq, chunk, id, type, content_type_instance_id, field_instance_id, action)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		planID, seq, chunk, actionID, string(a.Type),
		a.Meta.ContentTypeInstanceID, a.Meta.FieldInstanceID, string(data),
	)
	return err
}

const summaryColumns = `id, seq, name, source, plan_hash, action_count, chunk_count, error_count, tool_version, plan_version`

func scanSummary(row interface{ Scan(...any) error }) (PlanSummary, error) {
	var p PlanSummary
	err := row.Scan(&p.ID, &p.Seq, &p.Name, &p.Source, &p.PlanHash,
		&p.Actions, &p.Chunks, &p.Errors, &p.ToolVersion, &p.PlanVersion)
	return p, err
}

// ListPlans returns every stored run, oldest first. Returns an empty slice
// (not nil) when the store is empty.
func (s *Store) ListPlans(ctx context.Context) ([]PlanSummary, error) {
	return s.querySummaries(ctx, `SELECT `+summaryColumns+` FROM plans ORDER BY seq ASC`)
}

// PlansByHash returns every run of the plan with the given hash, oldest first.
func (s *Store) PlansByHash(ctx context.Context, hash string) ([]PlanSummary, error) {
	return s.querySummaries(ctx, `SELECT `+summaryColumns+` FROM plans WHERE plan_hash = ? ORDER BY seq ASC`, hash)
}

func (s *Store) querySummaries(ctx context.Context, query string, args ...any) ([]PlanSummary, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query plans: %w", err)
	}
	defer rows.Close()

	plans := []PlanSummary{}
	for rows.Next() {
		p, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plans: %w", err)
	}
	return plans, nil
}

// ReadPlan returns the run with the given id, rebuilding its chunks.
func (s *Store) ReadPlan(ctx context.Context, id string) (*PlanRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+summaryColumns+` FROM plans WHERE id = ?`, id)
	sum, err := scanSummary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("read plan %s: %w", id, ErrPlanNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read plan %s: %w", id, err)
	}

	rec := &PlanRecord{PlanSummary: sum, ChunkList: []ir.Chunk{}, ErrorList: []ir.ValidationError{}}
	if err := s.readActions(ctx, rec); err != nil {
		return nil, err
	}
	if err := s.readErrors(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Store) readActions(ctx context.Context, rec *PlanRecord) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT chunk, id, action
		FROM actions
		WHERE plan_id = ?
		ORDER BY seq ASC
	`, rec.ID)
	if err != nil {
		return fmt.Errorf("query actions: %w", err)
	}
	defer rows.Close()

	last := -1
	for rows.Next() {
		var chunk int
		var actionID, data string
		if err := rows.Scan(&chunk, &actionID, &data); err != nil {
			return fmt.Errorf("scan action: %w", err)
		}

		var a ir.Action
		if err := json.Unmarshal([]byte(data), &a); err != nil {
			return fmt.Errorf("unmarshal action %s: %w", actionID, err)
		}

		if chunk != last {
			rec.ChunkList = append(rec.ChunkList, ir.Chunk{})
			last = chunk
		}
		n := len(rec.ChunkList) - 1
		rec.ChunkList[n] = append(rec.ChunkList[n], a)
		rec.ActionIDs = append(rec.ActionIDs, actionID)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate actions: %w", err)
	}
	return nil
}

func (s *Store) readErrors(ctx context.Context, rec *PlanRecord) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT type, message, step
		FROM validation_errors
		WHERE plan_id = ?
		ORDER BY seq ASC
	`, rec.ID)
	if err != nil {
		return fmt.Errorf("query validation errors: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e ir.ValidationError
		var step string
		if err := rows.Scan(&e.Type, &e.Message, &step); err != nil {
			return fmt.Errorf("scan validation error: %w", err)
		}
		if err := json.Unmarshal([]byte(step), &e.Details.Step); err != nil {
			return fmt.Errorf("unmarshal validation error step: %w", err)
		}
		rec.ErrorList = append(rec.ErrorList, e)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate validation errors: %w", err)
	}
	return nil
}
