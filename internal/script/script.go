// Package script loads declarative migration scripts and replays them
// through the recorder.
//
// A script is an ordered list of steps, written either in CUE
//
//	migration: [
//		{op: "createContentType", id: "person", props: name: "Person"},
//		{op: "createField", contentType: "person", id: "name", props: type: "Symbol"},
//	]
//
// or in YAML under a top-level steps key. Every step carries its source
// position, which becomes the callsite of the actions it records.
package script

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/roach88/ctmigrate/internal/ir"
	"github.com/roach88/ctmigrate/internal/migration"
)

// Step ops.
const (
	OpCreateContentType     = "createContentType"
	OpEditContentType       = "editContentType"
	OpDeleteContentType     = "deleteContentType"
	OpCreateField           = "createField"
	OpEditField             = "editField"
	OpAppendFieldValidation = "appendFieldValidation"
	OpDeleteField           = "deleteField"
	OpChangeFieldID         = "changeFieldId"
	OpMoveField             = "moveField"
)

// Step keys.
const (
	keyOp          = "op"
	keyContentType = "contentType"
	keyID          = "id"
	keyNewID       = "newId"
	keyProps       = "props"
	keyDirection   = "direction"
	keyPivot       = "pivot"
)

var knownKeys = map[string]bool{
	keyOp: true, keyContentType: true, keyID: true, keyNewID: true,
	keyProps: true, keyDirection: true, keyPivot: true,
}

// Step is one declarative migration call.
type Step struct {
	Op          string
	ContentType string
	ID          string
	NewID       string
	Props       ir.Object
	Direction   string
	Pivot       string
	Pos         ir.Callsite
}

// Script is a loaded migration script.
type Script struct {
	File  string
	Steps []Step
}

func isContentTypeOp(op string) bool {
	switch op {
	case OpCreateContentType, OpEditContentType, OpDeleteContentType:
		return true
	}
	return false
}

func isFieldOp(op string) bool {
	switch op {
	case OpCreateField, OpEditField, OpAppendFieldValidation, OpDeleteField, OpChangeFieldID, OpMoveField:
		return true
	}
	return false
}

func takesProps(op string) bool {
	switch op {
	case OpCreateContentType, OpEditContentType, OpCreateField, OpEditField, OpAppendFieldValidation:
		return true
	}
	return false
}

// checkStep enforces the fields each op requires. Movement directions are
// not checked here; an unknown direction is a validation finding.
func checkStep(st Step) error {
	switch {
	case st.Op == "":
		return newLoadError(ErrCodeMissingField, st.Pos, "step has no op")
	case !isContentTypeOp(st.Op) && !isFieldOp(st.Op):
		return newLoadError(ErrCodeUnknownOp, st.Pos, "unknown op %q", st.Op)
	case st.ID == "":
		return newLoadError(ErrCodeMissingField, st.Pos, "%s requires %s", st.Op, keyID)
	case isFieldOp(st.Op) && st.ContentType == "":
		return newLoadError(ErrCodeMissingField, st.Pos, "%s requires %s", st.Op, keyContentType)
	case isContentTypeOp(st.Op) && st.ContentType != "":
		return newLoadError(ErrCodeUnknownField, st.Pos, "%s does not take %s; use %s", st.Op, keyContentType, keyID)
	case st.Props != nil && !takesProps(st.Op):
		return newLoadError(ErrCodeUnknownField, st.Pos, "%s does not take %s", st.Op, keyProps)
	case st.Op == OpChangeFieldID && st.NewID == "":
		return newLoadError(ErrCodeMissingField, st.Pos, "%s requires %s", st.Op, keyNewID)
	case st.Op != OpChangeFieldID && st.NewID != "":
		return newLoadError(ErrCodeUnknownField, st.Pos, "%s does not take %s", st.Op, keyNewID)
	case st.Op == OpMoveField && st.Direction == "":
		return newLoadError(ErrCodeMissingField, st.Pos, "%s requires %s", st.Op, keyDirection)
	case st.Op != OpMoveField && (st.Direction != "" || st.Pivot != ""):
		return newLoadError(ErrCodeUnknownField, st.Pos, "%s does not take %s or %s", st.Op, keyDirection, keyPivot)
	case (st.Direction == ir.DirectionBeforeField || st.Direction == ir.DirectionAfterField) && st.Pivot == "":
		return newLoadError(ErrCodeMissingField, st.Pos, "%s %s requires %s", st.Op, st.Direction, keyPivot)
	}
	return nil
}

// Run replays the script through m. It satisfies migration.Func.
//
// Field steps use the most recent builder for their content type. When the
// script has not opened one, an editContentType is implied.
func (s *Script) Run(ctx context.Context, m *migration.Migration) error {
	builders := make(map[string]*migration.ContentType)
	builder := func(id string) *migration.ContentType {
		if b, ok := builders[id]; ok {
			return b
		}
		b := m.EditContentType(id, nil)
		builders[id] = b
		return b
	}

	for _, st := range s.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if st.Pos.File != "" {
			m.At(st.Pos)
		}

		switch st.Op {
		case OpCreateContentType:
			builders[st.ID] = m.CreateContentType(st.ID, st.Props)
		case OpEditContentType:
			builders[st.ID] = m.EditContentType(st.ID, st.Props)
		case OpDeleteContentType:
			m.DeleteContentType(st.ID)
			delete(builders, st.ID)
		case OpCreateField:
			builder(st.ContentType).CreateField(st.ID, st.Props)
		case OpEditField:
			builder(st.ContentType).EditField(st.ID, st.Props)
		case OpAppendFieldValidation:
			builder(st.ContentType).AppendFieldValidation(st.ID, st.Props)
		case OpDeleteField:
			builder(st.ContentType).DeleteField(st.ID)
		case OpChangeFieldID:
			builder(st.ContentType).ChangeFieldID(st.ID, st.NewID)
		case OpMoveField:
			builder(st.ContentType).MoveField(st.ID).Move(st.Direction, st.Pivot)
		default:
			return newLoadError(ErrCodeUnknownOp, st.Pos, "unknown op %q", st.Op)
		}
	}
	return nil
}

// Load reads a script, choosing the format by extension. A directory is
// loaded as a CUE package.
func Load(path string) (*Script, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue", "":
		return LoadCUE(path)
	case ".yaml", ".yml":
		return LoadYAML(path)
	default:
		return nil, newLoadError(ErrCodeUnsupported, ir.Callsite{}, "unsupported script %s: want .cue, .yaml or .yml", path)
	}
}

// RecordFile loads the script at path and records it.
func RecordFile(ctx context.Context, path string, opts ...migration.Option) (*Script, ir.ActionLog, error) {
	s, err := Load(path)
	if err != nil {
		return nil, nil, err
	}
	log, err := migration.Record(ctx, s.Run, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("record %s: %w", path, err)
	}
	return s, log, nil
}
