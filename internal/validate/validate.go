package validate

import (
	"github.com/roach88/ctmigrate/internal/chunk"
	"github.com/roach88/ctmigrate/internal/ir"
)

// Validate checks every action of chunks against remote and returns all
// violations in action order. An empty result means the plan is valid.
// Chunk boundaries do not affect the outcome.
func Validate(chunks []ir.Chunk, remote []ir.RemoteContentType) []ir.ValidationError {
	return ValidateLog(chunk.Flatten(chunks), remote)
}

// ValidateLog is Validate over an unpartitioned action log.
func ValidateLog(log ir.ActionLog, remote []ir.RemoteContentType) []ir.ValidationError {
	l := NewLifecycle(remote)
	errs := []ir.ValidationError{}
	for _, a := range log {
		errs = l.Step(errs, a)
	}
	return errs
}
