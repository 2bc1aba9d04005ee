package script

import (
	"errors"
	"fmt"

	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/ctmigrate/internal/ir"
)

// Load error codes.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeNotFound    = "E005" // Script not found
	ErrCodeBuildFailed = "E006" // CUE build failed

	ErrCodeUnknownOp    = "E201" // Unknown step op
	ErrCodeMissingField = "E202" // Required step field missing
	ErrCodeInvalidValue = "E203" // Wrong kind, float or incomplete value
	ErrCodeUnknownField = "E204" // Unknown step field
	ErrCodeParseFailed  = "E205" // Malformed CUE or YAML
	ErrCodeUnsupported  = "E206" // Unsupported script extension
)

// LoadError is a problem found while loading a script.
type LoadError struct {
	Code    string
	Message string
	Pos     ir.Callsite
}

func (e *LoadError) Error() string {
	if e.Pos.File != "" {
		return fmt.Sprintf("%s: %s: %s", e.Pos, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newLoadError(code string, pos ir.Callsite, format string, args ...any) *LoadError {
	return &LoadError{Code: code, Message: fmt.Sprintf(format, args...), Pos: pos}
}

func callsiteFromCUE(pos token.Pos) ir.Callsite {
	if !pos.IsValid() {
		return ir.Callsite{}
	}
	return ir.Callsite{File: pos.Filename(), Line: pos.Line(), Column: pos.Column()}
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(code string, err error) error {
	if err == nil {
		return nil
	}

	var le *LoadError
	if errors.As(err, &le) {
		return le
	}

	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Code: code, Message: err.Error()}
	}

	first := errs[0]
	var pos ir.Callsite
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		pos = callsiteFromCUE(positions[0])
	}
	return &LoadError{Code: code, Message: first.Error(), Pos: pos}
}
