package ir

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ActionType is the namespaced verb of a recorded action.
type ActionType string

// Action types emitted by the recorder.
const (
	ContentTypeCreate ActionType = "contentType/create"
	ContentTypeUpdate ActionType = "contentType/update"
	ContentTypeDelete ActionType = "contentType/delete"

	FieldCreate           ActionType = "field/create"
	FieldUpdate           ActionType = "field/update"
	FieldAppendValidation ActionType = "field/appendValidation"
	FieldDelete           ActionType = "field/delete"
	FieldMove             ActionType = "field/move"
	FieldRename           ActionType = "field/rename"
)

// IsContentTypeAction reports whether t targets a content type rather than a field.
func (t ActionType) IsContentTypeAction() bool {
	return strings.HasPrefix(string(t), "contentType/")
}

// Movement directions recorded by field/move.
const (
	DirectionToTheTop    = "toTheTop"
	DirectionToTheBottom = "toTheBottom"
	DirectionBeforeField = "beforeField"
	DirectionAfterField  = "afterField"
)

// RenamePropNewID is the props key carrying the target id of a field/rename.
const RenamePropNewID = "newId"

// Action is one recorded intended change. Actions are immutable once emitted
// and totally ordered by emission.
type Action struct {
	Type     ActionType `json:"type"`
	Meta     Meta       `json:"meta"`
	Payload  Payload    `json:"payload"`
	Callsite *Callsite  `json:"callsite,omitempty"`
}

// Meta carries the generation-qualified identity of the action's targets.
type Meta struct {
	ContentTypeInstanceID string `json:"contentTypeInstanceId"`
	FieldInstanceID       string `json:"fieldInstanceId,omitempty"`
}

// Payload carries the human-readable ids plus verb-specific data.
type Payload struct {
	ContentTypeID string    `json:"contentTypeId"`
	FieldID       string    `json:"fieldId,omitempty"`
	Props         Object    `json:"props,omitempty"`
	Movement      *Movement `json:"movement,omitempty"`
}

// Movement is the payload of a field/move action.
type Movement struct {
	Direction string `json:"direction"`
	Pivot     string `json:"pivot,omitempty"`
}

// Callsite is a source location supplied by the calling boundary.
type Callsite struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column,omitempty"`
}

func (c Callsite) String() string {
	if c.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", c.File, c.Line, c.Column)
	}
	return fmt.Sprintf("%s:%d", c.File, c.Line)
}

// ActionLog is the ordered list of actions produced by one recording.
type ActionLog []Action

// Chunk is a contiguous group of actions sharing a content-type boundary,
// the unit a downstream executor may submit together.
type Chunk []Action

// ContentTypeInstanceID renders the wire form of a content type instance id.
func ContentTypeInstanceID(id string, n int) string {
	return "contentType/" + id + "/" + strconv.Itoa(n)
}

// FieldInstanceID renders the wire form of a field instance id.
func FieldInstanceID(id string, n int) string {
	return "fields/" + id + "/" + strconv.Itoa(n)
}

// ErrorTypeInvalidAction is the type of every validation error.
const ErrorTypeInvalidAction = "InvalidAction"

// ValidationError is a semantic problem found in a plan. It references the
// offending action so callers can point at its callsite.
type ValidationError struct {
	Type    string       `json:"type"`
	Message string       `json:"message"`
	Details ErrorDetails `json:"details"`
}

// ErrorDetails holds the action that triggered a ValidationError.
type ErrorDetails struct {
	Step Action `json:"step"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if cs := e.Details.Step.Callsite; cs != nil {
		return fmt.Sprintf("%s: %s", cs, e.Message)
	}
	return e.Message
}

// NewInvalidAction builds an InvalidAction error for step.
func NewInvalidAction(step Action, format string, args ...any) ValidationError {
	return ValidationError{
		Type:    ErrorTypeInvalidAction,
		Message: fmt.Sprintf(format, args...),
		Details: ErrorDetails{Step: step},
	}
}

// RemoteContentType is the baseline snapshot of a content type that already
// exists on the live service.
type RemoteContentType struct {
	Sys          Sys           `json:"sys"`
	Name         string        `json:"name,omitempty"`
	DisplayField string        `json:"displayField,omitempty"`
	Fields       []RemoteField `json:"fields"`
	HasEntries   bool          `json:"hasEntries,omitempty"`
}

// Sys holds service-assigned metadata.
type Sys struct {
	ID      string `json:"id"`
	Version int64  `json:"version,omitempty"`
}

// RemoteField is a field on a remote content type. Items is kept raw: the
// service may put floats in item validations, which Value does not allow.
type RemoteField struct {
	ID        string          `json:"id"`
	Name      string          `json:"name,omitempty"`
	Type      string          `json:"type"`
	LinkType  string          `json:"linkType,omitempty"`
	Items     json.RawMessage `json:"items,omitempty"`
	Required  bool            `json:"required,omitempty"`
	Localized bool            `json:"localized,omitempty"`
	Disabled  bool            `json:"disabled,omitempty"`
	Omitted   bool            `json:"omitted,omitempty"`
	Deleted   bool            `json:"deleted,omitempty"`
}
