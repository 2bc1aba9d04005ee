package validate

import (
	"github.com/roach88/ctmigrate/internal/ir"
)

// contentTypeState tracks one content type id across the plan.
type contentTypeState struct {
	existsLocally  bool
	existsRemotely bool
	deletedLocally bool
	hasEntries     bool
	fields         map[string]*fieldState
}

func (s *contentTypeState) exists() bool {
	return !s.deletedLocally && (s.existsLocally || s.existsRemotely)
}

func (s *contentTypeState) field(id string) *fieldState {
	f, ok := s.fields[id]
	if !ok {
		f = &fieldState{}
		s.fields[id] = f
	}
	return f
}

// fieldState tracks one field id within a content type.
type fieldState struct {
	active      bool
	everExisted bool
}

// Lifecycle is the validator's state table. The zero value is an empty
// baseline; use NewLifecycle to seed it from remote content types.
type Lifecycle struct {
	contentTypes map[string]*contentTypeState
}

// NewLifecycle seeds a Lifecycle from the remote snapshot: every remote
// content type exists remotely and every remote field is active.
func NewLifecycle(remote []ir.RemoteContentType) *Lifecycle {
	l := &Lifecycle{}
	for _, ct := range remote {
		s := l.contentType(ct.Sys.ID)
		s.existsRemotely = true
		s.hasEntries = ct.HasEntries
		for _, f := range ct.Fields {
			s.fields[f.ID] = &fieldState{active: true, everExisted: true}
		}
	}
	return l
}

func (l *Lifecycle) contentType(id string) *contentTypeState {
	if l.contentTypes == nil {
		l.contentTypes = make(map[string]*contentTypeState)
	}
	s, ok := l.contentTypes[id]
	if !ok {
		s = &contentTypeState{fields: make(map[string]*fieldState)}
		l.contentTypes[id] = s
	}
	return s
}

// Step checks a against the current state, appends any violation to errs and
// advances the state. It returns the extended error list.
func (l *Lifecycle) Step(errs []ir.ValidationError, a ir.Action) []ir.ValidationError {
	ctID := a.Payload.ContentTypeID
	ct := l.contentType(ctID)

	switch a.Type {
	case ir.ContentTypeCreate:
		switch {
		case ct.existsLocally && !ct.deletedLocally:
			return append(errs, ir.NewInvalidAction(a, msgContentTypeDuplicateCreate, ctID))
		case ct.existsRemotely && !ct.deletedLocally:
			return append(errs, ir.NewInvalidAction(a, msgContentTypeAlreadyExists, ctID))
		}
		ct.existsLocally = true
		ct.deletedLocally = false
		ct.hasEntries = false
		ct.fields = make(map[string]*fieldState)

	case ir.ContentTypeUpdate:
		if !ct.exists() {
			return append(errs, ir.NewInvalidAction(a, msgContentTypeEditMissing, ctID))
		}

	case ir.ContentTypeDelete:
		if !ct.exists() {
			return append(errs, ir.NewInvalidAction(a, msgContentTypeDeleteMissing, ctID))
		}
		if ct.hasEntries {
			errs = append(errs, ir.NewInvalidAction(a, msgContentTypeHasEntries, ctID))
		}
		ct.deletedLocally = true
		ct.existsLocally = false
		ct.hasEntries = false
		ct.fields = make(map[string]*fieldState)

	case ir.FieldCreate:
		f := ct.field(a.Payload.FieldID)
		if f.active {
			return append(errs, ir.NewInvalidAction(a, msgFieldDuplicateCreate, a.Payload.FieldID))
		}
		if !ct.exists() {
			errs = append(errs, ir.NewInvalidAction(a, verbCreate.onMissingContentType, a.Payload.FieldID, ctID))
		}
		f.active = true
		f.everExisted = true

	case ir.FieldDelete:
		f, err := l.requireField(a, ct, verbDelete)
		if err != nil {
			return append(errs, *err)
		}
		f.active = false

	case ir.FieldUpdate, ir.FieldAppendValidation:
		if _, err := l.requireField(a, ct, verbEdit); err != nil {
			return append(errs, *err)
		}

	case ir.FieldMove:
		if _, err := l.requireField(a, ct, verbMove); err != nil {
			return append(errs, *err)
		}
		if err := checkMovement(a, ct); err != nil {
			return append(errs, *err)
		}

	case ir.FieldRename:
		f, err := l.requireField(a, ct, verbRename)
		if err != nil {
			return append(errs, *err)
		}
		newID := renameTarget(a)
		target := ct.field(newID)
		if target.active {
			return append(errs, ir.NewInvalidAction(a, msgFieldRenameConflict, a.Payload.FieldID, newID))
		}
		f.active = false
		target.active = true
		target.everExisted = true
	}

	return errs
}

// requireField applies the shared existence guards for actions that target
// a field which must currently be active. An active field on a missing
// content type comes from a field/create that was already reported, so it
// passes without a second content type error.
func (l *Lifecycle) requireField(a ir.Action, ct *contentTypeState, v fieldVerb) (*fieldState, *ir.ValidationError) {
	fieldID := a.Payload.FieldID
	f := ct.field(fieldID)
	switch {
	case f.active:
		return f, nil
	case !ct.exists():
		err := ir.NewInvalidAction(a, v.onMissingContentType, fieldID, a.Payload.ContentTypeID)
		return nil, &err
	case !f.everExisted:
		err := ir.NewInvalidAction(a, v.onNeverExisted, fieldID)
		return nil, &err
	case !f.active:
		err := ir.NewInvalidAction(a, v.onDeleted, fieldID)
		return nil, &err
	}
	return f, nil
}

func checkMovement(a ir.Action, ct *contentTypeState) *ir.ValidationError {
	m := a.Payload.Movement
	if m == nil {
		err := ir.NewInvalidAction(a, msgFieldUnknownMove, a.Payload.FieldID, "")
		return &err
	}

	switch m.Direction {
	case ir.DirectionToTheTop, ir.DirectionToTheBottom:
		return nil
	case ir.DirectionBeforeField, ir.DirectionAfterField:
		if pivot, ok := ct.fields[m.Pivot]; !ok || !pivot.active {
			err := ir.NewInvalidAction(a, msgFieldPivotMissing, a.Payload.FieldID, m.Pivot)
			return &err
		}
		return nil
	default:
		err := ir.NewInvalidAction(a, msgFieldUnknownMove, a.Payload.FieldID, m.Direction)
		return &err
	}
}

func renameTarget(a ir.Action) string {
	if s, ok := a.Payload.Props[ir.RenamePropNewID].(ir.String); ok {
		return string(s)
	}
	return ""
}
