package migration

import (
	"github.com/roach88/ctmigrate/internal/ir"
)

// Content type properties settable through the builder.
const (
	PropName         = "name"
	PropDescription  = "description"
	PropDisplayField = "displayField"
)

// ContentType builds the actions for one content type instance.
type ContentType struct {
	s          *session
	id         string
	instanceID int
	fieldIDs   InstanceIDs
	props      ir.Object
}

func newContentType(s *session, id string, instanceID int, init ir.Object) *ContentType {
	ct := &ContentType{
		s:          s,
		id:         id,
		instanceID: instanceID,
		props:      ir.Object{},
	}
	for _, k := range init.SortedKeys() {
		ct.Set(k, init[k])
	}
	return ct
}

// ID returns the content type id.
func (ct *ContentType) ID() string { return ct.id }

// InstanceID returns the wire form of this builder's instance id.
func (ct *ContentType) InstanceID() string {
	return ir.ContentTypeInstanceID(ct.id, ct.instanceID)
}

// Props returns a copy of the properties set through this builder.
func (ct *ContentType) Props() ir.Object { return ct.props.Clone() }

// At sets the source location stamped on every action recorded from now on.
func (ct *ContentType) At(cs ir.Callsite) *ContentType {
	ct.s.setCallsite(cs)
	return ct
}

// Set records a contentType/update for prop.
func (ct *ContentType) Set(prop string, v ir.Value) *ContentType {
	ct.props[prop] = v
	ct.s.dispatch(ir.Action{
		Type:    ir.ContentTypeUpdate,
		Meta:    ir.Meta{ContentTypeInstanceID: ct.InstanceID()},
		Payload: ir.Payload{ContentTypeID: ct.id, Props: ir.Object{prop: v}},
	})
	return ct
}

// Name sets the content type's display name.
func (ct *ContentType) Name(name string) *ContentType {
	return ct.Set(PropName, ir.String(name))
}

// Description sets the content type description.
func (ct *ContentType) Description(description string) *ContentType {
	return ct.Set(PropDescription, ir.String(description))
}

// DisplayField sets the field used as the entry title.
func (ct *ContentType) DisplayField(fieldID string) *ContentType {
	return ct.Set(PropDisplayField, ir.String(fieldID))
}

// fieldMeta allocates a new instance id for fieldID.
func (ct *ContentType) fieldMeta(fieldID string) ir.Meta {
	n := ct.fieldIDs.Next(fieldID)
	return ir.Meta{
		ContentTypeInstanceID: ct.InstanceID(),
		FieldInstanceID:       ir.FieldInstanceID(fieldID, n),
	}
}

func (ct *ContentType) fieldBuilder(t ir.ActionType, meta ir.Meta, fieldID string, init ir.Object) *Field {
	f := &Field{id: fieldID, props: ir.Object{}}
	f.dispatch = func(prop string, v ir.Value) {
		ct.s.dispatch(ir.Action{
			Type:    t,
			Meta:    meta,
			Payload: ir.Payload{ContentTypeID: ct.id, FieldID: fieldID, Props: ir.Object{prop: v}},
		})
	}
	for _, k := range init.SortedKeys() {
		f.Set(k, init[k])
	}
	return f
}

// CreateField records a field/create and returns the field's builder.
func (ct *ContentType) CreateField(id string, init ir.Object) *Field {
	meta := ct.fieldMeta(id)
	ct.s.dispatch(ir.Action{
		Type:    ir.FieldCreate,
		Meta:    meta,
		Payload: ir.Payload{ContentTypeID: ct.id, FieldID: id},
	})
	return ct.fieldBuilder(ir.FieldUpdate, meta, id, init)
}

// EditField opens field id for editing without recording a create.
func (ct *ContentType) EditField(id string, init ir.Object) *Field {
	return ct.fieldBuilder(ir.FieldUpdate, ct.fieldMeta(id), id, init)
}

// AppendFieldValidation returns a builder whose setters record
// field/appendValidation instead of field/update.
func (ct *ContentType) AppendFieldValidation(id string, init ir.Object) *Field {
	return ct.fieldBuilder(ir.FieldAppendValidation, ct.fieldMeta(id), id, init)
}

// DeleteField records a field/delete.
func (ct *ContentType) DeleteField(id string) {
	ct.s.dispatch(ir.Action{
		Type:    ir.FieldDelete,
		Meta:    ct.fieldMeta(id),
		Payload: ir.Payload{ContentTypeID: ct.id, FieldID: id},
	})
}

// ChangeFieldID records a field/rename keyed by oldID's instance id.
func (ct *ContentType) ChangeFieldID(oldID, newID string) {
	ct.s.dispatch(ir.Action{
		Type: ir.FieldRename,
		Meta: ct.fieldMeta(oldID),
		Payload: ir.Payload{
			ContentTypeID: ct.id,
			FieldID:       oldID,
			Props:         ir.Object{ir.RenamePropNewID: ir.String(newID)},
		},
	})
}

// MoveField returns a Movement for field id. Nothing is recorded until a
// direction is chosen.
func (ct *ContentType) MoveField(id string) *Movement {
	meta := ct.fieldMeta(id)
	return &Movement{
		dispatch: func(direction, pivot string) {
			ct.s.dispatch(ir.Action{
				Type: ir.FieldMove,
				Meta: meta,
				Payload: ir.Payload{
					ContentTypeID: ct.id,
					FieldID:       id,
					Movement:      &ir.Movement{Direction: direction, Pivot: pivot},
				},
			})
		},
	}
}
