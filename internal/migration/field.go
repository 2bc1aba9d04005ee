package migration

import "github.com/roach88/ctmigrate/internal/ir"

// Field properties settable through the builder.
const (
	FieldPropName        = "name"
	FieldPropType        = "type"
	FieldPropLinkType    = "linkType"
	FieldPropItems       = "items"
	FieldPropRequired    = "required"
	FieldPropLocalized   = "localized"
	FieldPropValidations = "validations"
	FieldPropDisabled    = "disabled"
	FieldPropOmitted     = "omitted"
	FieldPropDeleted     = "deleted"
)

// Field is the builder for one field instance. Every setter updates the local
// scratch copy and records an action in one step.
type Field struct {
	id       string
	props    ir.Object
	dispatch func(prop string, v ir.Value)
}

// ID returns the field id.
func (f *Field) ID() string { return f.id }

// Props returns a copy of the properties set through this builder.
func (f *Field) Props() ir.Object { return f.props.Clone() }

// Set records prop = v.
func (f *Field) Set(prop string, v ir.Value) *Field {
	f.props[prop] = v
	f.dispatch(prop, v)
	return f
}

// Name sets the field's display name.
func (f *Field) Name(name string) *Field { return f.Set(FieldPropName, ir.String(name)) }

// Type sets the field type, e.g. Symbol or Link.
func (f *Field) Type(t string) *Field { return f.Set(FieldPropType, ir.String(t)) }

// LinkType sets what a Link field points at: Entry or Asset.
func (f *Field) LinkType(t string) *Field { return f.Set(FieldPropLinkType, ir.String(t)) }

// Items sets the element definition of an Array field.
func (f *Field) Items(items ir.Object) *Field { return f.Set(FieldPropItems, items) }

// Required marks the field as mandatory.
func (f *Field) Required(b bool) *Field { return f.Set(FieldPropRequired, ir.Bool(b)) }

// Localized enables per-locale values.
func (f *Field) Localized(b bool) *Field { return f.Set(FieldPropLocalized, ir.Bool(b)) }

// Validations replaces the field's validation list.
func (f *Field) Validations(v ir.Array) *Field { return f.Set(FieldPropValidations, v) }

// Disabled hides the field from editors.
func (f *Field) Disabled(b bool) *Field { return f.Set(FieldPropDisabled, ir.Bool(b)) }

// Omitted leaves the field out of delivery responses.
func (f *Field) Omitted(b bool) *Field { return f.Set(FieldPropOmitted, ir.Bool(b)) }

// Deleted marks the field for removal.
func (f *Field) Deleted(b bool) *Field { return f.Set(FieldPropDeleted, ir.Bool(b)) }

// Movement records where a field moves. Only one direction call is expected.
type Movement struct {
	dispatch func(direction, pivot string)
}

// ToTheTop moves the field to the first position.
func (m *Movement) ToTheTop() { m.dispatch(ir.DirectionToTheTop, "") }

// ToTheBottom moves the field to the last position.
func (m *Movement) ToTheBottom() { m.dispatch(ir.DirectionToTheBottom, "") }

// BeforeField moves the field directly before pivot.
func (m *Movement) BeforeField(pivot string) { m.dispatch(ir.DirectionBeforeField, pivot) }

// AfterField moves the field directly after pivot.
func (m *Movement) AfterField(pivot string) { m.dispatch(ir.DirectionAfterField, pivot) }

// Move records an arbitrary direction keyword, as read from a script.
func (m *Movement) Move(direction, pivot string) { m.dispatch(direction, pivot) }
