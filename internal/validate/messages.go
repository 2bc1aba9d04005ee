package validate

// Message formats. Content type and field ids are substituted in order.
const (
	msgContentTypeDuplicateCreate = `Content type with id "%s" cannot be created more than once.`
	msgContentTypeAlreadyExists   = `Content type with id "%s" already exists.`
	msgContentTypeEditMissing     = `You cannot edit content type "%s" because it does not exist.`
	msgContentTypeDeleteMissing   = `You cannot delete content type "%s" because it does not exist.`
	msgContentTypeHasEntries      = `Content type with id "%s" cannot be deleted because it still has entries.`

	msgFieldDuplicateCreate = `Field with id "%s" cannot be created more than once.`
	msgFieldRenameConflict  = `Field with id "%s" cannot be renamed to "%s" because a field with that id already exists.`
	msgFieldPivotMissing    = `Field with id "%s" cannot be moved relative to field "%s" because it does not exist.`
	msgFieldUnknownMove     = `Field with id "%s" cannot be moved in unknown direction "%s".`
)

// fieldVerb words the three existence failures shared by every field action
// that targets an existing field.
type fieldVerb struct {
	// onMissingContentType takes the field id then the content type id.
	onMissingContentType string
	onNeverExisted       string
	onDeleted            string
}

var (
	verbCreate = fieldVerb{
		onMissingContentType: `You cannot create the field with id "%s" on content type "%s" because it does not exist.`,
	}
	verbDelete = fieldVerb{
		onMissingContentType: `You cannot delete the field with id "%s" on content type "%s" because it does not exist.`,
		onNeverExisted:       `Field with id "%s" cannot be deleted because it does not exist.`,
		onDeleted:            `Field with id "%s" cannot be deleted because it has already been deleted.`,
	}
	verbEdit = fieldVerb{
		onMissingContentType: `You cannot edit the field with id "%s" on content type "%s" because it does not exist.`,
		onNeverExisted:       `Field with id "%s" cannot be edited because it does not exist.`,
		onDeleted:            `Field with id "%s" cannot be edited because it has already been deleted.`,
	}
	verbMove = fieldVerb{
		onMissingContentType: `You cannot move the field with id "%s" on content type "%s" because it does not exist.`,
		onNeverExisted:       `Field with id "%s" cannot be moved because it does not exist.`,
		onDeleted:            `Field with id "%s" cannot be moved because it has already been deleted.`,
	}
	verbRename = fieldVerb{
		onMissingContentType: `You cannot rename the field with id "%s" on content type "%s" because it does not exist.`,
		onNeverExisted:       `Field with id "%s" cannot be renamed because it does not exist.`,
		onDeleted:            `Field with id "%s" cannot be renamed because it has already been deleted.`,
	}
)
