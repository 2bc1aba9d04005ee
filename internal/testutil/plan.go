package testutil

import "github.com/roach88/ctmigrate/internal/ir"

// CreateContentType builds a contentType/create for generation n of id.
func CreateContentType(id string, n int) ir.Action {
	return ir.Action{
		Type:    ir.ContentTypeCreate,
		Meta:    ir.Meta{ContentTypeInstanceID: ir.ContentTypeInstanceID(id, n)},
		Payload: ir.Payload{ContentTypeID: id},
	}
}

// DeleteContentType builds a contentType/delete for generation n of id.
func DeleteContentType(id string, n int) ir.Action {
	return ir.Action{
		Type:    ir.ContentTypeDelete,
		Meta:    ir.Meta{ContentTypeInstanceID: ir.ContentTypeInstanceID(id, n)},
		Payload: ir.Payload{ContentTypeID: id},
	}
}

// Chunks wraps each action in its own chunk.
func Chunks(actions ...ir.Action) []ir.Chunk {
	out := make([]ir.Chunk, len(actions))
	for i, a := range actions {
		out[i] = ir.Chunk{a}
	}
	return out
}

// Remote builds a remote snapshot of empty content types.
func Remote(ids ...string) []ir.RemoteContentType {
	out := make([]ir.RemoteContentType, len(ids))
	for i, id := range ids {
		out[i] = ir.RemoteContentType{Sys: ir.Sys{ID: id}, Fields: []ir.RemoteField{}}
	}
	return out
}
