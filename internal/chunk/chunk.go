// Package chunk partitions an action log into chunks: contiguous groups of
// actions that a downstream executor may submit together.
//
// A chunk opens when a content type is created or deleted, or when the next
// action belongs to a different content type instance than the open chunk
// (a new edit builder, or a return to a content type after another one
// intervened). Chunk boundaries carry no validation meaning.
package chunk

import "github.com/roach88/ctmigrate/internal/ir"

// Partition splits log into chunks, preserving action order. An empty log
// yields no chunks.
func Partition(log ir.ActionLog) []ir.Chunk {
	var chunks []ir.Chunk
	var open ir.Chunk

	for _, a := range log {
		if opensChunk(open, a) {
			if len(open) > 0 {
				chunks = append(chunks, open)
			}
			open = ir.Chunk{}
		}
		open = append(open, a)
	}
	if len(open) > 0 {
		chunks = append(chunks, open)
	}
	return chunks
}

func opensChunk(open ir.Chunk, a ir.Action) bool {
	if len(open) == 0 {
		return true
	}
	switch a.Type {
	case ir.ContentTypeCreate, ir.ContentTypeDelete:
		return true
	}
	if open[0].Type == ir.ContentTypeDelete {
		return true
	}
	return open[0].Meta.ContentTypeInstanceID != a.Meta.ContentTypeInstanceID
}

// Flatten concatenates chunks back into the original action order.
func Flatten(chunks []ir.Chunk) ir.ActionLog {
	n := 0
	for _, c := range chunks {
		n += len(c)
	}
	log := make(ir.ActionLog, 0, n)
	for _, c := range chunks {
		log = append(log, c...)
	}
	return log
}

// DeletedContentTypes returns the ids of content types deleted by a chunk,
// in first-seen order without duplicates.
func DeletedContentTypes(chunks []ir.Chunk) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, c := range chunks {
		if len(c) == 0 || c[0].Type != ir.ContentTypeDelete {
			continue
		}
		id := c[0].Payload.ContentTypeID
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}
