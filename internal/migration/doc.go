// Package migration records a content-model migration as an ordered action
// log.
//
// A migration is written against builder objects. Record runs a user callback
// once with a Migration handle; every builder call allocates an instance id
// and appends an ir.Action to the log:
//
//	log, err := migration.Record(ctx, func(ctx context.Context, m *migration.Migration) error {
//		person := m.CreateContentType("person", ir.Object{"name": ir.String("Person")})
//		person.CreateField("name", nil).Type("Symbol").Required(true)
//		person.MoveField("name").ToTheTop()
//		return nil
//	})
//
// Instance ids are generation counters. The content-type counters belong to
// the recording; the field counters belong to each ContentType builder. Both
// increment on every allocation, including edits, so repeated operations on
// the same human-readable id can be told apart.
//
// Recording performs no validation and no I/O. A recording is not safe for
// concurrent use.
package migration
