// Package ir provides the intermediate representation of a content-model
// migration: the recorded actions, the chunks they are partitioned into, the
// validation errors raised against them and the remote content types that
// form the validation baseline.
//
// This package contains type definitions and serialization only. All other
// internal packages import ir; ir imports nothing internal.
//
// Key constraints:
//   - Action JSON (type, meta, payload, callsite) is a wire format consumed by
//     downstream tooling and golden files; field names are camelCase and must
//     not change.
//   - Instance ids are rendered as "contentType/{id}/{n}" and "fields/{id}/{n}".
//   - Property values use the sealed Value set. There is no float type, so a
//     plan always hashes to the same digest.
package ir
