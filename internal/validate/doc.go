// Package validate checks a migration plan for illegal action sequences
// before anything is sent to the live service.
//
// Validation is a fold over the flattened action log. A Lifecycle tracks, per
// content type and per field, whether it exists locally, remotely, is active
// or has been deleted; it is seeded from a snapshot of the remote content
// types. Every action is checked against a guard. A violation is recorded and
// processing continues, so one run surfaces every independent problem. A
// rejected action leaves the state unchanged, except for deleting a content
// type that has entries and creating a field on a missing content type: both
// still take effect, so later actions are judged as if they had succeeded:
// a field created on a missing content type is not reported again by the
// actions that follow it.
//
// Validation is pure: no I/O, no shared state. It is safe to call from any
// goroutine.
package validate
