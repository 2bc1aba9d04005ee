// Package store keeps an audit log of planned migrations in SQLite.
//
// Every plan or validate run is appended as one row in plans, with its
// actions and validation errors in child tables:
//   - plans: run id (uuid v7), logical seq, plan hash and counts
//   - actions: each action's canonical JSON, position and chunk index
//   - validation_errors: each finding with the canonical JSON of its step
//
// All ordering uses seq INTEGER columns, never timestamps, so reads are
// deterministic. Actions and errors are stored as RFC 8785 canonical JSON
// produced by internal/ir.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
