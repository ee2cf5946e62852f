// Package task implements the task/subtask domain model and its business
// rules on top of a pluggable store codec.
//
// # Serialization boundary
//
// Every Service operation loads the full store, acts on it, and (for
// mutators) saves the full store. A single process-wide mutex wraps that
// load-mutate-save cycle: the daemon serves connections concurrently, and
// without the lock two simultaneous mutations could each load the store
// before either has saved, losing one of the updates.
//
// # Prefix resolution
//
// Operations that take a task id accept any unambiguous leading substring of
// the full id. Zero matches is NOT_FOUND; multiple matches is a validation
// error listing the short ids of every candidate so the caller can
// disambiguate.
//
// # Subtasks
//
// A subtask is a task whose parentId references a top-level task. Nesting is
// exactly one level deep. Once a parent is completed its subtasks' statuses
// are frozen, and deleting a parent cascades to all of its subtasks in the
// same persisted operation.
package task
