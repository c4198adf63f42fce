// Package account defines the persisted account record and its storage
// backends.
//
// [Store] is the interface the engine consumes. [RedisStore] is the
// production backend: one binary-encoded record per account keyed by ID,
// with a secondary email index, both written transactionally. Updates are
// optimistic: every record carries a version counter and [Store.Update]
// fails with [ErrVersionConflict] when the stored version no longer matches
// the caller's copy. [MemoryStore] provides the same contract for tests and
// single-process use.
package account
