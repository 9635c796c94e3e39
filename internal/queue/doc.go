// Package queue persists court queues, scope session state, and capability
// grants in SQLite.
//
// The Store owns the only concurrency-sensitive primitive in courtq:
// PopHeadIfUnlocked removes the head of a court's queue while holding a
// per-court in-process lock, and reports "nothing to pop" instead of waiting
// when another caller already holds it. Sequence numbers come from an
// AUTOINCREMENT key, so they grow monotonically and are never reused.
//
// The SQLite backend assumes a single process owns the database file; the
// daemon enforces that with a file lock. Deployments that run several
// processes use the Redis backend in internal/redisstore instead.
//
// Schema changes bump the version in schema.go; operators clear the database
// to adopt the new schema.
package queue
