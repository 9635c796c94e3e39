// Package daemon coordinates the long-running courtq process.
//
// It wires configuration, queue storage, the queue engine, the dispatcher,
// the LINE client, and the head notifier into a single lifecycle. With the
// sqlite backend a flock on the data directory prevents multiple instances
// from sharing the database; the redis backend is safe across processes and
// skips the lock.
//
// Keep orchestration logic here: command handling lives in dispatch and
// queue semantics in engine, while the daemon focuses on startup, shutdown,
// and status.
package daemon
