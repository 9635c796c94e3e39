// Package engine implements the court queue business rules on top of a queue
// store: enroll, promote, cancel, list, status, check, and the cross-court
// lookups they rely on.
//
// Every mutating operation returns a Result whose Outcome is a closed enum, so
// callers and tests can branch on decisions without matching reply text. The
// Reply field is rendered by messages.go and is the only place wording lives.
//
// An actor holds at most one entry across all courts. The engine checks this
// before appending; the store only guards (court, actor) uniqueness.
package engine
