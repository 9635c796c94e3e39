// Package redisstore keeps court queues, scope state, and grants in Redis so
// several courtq processes can share them.
//
// Each court is a sorted set of actor ids scored by a global INCR sequence,
// with display names in a companion hash. Appends, pops, and removals run as
// Lua scripts. PopHeadIfUnlocked first takes a per-court SET NX PX lock with a
// random token and skips when another process holds it; the lock is released
// by a compare-and-delete script and expires on its own if the holder dies.
package redisstore
