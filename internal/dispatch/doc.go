// Package dispatch turns one inbound chat event into at most one reply.
//
// The transport adapter decides the event kind once and hands the dispatcher
// an Event. Message text is normalized (width folding, whitespace collapse,
// upper case) and classified in a fixed order: the scope id query, the
// unregistered-scope drop, permission-gated admin commands, the
// disabled-scope drop, queue commands, and finally the unknown-command reply.
package dispatch
