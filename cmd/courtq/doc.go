// Package main hosts the courtq CLI entrypoint and command graph.
//
// The Cobra-based command tree runs the webhook daemon and exposes the
// administrative operations that have no chat command: registering scopes,
// provisioning capability grants, inspecting and maintaining court queues,
// and scaffolding configuration. It centralizes configuration resolution and
// store opening so subcommands can focus on output instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
