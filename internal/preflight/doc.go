// Package preflight provides readiness checks for the filesystem paths and
// external services courtq depends on.
//
// These checks run in two contexts:
//   - The daemon calls RunAll before binding the webhook listener and refuses
//     to start when a required check fails.
//   - The CLI "courtq preflight" command runs RunAll plus CheckLineAPI and
//     prints every result.
//
// Each check is gated by its config section: the Redis checks only run for
// the redis backend or when notifications are enabled.
package preflight
