// Package config loads, normalizes, and validates courtq configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// CHANNEL_SECRET and CHANNEL_ACCESS_TOKEN. The Config type centralizes every
// knob the daemon and CLI need: the data directory, the webhook listener, the
// LINE channel credentials, the storage backend, and the court set.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
