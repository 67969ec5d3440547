// Package main hosts the pressroom CLI entrypoint and command graph.
//
// Each command loads the configuration once, builds the cycle environment
// it needs, and renders results as tables or, with --json, as JSON. Logs go
// to the log directory; --verbose mirrors them to stderr so stdout stays
// clean for command output.
//
// Keep this package lean: new behavior belongs in the internal packages
// first and is surfaced here through a command or flag.
package main
