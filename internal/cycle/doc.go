// Package cycle runs pressroom's batch steps: planning a day's lineup,
// publishing lineup entries through the uniqueness guard and image matcher,
// and read-only draft checks.
//
// Plan and publish cycles hold the state directory's cycle lock for their
// whole run, so at most one mutating cycle is active. Every cycle stages its
// file writes and commits them only after all work succeeded; an error
// leaves the previous lineup, fingerprint window, usage counts, and keyword
// history untouched.
//
// Each cycle gets a UUID carried in the context (logging.WithCycleID), in
// every log line, in the lineup audit table, and in the metrics file.
package cycle
