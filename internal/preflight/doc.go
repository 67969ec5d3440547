// Package preflight provides readiness checks for the filesystem paths and
// feeds pressroom depends on.
//
// These checks run in two contexts:
//   - The planner calls RunAll before a cycle; a failed check aborts the
//     cycle before any state is touched.
//   - The CLI "pressroom status" command renders every Result.
//
// Checks for optional inputs are gated by configuration: the feed checks
// only run when signals.source is feeds.
package preflight
