// Package history persists the keyword registry and the lineup audit trail
// in SQLite.
//
// The registry records when each keyword was first seen, last scored, and
// last published. The lineup scheduler reads last-published timestamps
// through Snapshot to enforce the cooldown window. Writes go through a Tx so
// a cycle's keyword updates land together or not at all. Queries are built
// with squirrel; the schema is applied from embedded migrations on Open.
package history
