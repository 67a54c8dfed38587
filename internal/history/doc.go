// Package history persists a journal of downmix runs in SQLite.
//
// Each run gets one row: what was probed, what the decision was, and how
// the run ended. The journal backs the `downmix history` command and is
// pruned to a configurable number of entries after each run.
package history
