// Package fuzztests houses Go fuzz harnesses that push arbitrary program
// descriptions through the loader, the checker and the planner. Their goal
// is to catch panics, hangs and broken span bookkeeping on malformed input.
//
// It does not generate corpora or drive the CLI.
package fuzztests
