// Package diag defines the diagnostic model shared by the loader, the type
// checker and the CLI.
//
// Diagnostic is the central record: Severity, a numeric Code with a stable
// string form (PRS1004, TYP2001, ...), a short Message, the Primary span and
// optional Notes and Fixes.
//
// Two ways of emitting exist. Passes that abort on the first problem (the
// type checker, pun resolution) return *Error, which wraps one Diagnostic and
// travels through ordinary error returns. Passes that keep going (the
// loader) push into a Reporter, usually a BagReporter feeding a Bag.
//
// Rendering lives in internal/diagfmt; FormatShort here is the one-line form
// used by tests and by `--format short`.
package diag
