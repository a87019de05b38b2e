// Package syntax holds the purely syntactic program: declarations that refer
// to each other by name, not by identity. The tree is produced by a front end
// (internal/loader, or any external parser) and is read-only afterwards.
package syntax
