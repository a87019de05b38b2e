// Package typeck resolves a syntactic program into a TypedProgram and plans
// the order in which code generators must declare and define its types and
// functions.
//
// Checking is two-phase: every top-level nominal type is reserved in the
// type table before any body is resolved, so self- and forward-references
// type-check. Structural shapes are interned; nominal types get one identity
// per declaration.
//
// A DefinitionGraph is built per pun environment. Its Definitions method
// walks strongly connected components dependency-first and forward-declares
// every member of a cycle but the first.
package typeck
