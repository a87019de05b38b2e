// Package testkit holds invariant checks shared by tests of the front end.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"abigen/internal/ident"
	"abigen/internal/source"
	"abigen/internal/syntax"
)

// CheckSpanInvariants verifies the spans a loader attached to prog:
//  1. every span lies in sf and within its content
//  2. a non-empty identifier span covers exactly the identifier's text
//  3. a non-empty &T or [T; N] span starts with '&' or '['
//
// With strict set, user-written identifiers must also have non-empty spans.
// Generated identifiers are exempt from 2 and from strict.
func CheckSpanInvariants(prog *syntax.ParsedProgram, sf *source.File, strict bool) error {
	if prog == nil || sf == nil {
		return fmt.Errorf("nil program or file")
	}
	size, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	c := &checker{sf: sf, size: size, strict: strict}
	for _, decl := range prog.Types {
		c.decl(decl)
	}
	for _, fn := range prog.Funcs {
		c.ident(fn.Name)
		c.span(fn.Span, "func "+fn.Name.Name)
		c.vars(fn.Inputs)
		c.vars(fn.Outputs)
	}
	return c.err
}

type checker struct {
	sf     *source.File
	size   uint32
	strict bool
	err    error
}

func (c *checker) fail(format string, args ...any) {
	if c.err == nil {
		c.err = fmt.Errorf(format, args...)
	}
}

func (c *checker) span(sp source.Span, what string) {
	if sp.File != c.sf.ID {
		c.fail("%s: span points to file %d, want %d", what, sp.File, c.sf.ID)
		return
	}
	if sp.Start > sp.End || sp.End > c.size {
		c.fail("%s: span %v outside content of %d bytes", what, sp, c.size)
	}
}

func (c *checker) text(sp source.Span) string {
	return string(c.sf.Content[sp.Start:sp.End])
}

func (c *checker) ident(id ident.Ident) {
	c.span(id.Span, "ident "+id.Name)
	if c.err != nil || id.Generated {
		return
	}
	if id.Span.Empty() {
		if c.strict {
			c.fail("ident %q was not located", id.Name)
		}
		return
	}
	if got := c.text(id.Span); got != id.Name {
		c.fail("ident %q: span %v covers %q", id.Name, id.Span, got)
	}
}

func (c *checker) decl(decl syntax.TyDecl) {
	c.ident(decl.DeclName())
	c.span(decl.DeclSpan(), "decl "+decl.DeclName().Name)
	switch d := decl.(type) {
	case *syntax.StructDecl:
		c.vars(d.Fields)
	case *syntax.UnionDecl:
		c.vars(d.Fields)
	case *syntax.EnumDecl:
		for _, v := range d.Variants {
			c.ident(v.Name)
		}
	case *syntax.TaggedDecl:
		for _, v := range d.Variants {
			c.ident(v.Name)
			c.vars(v.Fields)
		}
	case *syntax.AliasDecl:
		c.tydent(d.Target)
	case *syntax.PunDecl:
		for _, b := range d.Blocks {
			c.span(b.Span, "pun block of "+d.Name.Name)
			c.decl(b.Decl)
		}
	}
}

func (c *checker) vars(vars []syntax.TypedVar) {
	for _, v := range vars {
		c.ident(v.Name)
		c.tydent(v.Ty)
	}
}

func (c *checker) tydent(t syntax.Tydent) {
	switch t := t.(type) {
	case *syntax.TydentName:
		c.ident(t.Name)
	case *syntax.TydentRef:
		c.prefixed(t.Span(), '&', t.String())
		c.tydent(t.Pointee)
	case *syntax.TydentArray:
		c.prefixed(t.Span(), '[', t.String())
		c.tydent(t.Elem)
	case *syntax.TydentEmpty:
		c.span(t.Span(), "()")
	}
}

func (c *checker) prefixed(sp source.Span, want byte, what string) {
	c.span(sp, what)
	if c.err != nil || sp.Empty() {
		return
	}
	if got := c.sf.Content[sp.Start]; got != want {
		c.fail("%s: span %v starts with %q, want %q", what, sp, got, want)
	}
}
