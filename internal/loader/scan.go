package loader

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"fortio.org/safecast"

	"abigen/internal/diag"
	"abigen/internal/source"
)

// scanner walks a short string embedded in the description (a type
// reference or a selector). base is where the string sits in the file; when
// the string could not be located every sub-span collapses to base.
type scanner struct {
	src     string
	pos     int
	base    source.Span
	located bool
	code    diag.Code
}

func (s *scanner) eof() bool {
	return s.pos >= len(s.src)
}

func (s *scanner) peek() byte {
	if s.eof() {
		return 0
	}
	return s.src[s.pos]
}

func (s *scanner) skipSpace() {
	for !s.eof() && (s.src[s.pos] == ' ' || s.src[s.pos] == '\t') {
		s.pos++
	}
}

func (s *scanner) span(start, end int) source.Span {
	if !s.located {
		return s.base
	}
	return s.base.Sub(offset(start), offset(end))
}

func (s *scanner) errorf(start, end int, format string, args ...any) *diag.Error {
	return diag.Errorf(s.code, s.span(start, end), format, args...)
}

func (s *scanner) expect(c byte) error {
	s.skipSpace()
	if s.peek() != c {
		return s.errorf(s.pos, min(s.pos+1, len(s.src)), "expected %q in %q", c, s.src)
	}
	s.pos++
	return nil
}

func isIdentRune(r rune, first bool) bool {
	switch {
	case r == '_', unicode.IsLetter(r):
		return true
	case unicode.IsDigit(r):
		return !first
	}
	return false
}

// isIdentName reports whether name is a single identifier, the same token
// a type reference accepts.
func isIdentName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if r == utf8.RuneError || !isIdentRune(r, i == 0) {
			return false
		}
	}
	return true
}

// ident reads a letter or '_' followed by letters, digits and '_', and
// returns it with its start offset.
func (s *scanner) ident() (string, int) {
	s.skipSpace()
	start := s.pos
	for !s.eof() {
		r, size := utf8.DecodeRuneInString(s.src[s.pos:])
		if r == utf8.RuneError || !isIdentRune(r, s.pos == start) {
			break
		}
		s.pos += size
	}
	return s.src[start:s.pos], start
}

// runeAt returns the character starting at i for error messages.
func (s *scanner) runeAt(i int) string {
	if i >= len(s.src) {
		return ""
	}
	_, size := utf8.DecodeRuneInString(s.src[i:])
	return s.src[i : i+size]
}

func offset(i int) uint32 {
	n, err := safecast.Conv[uint32](i)
	if err != nil {
		panic(fmt.Errorf("offset overflow: %w", err))
	}
	return n
}
