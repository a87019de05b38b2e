package loader

import (
	"strconv"

	"abigen/internal/diag"
	"abigen/internal/ident"
	"abigen/internal/source"
	"abigen/internal/syntax"
)

// parseTydent parses name, &T, [T; N] or () into a syntax.Tydent.
func parseTydent(src string, base source.Span, located bool) (syntax.Tydent, error) {
	s := &scanner{src: src, base: base, located: located, code: diag.PrsBadTypeRef}
	ty, err := s.tydent()
	if err != nil {
		return nil, err
	}
	s.skipSpace()
	if !s.eof() {
		return nil, s.errorf(s.pos, len(src), "unexpected %q after type %q", src[s.pos:], ty)
	}
	return ty, nil
}

func (s *scanner) tydent() (syntax.Tydent, error) {
	s.skipSpace()
	start := s.pos
	switch s.peek() {
	case 0:
		return nil, s.errorf(start, start, "expected a type in %q", s.src)
	case '&':
		s.pos++
		pointee, err := s.tydent()
		if err != nil {
			return nil, err
		}
		return &syntax.TydentRef{Pointee: pointee, Sp: s.span(start, s.pos)}, nil
	case '[':
		s.pos++
		elem, err := s.tydent()
		if err != nil {
			return nil, err
		}
		if err := s.expect(';'); err != nil {
			return nil, err
		}
		n, err := s.arrayLen()
		if err != nil {
			return nil, err
		}
		if err := s.expect(']'); err != nil {
			return nil, err
		}
		return &syntax.TydentArray{Elem: elem, Len: n, Sp: s.span(start, s.pos)}, nil
	case '(':
		s.pos++
		if err := s.expect(')'); err != nil {
			return nil, err
		}
		return &syntax.TydentEmpty{Sp: s.span(start, s.pos)}, nil
	}
	name, at := s.ident()
	if name == "" {
		bad := s.runeAt(start)
		return nil, s.errorf(start, start+len(bad), "unexpected %q in type %q", bad, s.src)
	}
	return &syntax.TydentName{Name: ident.New(name, s.span(at, s.pos))}, nil
}

func (s *scanner) arrayLen() (uint64, error) {
	s.skipSpace()
	start := s.pos
	for !s.eof() && s.src[s.pos] >= '0' && s.src[s.pos] <= '9' {
		s.pos++
	}
	if start == s.pos {
		return 0, diag.Errorf(diag.PrsBadArrayLen, s.span(start, min(start+1, len(s.src))),
			"array length in %q must be a non-negative integer", s.src)
	}
	n, err := strconv.ParseUint(s.src[start:s.pos], 10, 64)
	if err != nil {
		return 0, diag.Errorf(diag.PrsBadArrayLen, s.span(start, s.pos), "array length %s: %v", s.src[start:s.pos], err)
	}
	return n, nil
}
