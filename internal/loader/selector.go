package loader

import (
	"unicode/utf8"

	"abigen/internal/diag"
	"abigen/internal/source"
	"abigen/internal/syntax"
)

// parseSelector parses default, lang(a, ...), any(sel, ...) or all(sel, ...).
func parseSelector(src string, base source.Span, located bool) (syntax.Selector, error) {
	s := &scanner{src: src, base: base, located: located, code: diag.PrsBadSelector}
	sel, err := s.selector()
	if err != nil {
		return nil, err
	}
	s.skipSpace()
	if !s.eof() {
		return nil, s.errorf(s.pos, len(src), "unexpected %q after selector", src[s.pos:])
	}
	return sel, nil
}

func (s *scanner) selector() (syntax.Selector, error) {
	word, start := s.ident()
	switch word {
	case "default":
		return syntax.SelectorDefault{}, nil
	case "lang":
		var langs []string
		err := s.list(func() error {
			s.skipSpace()
			at := s.pos
			for !s.eof() && isLangByte(s.src[s.pos]) {
				s.pos++
			}
			if at == s.pos {
				return s.errorf(at, min(at+1, len(s.src)), "expected a language name in %q", s.src)
			}
			langs = append(langs, s.src[at:s.pos])
			return nil
		})
		if err != nil {
			return nil, err
		}
		return syntax.Langs(langs...), nil
	case "any", "all":
		var list []syntax.Selector
		err := s.list(func() error {
			sel, err := s.selector()
			if err != nil {
				return err
			}
			list = append(list, sel)
			return nil
		})
		if err != nil {
			return nil, err
		}
		if word == "any" {
			return syntax.SelectorAny{List: list}, nil
		}
		return syntax.SelectorAll{List: list}, nil
	case "":
		return nil, s.errorf(start, min(start+1, len(s.src)), "expected a selector in %q", s.src)
	default:
		return nil, s.errorf(start, s.pos, "unknown selector %q", word).
			WithFix("use one of default, lang(...), any(...), all(...)")
	}
}

// list parses "(" item {"," item} ")" with at least one item.
func (s *scanner) list(item func() error) error {
	if err := s.expect('('); err != nil {
		return err
	}
	for {
		if err := item(); err != nil {
			return err
		}
		s.skipSpace()
		if s.peek() == ',' {
			s.pos++
			continue
		}
		return s.expect(')')
	}
}

func isLangByte(c byte) bool {
	if c >= utf8.RuneSelf {
		return false
	}
	return isIdentRune(rune(c), false) || c == '+' || c == '-' || c == '.'
}
