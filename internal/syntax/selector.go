package syntax

import (
	"strconv"
	"strings"
)

// Selector is a predicate over the target language a pun is resolved for.
type Selector interface {
	Matches(lang string) bool
	String() string
}

// SelectorAny matches when any child matches.
type SelectorAny struct{ List []Selector }

// SelectorAll matches when every child matches.
type SelectorAll struct{ List []Selector }

// SelectorLang matches one language name exactly.
type SelectorLang struct{ Lang string }

// SelectorDefault always matches.
type SelectorDefault struct{}

func (s SelectorAny) Matches(lang string) bool {
	for _, sel := range s.List {
		if sel.Matches(lang) {
			return true
		}
	}
	return false
}

func (s SelectorAll) Matches(lang string) bool {
	for _, sel := range s.List {
		if !sel.Matches(lang) {
			return false
		}
	}
	return true
}

func (s SelectorLang) Matches(lang string) bool { return s.Lang == lang }

func (SelectorDefault) Matches(string) bool { return true }

func (s SelectorAny) String() string   { return "any(" + joinSelectors(s.List) + ")" }
func (s SelectorAll) String() string   { return "all(" + joinSelectors(s.List) + ")" }
func (s SelectorLang) String() string  { return "lang(" + strconv.Quote(s.Lang) + ")" }
func (SelectorDefault) String() string { return "default" }

func joinSelectors(list []Selector) string {
	parts := make([]string, len(list))
	for i, sel := range list {
		parts[i] = sel.String()
	}
	return strings.Join(parts, ", ")
}

// Langs is shorthand for the common "lang(a, b, ...)" selector.
func Langs(names ...string) Selector {
	if len(names) == 1 {
		return SelectorLang{Lang: names[0]}
	}
	list := make([]Selector, len(names))
	for i, n := range names {
		list[i] = SelectorLang{Lang: n}
	}
	return SelectorAny{List: list}
}
