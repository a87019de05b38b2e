package loader

import (
	"strings"
	"unicode/utf8"

	"abigen/internal/source"
)

// locator finds where decoded string values were written. The TOML decoder
// does not keep positions, so values are searched for as quoted strings
// starting from a caller supplied offset.
type locator struct {
	file *source.File
	text string
}

func newLocator(file *source.File) *locator {
	return &locator{file: file, text: string(file.Content)}
}

// fileStart is the fallback span for values that cannot be found.
func (l *locator) fileStart() source.Span {
	return source.Span{File: l.file.ID}
}

// find returns the span of value's contents (without quotes) at or after
// from, and the offset just past the closing quote.
func (l *locator) find(value string, from int) (source.Span, int, bool) {
	if from > len(l.text) {
		from = len(l.text)
	}
	best := -1
	for _, q := range []string{`"`, `'`} {
		i := strings.Index(l.text[from:], q+value+q)
		if i >= 0 && (best < 0 || i < best) {
			best = i
		}
	}
	if best < 0 {
		return l.fileStart(), from, false
	}
	start := from + best + 1
	end := start + len(value)
	return source.Span{File: l.file.ID, Start: offset(start), End: offset(end)}, end + 1, true
}

// findKey locates a bare key, used for decoder complaints about unknown keys.
func (l *locator) findKey(key string) source.Span {
	for from := 0; from < len(l.text); {
		i := strings.Index(l.text[from:], key)
		if i < 0 {
			break
		}
		start := from + i
		end := start + len(key)
		before, _ := utf8.DecodeLastRuneInString(l.text[:start])
		after, _ := utf8.DecodeRuneInString(l.text[end:])
		if (start == 0 || !isIdentRune(before, false)) &&
			(end == len(l.text) || !isIdentRune(after, false)) {
			return source.Span{File: l.file.ID, Start: offset(start), End: offset(end)}
		}
		from = end
	}
	return l.fileStart()
}
