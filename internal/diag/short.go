package diag

import (
	"fmt"
	"strings"

	"abigen/internal/source"
)

// FormatShort renders one line per diagnostic (and per note when
// includeNotes is set) in the form "error PRS1004 path:line:col message".
// Diagnostics keep their input order.
func FormatShort(diags []Diagnostic, fs *source.FileSet, includeNotes bool) string {
	var b strings.Builder
	for i, d := range diags {
		if i > 0 {
			b.WriteByte('\n')
		}
		writeShort(&b, severityLabel(d.Severity), d.Code, d.Primary, d.Message, fs)
		if !includeNotes {
			continue
		}
		for _, note := range d.Notes {
			b.WriteByte('\n')
			writeShort(&b, "note", d.Code, note.Span, note.Msg, fs)
		}
	}
	return b.String()
}

func writeShort(b *strings.Builder, sev string, code Code, span source.Span, msg string, fs *source.FileSet) {
	fmt.Fprintf(b, "%s %s %s %s", sev, code.ID(), location(fs, span), sanitizeMessage(msg))
}

func location(fs *source.FileSet, span source.Span) string {
	if fs == nil {
		return "-"
	}
	file := fs.Get(span.File)
	if file == nil {
		return "-"
	}
	start, _ := fs.Resolve(span)
	return fmt.Sprintf("%s:%d:%d", file.DisplayPath(), start.Line, start.Col)
}

func severityLabel(sev Severity) string {
	switch sev {
	case SevError:
		return "error"
	case SevWarning:
		return "warning"
	default:
		return "info"
	}
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
