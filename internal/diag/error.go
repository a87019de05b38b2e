package diag

import (
	"errors"
	"fmt"

	"abigen/internal/source"
)

// Error carries a single user-facing diagnostic through ordinary error
// returns. Passes that abort on the first problem return *Error; callers that
// collect diagnostics unwrap it with AsDiagnostic.
type Error struct {
	Diag Diagnostic
}

// Errorf builds an *Error with SevError.
func Errorf(code Code, primary source.Span, format string, args ...any) *Error {
	return &Error{Diag: NewError(code, primary, fmt.Sprintf(format, args...))}
}

// Wrap turns an already built diagnostic into an error.
func Wrap(d Diagnostic) *Error {
	return &Error{Diag: d}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Diag.Severity, e.Diag.Code.ID(), e.Diag.Message)
}

// WithNote appends a note and returns the same error for chaining.
func (e *Error) WithNote(sp source.Span, msg string) *Error {
	e.Diag = e.Diag.WithNote(sp, msg)
	return e
}

// WithFix appends a fix suggestion and returns the same error for chaining.
func (e *Error) WithFix(title string, edits ...FixEdit) *Error {
	e.Diag = e.Diag.WithFix(title, edits...)
	return e
}

// AsDiagnostic extracts the diagnostic from anywhere in err's chain.
func AsDiagnostic(err error) (Diagnostic, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de.Diag, true
	}
	return Diagnostic{}, false
}

// Report forwards err to r. Errors without a diagnostic are reported as
// UnknownCode with an empty span.
func Report(r Reporter, err error) {
	if r == nil || err == nil {
		return
	}
	d, ok := AsDiagnostic(err)
	if !ok {
		d = NewError(UnknownCode, source.NoSpan, err.Error())
	}
	r.Report(d.Code, d.Severity, d.Primary, d.Message, d.Notes, d.Fixes)
}
