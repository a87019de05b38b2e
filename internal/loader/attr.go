package loader

import (
	"math/bits"
	"strconv"
	"strings"

	"abigen/internal/diag"
	"abigen/internal/source"
	"abigen/internal/syntax"
)

// parseAttr parses one "@name args..." string. "@ text" is passed through
// to backends untouched.
func parseAttr(text string, sp source.Span) (syntax.Attr, error) {
	body, ok := strings.CutPrefix(strings.TrimSpace(text), "@")
	if !ok {
		return syntax.Attr{}, diag.Errorf(diag.PrsBadAttr, sp, "attribute %q must start with '@'", text)
	}
	attr := syntax.Attr{Span: sp}
	if body == "" || body[0] == ' ' || body[0] == '\t' {
		attr.Kind = syntax.AttrPassthrough
		attr.Text = strings.TrimSpace(body)
		if attr.Text == "" {
			return attr, diag.Errorf(diag.PrsBadAttr, sp, "passthrough attribute has no text")
		}
		return attr, nil
	}

	name, rest, _ := strings.Cut(body, " ")
	args := strings.Fields(rest)
	switch name {
	case "repr":
		if len(args) == 0 {
			return attr, diag.Errorf(diag.PrsBadAttr, sp, "@repr needs at least one representation")
		}
		attr.Kind = syntax.AttrRepr
		attr.Repr = args
	case "align":
		if len(args) != 1 {
			return attr, diag.Errorf(diag.PrsBadAttr, sp, "@align takes exactly one argument")
		}
		n, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil || n == 0 || bits.OnesCount64(n) != 1 {
			return attr, diag.Errorf(diag.PrsBadAttr, sp, "@align %s: alignment must be a power of two", args[0])
		}
		attr.Kind = syntax.AttrAlign
		attr.Align = uint32(n)
	case "packed":
		if len(args) != 0 {
			return attr, diag.Errorf(diag.PrsBadAttr, sp, "@packed takes no arguments")
		}
		attr.Kind = syntax.AttrPacked
	case "derive":
		if len(args) == 0 {
			return attr, diag.Errorf(diag.PrsBadAttr, sp, "@derive needs at least one trait")
		}
		attr.Kind = syntax.AttrDerive
		attr.Derive = args
	default:
		return attr, diag.Errorf(diag.PrsBadAttr, sp, "unknown attribute @%s", name).
			WithFix("write `@ " + body + "` to pass it through to backends")
	}
	return attr, nil
}
