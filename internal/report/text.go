package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

// maxCell bounds a text column; longer values are truncated with "...".
const maxCell = 48

// table collects rows and pads columns by display width.
type table struct {
	rows [][]string
}

func (t *table) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *table) write(w io.Writer, indent string) error {
	var widths []int
	for _, row := range t.rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], runewidth.StringWidth(truncate(cell, maxCell)))
		}
	}
	for _, row := range t.rows {
		var sb strings.Builder
		sb.WriteString(indent)
		for i, cell := range row {
			cell = truncate(cell, maxCell)
			if i == len(row)-1 {
				sb.WriteString(cell)
				break
			}
			sb.WriteString(runewidth.FillRight(cell, widths[i]))
			sb.WriteString("  ")
		}
		if _, err := io.WriteString(w, strings.TrimRight(sb.String(), " ")+"\n"); err != nil {
			return err
		}
	}
	return nil
}

func truncate(value string, width int) string {
	if runewidth.StringWidth(value) <= width {
		return value
	}
	return runewidth.Truncate(value, width, "...")
}

func writeProgramText(w io.Writer, prog *Program) error {
	if _, err := fmt.Fprintf(w, "types (%d):\n", len(prog.Types)); err != nil {
		return err
	}
	var tys table
	for _, ty := range prog.Types {
		tys.add(strconv.FormatUint(uint64(ty.Idx), 10), ty.Kind, ty.Display, describe(&ty))
	}
	if err := tys.write(w, "  "); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "funcs (%d):\n", len(prog.Funcs)); err != nil {
		return err
	}
	var fns table
	for _, fn := range prog.Funcs {
		sig := "(" + joinFields(fn.Inputs) + ")"
		if len(fn.Outputs) > 0 {
			sig += " -> (" + joinFields(fn.Outputs) + ")"
		}
		name := fn.Name
		if fn.Builtin {
			name += " [builtin]"
		}
		fns.add(strconv.FormatUint(uint64(fn.Idx), 10), name, sig)
	}
	return fns.write(w, "  ")
}

func describe(ty *Type) string {
	var parts []string
	if len(ty.Fields) > 0 {
		parts = append(parts, "{ "+joinFields(ty.Fields)+" }")
	}
	for _, v := range ty.Variants {
		s := v.Name
		if v.Value != nil {
			s += " = " + strconv.FormatInt(*v.Value, 10)
		}
		if v.Payload {
			s += "(" + joinFields(v.Fields) + ")"
		}
		parts = append(parts, s)
	}
	for _, b := range ty.Blocks {
		parts = append(parts, fmt.Sprintf("%s => #%d", b.When, b.Ty))
	}
	if ty.Kind == "alias" && ty.Ref != nil {
		parts = append(parts, fmt.Sprintf("= #%d", *ty.Ref))
	}
	if len(ty.Attrs) > 0 {
		parts = append(parts, strings.Join(ty.Attrs, " "))
	}
	return strings.Join(parts, " | ")
}

func joinFields(fs []Field) string {
	parts := make([]string, len(fs))
	for i, f := range fs {
		parts[i] = f.Name + ": " + f.Display
	}
	return strings.Join(parts, ", ")
}

func writePlansText(w io.Writer, plans []Plan) error {
	for i, plan := range plans {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "plan for %s (%d steps):\n", plan.Target, len(plan.Steps)); err != nil {
			return err
		}
		var tab table
		for _, step := range plan.Steps {
			tab.add(step.Op, "#"+strconv.FormatUint(uint64(step.Idx), 10), step.Name)
		}
		if err := tab.write(w, "  "); err != nil {
			return err
		}
		if len(plan.Layouts) == 0 {
			continue
		}
		if _, err := fmt.Fprintf(w, "layout on %s:\n", plan.ABI); err != nil {
			return err
		}
		var lay table
		for _, l := range plan.Layouts {
			lay.add(l.Name, fmt.Sprintf("size=%d", l.Size), fmt.Sprintf("align=%d", l.Align), describeLayout(&l))
		}
		if err := lay.write(w, "  "); err != nil {
			return err
		}
	}
	return nil
}

func describeLayout(l *Layout) string {
	if len(l.Fields) > 0 {
		parts := make([]string, len(l.Fields))
		for i, f := range l.Fields {
			parts[i] = f.Name + "@" + strconv.Itoa(f.Offset)
		}
		return strings.Join(parts, " ")
	}
	if l.PayloadOffset > 0 {
		return fmt.Sprintf("tag=%d payload@%d", l.TagSize, l.PayloadOffset)
	}
	if l.TagSize > 0 {
		return fmt.Sprintf("tag=%d", l.TagSize)
	}
	return ""
}
