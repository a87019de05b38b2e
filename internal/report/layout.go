package report

import (
	"abigen/internal/layout"
	"abigen/internal/typeck"
	"abigen/internal/types"
)

// Layout is the ABI placement of one defined type on the plan's triple.
type Layout struct {
	Idx     uint32        `json:"idx" yaml:"idx" msgpack:"idx"`
	Name    string        `json:"name" yaml:"name" msgpack:"name"`
	Size    int           `json:"size" yaml:"size" msgpack:"size"`
	Align   int           `json:"align" yaml:"align" msgpack:"align"`
	Fields  []FieldOffset `json:"fields,omitempty" yaml:"fields,omitempty" msgpack:"fields,omitempty"`
	TagSize int           `json:"tag_size,omitempty" yaml:"tag_size,omitempty" msgpack:"tag_size,omitempty"`
	// PayloadOffset is where a tagged union's variant data starts.
	PayloadOffset int `json:"payload_offset,omitempty" yaml:"payload_offset,omitempty" msgpack:"payload_offset,omitempty"`
}

type FieldOffset struct {
	Name   string `json:"name" yaml:"name" msgpack:"name"`
	Offset int    `json:"offset" yaml:"offset" msgpack:"offset"`
}

// AttachLayouts fills plan.Layouts with one entry per define-ty step,
// computed by le. The first layout error aborts.
func AttachLayouts(plan *Plan, p *typeck.TypedProgram, le *layout.LayoutEngine) error {
	plan.ABI = le.Target.Triple
	plan.Layouts = plan.Layouts[:0]
	for _, step := range plan.Steps {
		if step.Op != typeck.DefineTy.String() {
			continue
		}
		idx := types.TyIdx(step.Idx)
		l, err := le.LayoutOf(idx)
		if err != nil {
			return err
		}
		out := Layout{
			Idx:           step.Idx,
			Name:          step.Name,
			Size:          l.Size,
			Align:         l.Align,
			TagSize:       l.TagSize,
			PayloadOffset: l.PayloadOffset,
		}
		var fs []types.Field
		switch ty := p.RealizeTy(idx).(type) {
		case *types.StructTy:
			fs = ty.Fields
		case *types.UnionTy:
			fs = ty.Fields
		}
		for i, f := range fs {
			if i < len(l.FieldOffsets) {
				out.Fields = append(out.Fields, FieldOffset{Name: f.Ident.Name, Offset: l.FieldOffsets[i]})
			}
		}
		plan.Layouts = append(plan.Layouts, out)
	}
	return nil
}
