// Package report turns a TypedProgram and its emission plans into plain
// data and writes them as text tables, JSON, YAML or msgpack. The msgpack
// form is what external code generators consume.
package report

import (
	"abigen/internal/syntax"
	"abigen/internal/typeck"
	"abigen/internal/types"
)

// Program is the serializable view of a TypedProgram.
type Program struct {
	Types []Type `json:"types" yaml:"types" msgpack:"types"`
	Funcs []Func `json:"funcs" yaml:"funcs" msgpack:"funcs"`
}

// Type is one slot of the type table.
type Type struct {
	Idx      uint32    `json:"idx" yaml:"idx" msgpack:"idx"`
	Kind     string    `json:"kind" yaml:"kind" msgpack:"kind"`
	Display  string    `json:"display" yaml:"display" msgpack:"display"`
	Attrs    []string  `json:"attrs,omitempty" yaml:"attrs,omitempty" msgpack:"attrs,omitempty"`
	Fields   []Field   `json:"fields,omitempty" yaml:"fields,omitempty" msgpack:"fields,omitempty"`
	Variants []Variant `json:"variants,omitempty" yaml:"variants,omitempty" msgpack:"variants,omitempty"`
	Blocks   []Block   `json:"blocks,omitempty" yaml:"blocks,omitempty" msgpack:"blocks,omitempty"`
	// Ref is the aliased type, array element or pointee.
	Ref        *uint32 `json:"ref,omitempty" yaml:"ref,omitempty" msgpack:"ref,omitempty"`
	Len        uint64  `json:"len,omitempty" yaml:"len,omitempty" msgpack:"len,omitempty"`
	Positional bool    `json:"positional,omitempty" yaml:"positional,omitempty" msgpack:"positional,omitempty"`
}

// Field is a struct/union field, variant payload field or function argument.
type Field struct {
	Name       string `json:"name" yaml:"name" msgpack:"name"`
	Ty         uint32 `json:"ty" yaml:"ty" msgpack:"ty"`
	Display    string `json:"display" yaml:"display" msgpack:"display"`
	Positional bool   `json:"positional,omitempty" yaml:"positional,omitempty" msgpack:"positional,omitempty"`
}

type Variant struct {
	Name    string  `json:"name" yaml:"name" msgpack:"name"`
	Value   *int64  `json:"value,omitempty" yaml:"value,omitempty" msgpack:"value,omitempty"`
	Payload bool    `json:"payload,omitempty" yaml:"payload,omitempty" msgpack:"payload,omitempty"`
	Fields  []Field `json:"fields,omitempty" yaml:"fields,omitempty" msgpack:"fields,omitempty"`
}

// Block is one pun alternative.
type Block struct {
	When string `json:"when" yaml:"when" msgpack:"when"`
	Ty   uint32 `json:"ty" yaml:"ty" msgpack:"ty"`
}

type Func struct {
	Idx     uint32   `json:"idx" yaml:"idx" msgpack:"idx"`
	Name    string   `json:"name" yaml:"name" msgpack:"name"`
	Attrs   []string `json:"attrs,omitempty" yaml:"attrs,omitempty" msgpack:"attrs,omitempty"`
	Inputs  []Field  `json:"inputs" yaml:"inputs" msgpack:"inputs"`
	Outputs []Field  `json:"outputs" yaml:"outputs" msgpack:"outputs"`
	Builtin bool     `json:"builtin,omitempty" yaml:"builtin,omitempty" msgpack:"builtin,omitempty"`
}

// Plan is the emission plan for one target.
type Plan struct {
	Target  string   `json:"target" yaml:"target" msgpack:"target"`
	ABI     string   `json:"abi,omitempty" yaml:"abi,omitempty" msgpack:"abi,omitempty"`
	Steps   []Step   `json:"steps" yaml:"steps" msgpack:"steps"`
	Layouts []Layout `json:"layouts,omitempty" yaml:"layouts,omitempty" msgpack:"layouts,omitempty"`
}

// Step mirrors typeck.Definition with a display name attached.
type Step struct {
	Op   string `json:"op" yaml:"op" msgpack:"op"`
	Idx  uint32 `json:"idx" yaml:"idx" msgpack:"idx"`
	Name string `json:"name" yaml:"name" msgpack:"name"`
}

// FromProgram snapshots p.
func FromProgram(p *typeck.TypedProgram) *Program {
	out := &Program{Types: make([]Type, 0, p.NumTypes())}
	for _, idx := range p.Types() {
		out.Types = append(out.Types, fromType(p, idx))
	}
	user := make(map[typeck.FuncIdx]bool, p.NumFuncs())
	for _, f := range p.AllFuncs() {
		user[f] = true
	}
	for _, idx := range p.Funcs() {
		fn := p.RealizeFunc(idx)
		out.Funcs = append(out.Funcs, Func{
			Idx:     uint32(idx),
			Name:    fn.Name.Name,
			Attrs:   attrStrings(fn.Attrs),
			Inputs:  args(p, fn.Inputs),
			Outputs: args(p, fn.Outputs),
			Builtin: !user[idx],
		})
	}
	return out
}

func fromType(p *typeck.TypedProgram, idx types.TyIdx) Type {
	ty := p.RealizeTy(idx)
	out := Type{
		Idx:     uint32(idx),
		Kind:    ty.Kind().String(),
		Display: p.FormatTy(idx),
		Attrs:   attrStrings(types.Attrs(ty)),
	}
	switch t := ty.(type) {
	case *types.StructTy:
		out.Fields = fields(p, t.Fields)
		out.Positional = t.AllPositional
	case *types.UnionTy:
		out.Fields = fields(p, t.Fields)
	case *types.EnumTy:
		for _, v := range t.Variants {
			out.Variants = append(out.Variants, Variant{Name: v.Name.Name, Value: v.Value})
		}
	case *types.TaggedTy:
		for _, v := range t.Variants {
			out.Variants = append(out.Variants, Variant{
				Name:    v.Name.Name,
				Payload: v.Fields != nil,
				Fields:  fields(p, v.Fields),
			})
		}
	case *types.AliasTy:
		out.Ref = ref(t.Real)
	case *types.PunTy:
		for _, b := range t.Blocks {
			out.Blocks = append(out.Blocks, Block{When: b.Selector.String(), Ty: uint32(b.Real)})
		}
	case types.ArrayTy:
		out.Ref = ref(t.Elem)
		out.Len = t.Len
	case types.RefTy:
		out.Ref = ref(t.Pointee)
	}
	return out
}

func ref(idx types.TyIdx) *uint32 {
	v := uint32(idx)
	return &v
}

func fields(p *typeck.TypedProgram, fs []types.Field) []Field {
	if len(fs) == 0 {
		return nil
	}
	out := make([]Field, len(fs))
	for i, f := range fs {
		out[i] = Field{Name: f.Ident.Name, Ty: uint32(f.Ty), Display: p.FormatTy(f.Ty), Positional: f.Ident.Generated}
	}
	return out
}

func args(p *typeck.TypedProgram, as []typeck.Arg) []Field {
	out := make([]Field, len(as))
	for i, a := range as {
		out[i] = Field{Name: a.Ident.Name, Ty: uint32(a.Ty), Display: p.FormatTy(a.Ty), Positional: a.Ident.Generated}
	}
	return out
}

func attrStrings(attrs []syntax.Attr) []string {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]string, len(attrs))
	for i, a := range attrs {
		out[i] = a.String()
	}
	return out
}

// FromDefinitions names every step of defs for the graph's target.
func FromDefinitions(p *typeck.TypedProgram, g *typeck.DefinitionGraph, defs []typeck.Definition) Plan {
	plan := Plan{Target: g.Env().Lang, Steps: make([]Step, len(defs))}
	for i, d := range defs {
		step := Step{Op: d.Kind.String()}
		if d.Kind.IsFunc() {
			step.Idx = uint32(d.Func)
			step.Name = p.RealizeFunc(d.Func).Name.Name
		} else {
			step.Idx = uint32(d.Ty)
			step.Name = p.FormatTy(d.Ty)
		}
		plan.Steps[i] = step
	}
	return plan
}
