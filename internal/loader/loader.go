package loader

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"abigen/internal/diag"
	"abigen/internal/ident"
	"abigen/internal/source"
	"abigen/internal/syntax"
)

type document struct {
	Types []typeEntry `toml:"type"`
	Funcs []funcEntry `toml:"func"`
}

type typeEntry struct {
	Kind     string         `toml:"kind"`
	Name     string         `toml:"name"`
	Attrs    []string       `toml:"attrs"`
	Fields   []varEntry     `toml:"fields"`
	Variants []variantEntry `toml:"variants"`
	Target   string         `toml:"target"`
	Blocks   []blockEntry   `toml:"block"`
}

type varEntry struct {
	Name string `toml:"name"`
	Type string `toml:"type"`
}

// variantEntry serves enums (Value) and tagged unions (Fields). A tagged
// variant without a fields key carries no payload.
type variantEntry struct {
	Name   string     `toml:"name"`
	Value  *int64     `toml:"value"`
	Fields []varEntry `toml:"fields"`
}

type blockEntry struct {
	When  string      `toml:"when"`
	Types []typeEntry `toml:"type"`
	Funcs []funcEntry `toml:"func"`
}

type funcEntry struct {
	Name    string     `toml:"name"`
	Attrs   []string   `toml:"attrs"`
	Inputs  []varEntry `toml:"inputs"`
	Outputs []varEntry `toml:"outputs"`
}

var kinds = []string{"struct", "union", "enum", "tagged", "alias", "pun"}

// Load reads the description at path into fs and decodes it.
func Load(fs *source.FileSet, path string) (*syntax.ParsedProgram, error) {
	id, err := fs.Load(path)
	if err != nil {
		return nil, diag.Errorf(diag.IOLoadFileError, source.NoSpan, "failed to read %s: %v", path, err)
	}
	return Parse(fs.Get(id))
}

// LoadString registers text as a virtual file named name and decodes it.
func LoadString(fs *source.FileSet, name, text string) (*syntax.ParsedProgram, error) {
	return Parse(fs.Get(fs.AddVirtual(name, []byte(text))))
}

// Parse decodes an already registered file.
func Parse(file *source.File) (*syntax.ParsedProgram, error) {
	loc := newLocator(file)

	var doc document
	md, err := toml.Decode(loc.text, &doc)
	if err != nil {
		return nil, decodeError(loc, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		key := undecoded[0]
		return nil, diag.Errorf(diag.PrsDecode, loc.findKey(key[len(key)-1]), "unknown key %q", key.String())
	}

	b := &builder{loc: loc}
	return b.program(&doc)
}

func decodeError(loc *locator, err error) error {
	var perr toml.ParseError
	if errors.As(err, &perr) {
		sp := loc.fileStart()
		if perr.Position.Start >= 0 && perr.Position.Start <= len(loc.text) {
			end := min(perr.Position.Start+max(perr.Position.Len, 0), len(loc.text))
			sp = source.Span{File: loc.file.ID, Start: offset(perr.Position.Start), End: offset(end)}
		}
		return diag.Errorf(diag.PrsDecode, sp, "%s", perr.Message)
	}
	return diag.Errorf(diag.PrsDecode, loc.fileStart(), "%v", err)
}

// builder turns decoded entries into syntax nodes. cursor only moves forward
// past declaration names so repeated strings resolve to the right entry.
type builder struct {
	loc    *locator
	cursor int
}

func (b *builder) program(doc *document) (*syntax.ParsedProgram, error) {
	prog := &syntax.ParsedProgram{}
	seenTypes := make(map[string]ident.Ident, len(doc.Types))
	for i := range doc.Types {
		decl, err := b.typeDecl(&doc.Types[i])
		if err != nil {
			return nil, err
		}
		name := decl.DeclName()
		if prev, dup := seenTypes[name.Key()]; dup {
			return nil, diag.Errorf(diag.PrsDuplicateType, name.Span, "type %q is declared twice", name.Name).
				WithNote(prev.Span, "previous declaration here")
		}
		seenTypes[name.Key()] = name
		prog.Types = append(prog.Types, decl)
	}

	seenFuncs := make(map[string]ident.Ident, len(doc.Funcs))
	for i := range doc.Funcs {
		fn, err := b.funcDecl(&doc.Funcs[i])
		if err != nil {
			return nil, err
		}
		if prev, dup := seenFuncs[fn.Name.Key()]; dup {
			return nil, diag.Errorf(diag.PrsDuplicateFunc, fn.Name.Span, "function %q is declared twice", fn.Name.Name).
				WithNote(prev.Span, "previous declaration here")
		}
		seenFuncs[fn.Name.Key()] = fn.Name
		prog.Funcs = append(prog.Funcs, fn)
	}
	prog.BuiltinFuncsStart = len(prog.Funcs)
	return prog, nil
}

// name locates a declaration name and advances the cursor past it. Member
// lookups for the declaration start at the returned offset.
func (b *builder) name(what, value, kind string) (ident.Ident, int, error) {
	start := b.cursor
	if value == "" {
		sp, _, _ := b.loc.find(kind, start)
		return ident.Ident{}, start, diag.Errorf(diag.PrsMissingName, sp, "%s has no name", what).
			WithFix("add a `name = \"...\"` key")
	}
	sp, next, ok := b.loc.find(value, start)
	if !isIdentName(value) {
		return ident.Ident{}, start, badName(what, value, sp)
	}
	if !ok {
		return ident.New(value, sp), start, nil
	}
	b.cursor = next
	return ident.New(value, sp), int(sp.Start), nil
}

func badName(what, value string, sp source.Span) *diag.Error {
	return diag.Errorf(diag.PrsBadName, sp, "%s name %q is not an identifier", what, value).
		WithFix("use letters, digits and '_', starting with a letter or '_'")
}

func (b *builder) typeDecl(e *typeEntry) (syntax.TyDecl, error) {
	name, from, err := b.name(e.Kind+" declaration", e.Name, e.Kind)
	if err != nil {
		return nil, err
	}
	attrs, err := b.attrs(e.Attrs, from)
	if err != nil {
		return nil, err
	}
	sp := name.Span

	switch e.Kind {
	case "struct":
		fields, err := b.vars(e.Fields, "field", from)
		if err != nil {
			return nil, err
		}
		return &syntax.StructDecl{Name: name, Fields: fields, Attrs: attrs, Span: sp}, nil
	case "union":
		fields, err := b.vars(e.Fields, "field", from)
		if err != nil {
			return nil, err
		}
		return &syntax.UnionDecl{Name: name, Fields: fields, Attrs: attrs, Span: sp}, nil
	case "enum":
		variants, err := b.enumVariants(name, e.Variants, from)
		if err != nil {
			return nil, err
		}
		return &syntax.EnumDecl{Name: name, Variants: variants, Attrs: attrs, Span: sp}, nil
	case "tagged":
		variants, err := b.taggedVariants(e.Variants, from)
		if err != nil {
			return nil, err
		}
		return &syntax.TaggedDecl{Name: name, Variants: variants, Attrs: attrs, Span: sp}, nil
	case "alias":
		if e.Target == "" {
			return nil, diag.Errorf(diag.PrsMissingField, sp, "alias %q has no target", name.Name).
				WithFix("add a `target = \"...\"` key")
		}
		target, _, err := b.tydent(e.Target, from)
		if err != nil {
			return nil, err
		}
		return &syntax.AliasDecl{Name: name, Target: target, Attrs: attrs, Span: sp}, nil
	case "pun":
		blocks := make([]syntax.PunBlock, 0, len(e.Blocks))
		for i := range e.Blocks {
			block, err := b.punBlock(name, &e.Blocks[i])
			if err != nil {
				return nil, err
			}
			blocks = append(blocks, block)
		}
		return &syntax.PunDecl{Name: name, Blocks: blocks, Attrs: attrs, Span: sp}, nil
	case "":
		return nil, diag.Errorf(diag.PrsMissingField, sp, "type %q has no kind", name.Name).
			WithFix("add `kind = \"...\"` with one of " + strings.Join(kinds, ", "))
	default:
		kindSpan, _, _ := b.loc.find(e.Kind, from)
		return nil, diag.Errorf(diag.PrsUnknownKind, kindSpan, "unknown declaration kind %q", e.Kind).
			WithFix("use one of " + strings.Join(kinds, ", "))
	}
}

// punBlock checks that a block declares exactly one type named like the pun
// and no functions.
func (b *builder) punBlock(pun ident.Ident, e *blockEntry) (syntax.PunBlock, error) {
	if e.When == "" {
		return syntax.PunBlock{}, diag.Errorf(diag.PrsMissingField, pun.Span, "pun %q has a block without `when`", pun.Name).
			WithFix("add `when = \"default\"` or `when = \"lang(...)\"`")
	}
	whenSpan, next, ok := b.loc.find(e.When, b.cursor)
	if ok {
		b.cursor = next
	}
	sel, err := parseSelector(e.When, whenSpan, ok)
	if err != nil {
		return syntax.PunBlock{}, err
	}
	if len(e.Funcs) > 0 {
		fnSpan, _, _ := b.loc.find(e.Funcs[0].Name, b.cursor)
		return syntax.PunBlock{}, diag.Errorf(diag.PrsPunBlockFunc, fnSpan,
			"pun %q block %s declares function %q", pun.Name, e.When, e.Funcs[0].Name).
			WithNote(pun.Span, "pun blocks may only declare the pun's type")
	}
	switch len(e.Types) {
	case 0:
		return syntax.PunBlock{}, diag.Errorf(diag.PrsPunBlockEmpty, whenSpan,
			"pun %q block %s declares no type", pun.Name, e.When).
			WithFix(fmt.Sprintf("add a [[type.block.type]] named %q", pun.Name))
	case 1:
	default:
		extra, _, _ := b.loc.find(e.Types[1].Name, b.cursor)
		return syntax.PunBlock{}, diag.Errorf(diag.PrsPunBlockExtraType, extra,
			"pun %q block %s declares %d types, want exactly one", pun.Name, e.When, len(e.Types))
	}

	decl, err := b.typeDecl(&e.Types[0])
	if err != nil {
		return syntax.PunBlock{}, err
	}
	if got := decl.DeclName(); !got.Equal(pun) {
		return syntax.PunBlock{}, diag.Errorf(diag.PrsPunBlockWrongName, got.Span,
			"pun %q block %s declares %q", pun.Name, e.When, got.Name).
			WithFix(fmt.Sprintf("rename it to %q", pun.Name))
	}
	return syntax.PunBlock{Selector: sel, Decl: decl, Span: whenSpan.Cover(decl.DeclSpan())}, nil
}

func (b *builder) funcDecl(e *funcEntry) (*syntax.FuncDecl, error) {
	name, from, err := b.name("function", e.Name, "func")
	if err != nil {
		return nil, err
	}
	attrs, err := b.attrs(e.Attrs, from)
	if err != nil {
		return nil, err
	}
	inputs, err := b.vars(e.Inputs, "arg", from)
	if err != nil {
		return nil, err
	}
	outputs, err := b.vars(e.Outputs, "out", from)
	if err != nil {
		return nil, err
	}
	return &syntax.FuncDecl{Name: name, Inputs: inputs, Outputs: outputs, Attrs: attrs, Span: name.Span}, nil
}

func (b *builder) attrs(texts []string, from int) ([]syntax.Attr, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	out := make([]syntax.Attr, 0, len(texts))
	for _, text := range texts {
		sp, next, ok := b.loc.find(text, from)
		if ok {
			from = next
		}
		attr, err := parseAttr(text, sp)
		if err != nil {
			return nil, err
		}
		out = append(out, attr)
	}
	return out, nil
}

// vars builds fields or arguments. Unnamed entries get prefix{i}.
func (b *builder) vars(entries []varEntry, prefix string, from int) ([]syntax.TypedVar, error) {
	if entries == nil {
		return nil, nil
	}
	out := make([]syntax.TypedVar, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for i, e := range entries {
		anchor := from
		if e.Type == "" {
			sp, _, _ := b.loc.find(e.Name, anchor)
			return nil, diag.Errorf(diag.PrsMissingField, sp, "%s %d has no type", prefix, i).
				WithFix("add `type = \"...\"`")
		}
		ty, tyEnd, err := b.tydent(e.Type, anchor)
		if err != nil {
			return nil, err
		}
		var name ident.Ident
		if e.Name == "" {
			name = ident.Positional(prefix, i, ty.Span())
		} else {
			sp, nameEnd, ok := b.loc.find(e.Name, anchor)
			if !isIdentName(e.Name) {
				return nil, badName(prefix, e.Name, sp)
			}
			if ok {
				from = max(from, nameEnd)
			}
			name = ident.New(e.Name, sp)
		}
		from = max(from, tyEnd)
		if _, dup := seen[name.Key()]; dup {
			return nil, diag.Errorf(diag.PrsDuplicateMember, name.Span, "duplicate %s name %q", prefix, name.Name)
		}
		seen[name.Key()] = struct{}{}
		out = append(out, syntax.TypedVar{Name: name, Ty: ty})
	}
	return out, nil
}

func (b *builder) tydent(text string, from int) (syntax.Tydent, int, error) {
	sp, next, ok := b.loc.find(text, from)
	if !ok {
		next = from
	}
	ty, err := parseTydent(text, sp, ok)
	return ty, next, err
}

func (b *builder) enumVariants(enum ident.Ident, entries []variantEntry, from int) ([]syntax.EnumVariant, error) {
	out := make([]syntax.EnumVariant, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		name, next, err := b.variantName(e.Name, from)
		if err != nil {
			return nil, err
		}
		from = next
		if e.Fields != nil {
			return nil, diag.Errorf(diag.PrsDecode, name.Span, "enum %q variant %q cannot carry fields", enum.Name, name.Name).
				WithFix("use kind = \"tagged\" for variants with payloads")
		}
		if _, dup := seen[name.Key()]; dup {
			return nil, diag.Errorf(diag.PrsDuplicateMember, name.Span, "duplicate variant %q", name.Name)
		}
		seen[name.Key()] = struct{}{}
		out = append(out, syntax.EnumVariant{Name: name, Value: e.Value})
	}
	return out, nil
}

func (b *builder) taggedVariants(entries []variantEntry, from int) ([]syntax.TaggedVariant, error) {
	out := make([]syntax.TaggedVariant, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		name, next, err := b.variantName(e.Name, from)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[name.Key()]; dup {
			return nil, diag.Errorf(diag.PrsDuplicateMember, name.Span, "duplicate variant %q", name.Name)
		}
		seen[name.Key()] = struct{}{}
		v := syntax.TaggedVariant{Name: name}
		if e.Fields != nil {
			fields, err := b.vars(e.Fields, "field", next)
			if err != nil {
				return nil, err
			}
			v.Fields = fields
		}
		from = next
		out = append(out, v)
	}
	return out, nil
}

func (b *builder) variantName(value string, from int) (ident.Ident, int, error) {
	if value == "" {
		sp := b.loc.findKey("variants")
		return ident.Ident{}, from, diag.Errorf(diag.PrsMissingName, sp, "variant has no name")
	}
	sp, next, ok := b.loc.find(value, from)
	if !isIdentName(value) {
		return ident.Ident{}, from, badName("variant", value, sp)
	}
	if !ok {
		next = from
	}
	return ident.New(value, sp), next, nil
}
