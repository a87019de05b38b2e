package typeck

import (
	"context"
	"fmt"

	"fortio.org/safecast"
	"golang.org/x/sync/errgroup"

	"abigen/internal/dag"
	"abigen/internal/trace"
	"abigen/internal/types"
)

// DefinitionKind says what a code generator must emit for one item.
type DefinitionKind uint8

const (
	DeclareTy DefinitionKind = iota
	DefineTy
	DeclareFunc
	DefineFunc
)

func (k DefinitionKind) String() string {
	switch k {
	case DeclareTy:
		return "declare-ty"
	case DefineTy:
		return "define-ty"
	case DeclareFunc:
		return "declare-func"
	case DefineFunc:
		return "define-func"
	default:
		return fmt.Sprintf("DefinitionKind(%d)", k)
	}
}

// IsFunc reports whether the definition refers to a function.
func (k DefinitionKind) IsFunc() bool {
	return k == DeclareFunc || k == DefineFunc
}

// Definition is one step of an emission plan. Ty is set for type kinds, Func
// for function kinds.
type Definition struct {
	Kind DefinitionKind
	Ty   types.TyIdx
	Func FuncIdx
}

func (d Definition) String() string {
	if d.Kind.IsFunc() {
		return fmt.Sprintf("%s(%d)", d.Kind, d.Func)
	}
	return fmt.Sprintf("%s(%d)", d.Kind, d.Ty)
}

// DefinitionGraph is the dependency graph of a program for one pun
// environment. Nodes [0, NumTypes) are types by TyIdx; the rest are
// functions by FuncIdx. It is read-only once built.
type DefinitionGraph struct {
	env        types.PunEnv
	numTys     int
	graph      *dag.Graph
	components [][]dag.NodeID
}

// DefinitionGraph builds the graph for env. A pun with no block matching env
// fails the whole build.
func (p *TypedProgram) DefinitionGraph(env types.PunEnv) (*DefinitionGraph, error) {
	numTys := p.tys.Len()
	g := dag.New(numTys + len(p.funcs))

	for i := range numTys {
		from := tyNode(types.TyIdx(i))
		switch ty := p.tys.Realize(types.TyIdx(i)).(type) {
		case *types.StructTy:
			for _, f := range ty.Fields {
				g.AddEdge(from, tyNode(f.Ty))
			}
		case *types.UnionTy:
			for _, f := range ty.Fields {
				g.AddEdge(from, tyNode(f.Ty))
			}
		case *types.TaggedTy:
			for _, v := range ty.Variants {
				for _, f := range v.Fields {
					g.AddEdge(from, tyNode(f.Ty))
				}
			}
		case *types.AliasTy:
			g.AddEdge(from, tyNode(ty.Real))
		case *types.PunTy:
			target, err := types.ResolvePun(ty, env)
			if err != nil {
				return nil, err
			}
			g.AddEdge(from, tyNode(target))
		case types.ArrayTy:
			g.AddEdge(from, tyNode(ty.Elem))
		case types.RefTy:
			g.AddEdge(from, tyNode(ty.Pointee))
		case *types.EnumTy, types.PrimitiveTy, types.EmptyTy:
		default:
			panic(fmt.Errorf("typeck: unexpected type %T in definition graph", ty))
		}
	}

	for i := range p.funcs {
		from := funcNode(numTys, toFuncIdx(i))
		for _, arg := range p.funcs[i].Inputs {
			g.AddEdge(from, tyNode(arg.Ty))
		}
		for _, arg := range p.funcs[i].Outputs {
			g.AddEdge(from, tyNode(arg.Ty))
		}
	}

	return &DefinitionGraph{
		env:        env,
		numTys:     numTys,
		graph:      g,
		components: g.Components(),
	}, nil
}

// DefinitionGraphs builds one graph per environment concurrently. Results
// are in the order of envs; the first failure cancels the rest.
func (p *TypedProgram) DefinitionGraphs(ctx context.Context, envs []types.PunEnv) ([]*DefinitionGraph, error) {
	tracer := trace.FromContext(ctx)
	parent := trace.ParentID(ctx)
	graphs := make([]*DefinitionGraph, len(envs))

	g, gctx := errgroup.WithContext(ctx)
	for i, env := range envs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			span := trace.Begin(tracer, trace.ScopeTarget, "defgraph:"+env.Lang, parent)
			dg, err := p.DefinitionGraph(env)
			if err != nil {
				span.End("error")
				return fmt.Errorf("target %s: %w", env.Lang, err)
			}
			span.End(fmt.Sprintf("components=%d", len(dg.components)))
			graphs[i] = dg
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return graphs, nil
}

// Env returns the environment the graph was resolved for.
func (g *DefinitionGraph) Env() types.PunEnv {
	return g.env
}

// Definitions returns the emission plan for everything reachable from roots.
// Components are visited dependency-first. A component with several
// reachable members forward-declares all but its first member, then defines
// every member starting with the first.
func (g *DefinitionGraph) Definitions(roots []FuncIdx) []Definition {
	nodes := make([]dag.NodeID, len(roots))
	for i, r := range roots {
		nodes[i] = funcNode(g.numTys, r)
	}
	reachable := g.graph.Reachable(nodes)

	var out []Definition
	members := make([]dag.NodeID, 0, 8)
	for _, comp := range g.components {
		members = members[:0]
		for _, n := range comp {
			if reachable[n] {
				members = append(members, n)
			}
		}
		if len(members) == 0 {
			continue
		}
		if g.graph.Cyclic(members) {
			for _, n := range members[1:] {
				out = append(out, g.definition(n, false))
			}
		}
		for _, n := range members {
			out = append(out, g.definition(n, true))
		}
	}
	return out
}

func (g *DefinitionGraph) definition(n dag.NodeID, define bool) Definition {
	if int(n) < g.numTys {
		if define {
			return Definition{Kind: DefineTy, Ty: types.TyIdx(n)}
		}
		return Definition{Kind: DeclareTy, Ty: types.TyIdx(n)}
	}
	fn := FuncIdx(int(n) - g.numTys)
	if define {
		return Definition{Kind: DefineFunc, Func: fn}
	}
	return Definition{Kind: DeclareFunc, Func: fn}
}

func tyNode(idx types.TyIdx) dag.NodeID {
	return dag.NodeID(idx)
}

func funcNode(numTys int, idx FuncIdx) dag.NodeID {
	n, err := safecast.Conv[dag.NodeID](numTys + int(idx))
	if err != nil {
		panic(fmt.Errorf("node id overflow: %w", err))
	}
	return n
}
