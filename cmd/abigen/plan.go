package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"abigen/internal/layout"
	"abigen/internal/pipeline"
	"abigen/internal/plancache"
	"abigen/internal/report"
	"abigen/internal/trace"
	"abigen/internal/typeck"
	"abigen/internal/types"
	"abigen/internal/ui"
)

var planCmd = &cobra.Command{
	Use:   "plan [program.toml|abigen.toml|directory]",
	Short: "Plan the declare/define order for every target",
	Long: `Resolve a program description, build one definition graph per target
language and print the order in which a generator must forward-declare and
define each type and function reachable from the selected roots.

Targets and roots come from --target/--func or the [generate] section of the
manifest. Without roots every user function is planned. With --abi (or
[generate].abi) every plan also carries the size, alignment and field
offsets of each type it defines on that target triple.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlan,
}

func init() {
	planCmd.Flags().StringSlice("target", nil, "target language (repeatable)")
	planCmd.Flags().StringSlice("func", nil, "restrict roots to these functions (repeatable)")
	planCmd.Flags().String("format", "", "output format (text|json|yaml|msgpack); defaults to the manifest or text")
	planCmd.Flags().String("abi", "", "also compute type layouts for this target triple (e.g. x86_64-linux-gnu)")
	planCmd.Flags().String("out", "", "write output to a file instead of stdout")
	planCmd.Flags().Bool("no-cache", false, "bypass the plan cache")
	planCmd.Flags().Bool("progress", false, "show live per-target progress on a terminal")
	planCmd.Flags().String("cache-dir", "", "plan cache directory (enables caching)")
	registerDiagFlags(planCmd)
}

type planOptions struct {
	targets  []string
	roots    []string
	format   report.Format
	abi      *layout.Target
	out      string
	cacheDir string
	useCache bool
	progress bool
}

func readPlanOptions(cmd *cobra.Command, m *projectManifest) (planOptions, error) {
	var opts planOptions
	var err error
	if opts.targets, err = cmd.Flags().GetStringSlice("target"); err != nil {
		return opts, fmt.Errorf("failed to get target flag: %w", err)
	}
	if opts.roots, err = cmd.Flags().GetStringSlice("func"); err != nil {
		return opts, fmt.Errorf("failed to get func flag: %w", err)
	}
	if m != nil {
		if !cmd.Flags().Changed("target") {
			opts.targets = m.Config.Generate.Targets
		}
		if !cmd.Flags().Changed("func") {
			opts.roots = m.Config.Generate.Roots
		}
	}
	if len(opts.targets) == 0 {
		return opts, fmt.Errorf("no targets: pass --target or set [generate].targets")
	}
	if err := checkTargets(opts.targets); err != nil {
		return opts, err
	}
	if opts.format, err = outputFormat(cmd, m); err != nil {
		return opts, err
	}
	if opts.out, err = cmd.Flags().GetString("out"); err != nil {
		return opts, fmt.Errorf("failed to get out flag: %w", err)
	}
	abi, err := cmd.Flags().GetString("abi")
	if err != nil {
		return opts, fmt.Errorf("failed to get abi flag: %w", err)
	}
	if abi == "" && m != nil {
		abi = m.Config.Generate.ABI
	}
	if abi != "" {
		target, err := layout.LookupTarget(abi)
		if err != nil {
			return opts, err
		}
		opts.abi = &target
	}

	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return opts, fmt.Errorf("failed to get no-cache flag: %w", err)
	}
	if opts.cacheDir, err = cmd.Flags().GetString("cache-dir"); err != nil {
		return opts, fmt.Errorf("failed to get cache-dir flag: %w", err)
	}
	opts.useCache = opts.cacheDir != ""
	if m != nil && m.Config.Cache.Enabled {
		opts.useCache = true
		if opts.cacheDir == "" {
			opts.cacheDir = m.cacheDir()
		}
	}
	if noCache {
		opts.useCache = false
	}
	if opts.progress, err = cmd.Flags().GetBool("progress"); err != nil {
		return opts, fmt.Errorf("failed to get progress flag: %w", err)
	}
	return opts, nil
}

func runPlan(cmd *cobra.Command, args []string) error {
	inv, err := resolveInvocation(args)
	if err != nil {
		return err
	}
	opts, err := readPlanOptions(cmd, inv.manifest)
	if err != nil {
		return err
	}
	s, err := newSession(cmd, "plan")
	if err != nil {
		return err
	}
	if opts.progress && !s.quiet && isTerminal(os.Stderr) {
		return s.finish(s.planWithUI(inv, opts))
	}
	return s.finish(s.plan(inv, opts))
}

func (s *session) plan(inv invocation, opts planOptions) error {
	prog, file, err := s.load(inv.program)
	if err != nil {
		return err
	}

	cache := s.openCache(opts)
	key := plancache.Key(file.Content, opts.targets, opts.roots, opts.abiTriple())
	if plans, ok, err := cache.Get(key); err != nil {
		s.warnf("plan cache: %v", err)
	} else if ok {
		trace.Point(s.tracer, trace.ScopePass, "cache", "hit", s.root.ID())
		return s.writePlans(opts, plans)
	}

	typed, err := s.check(prog)
	if err != nil {
		return err
	}
	roots, err := selectRoots(typed, opts.roots)
	if err != nil {
		return err
	}

	envs := make([]types.PunEnv, len(opts.targets))
	for i, t := range opts.targets {
		envs[i] = types.PunEnv{Lang: t}
		pipeline.Emit(s.progress, pipeline.Event{Target: t, Stage: pipeline.StageGraph, Status: pipeline.StatusWorking})
	}
	idx := s.timer.Begin("defgraph")
	graphs, err := typed.DefinitionGraphs(s.ctx, envs)
	if err != nil {
		s.timer.End(idx, "error")
		for _, t := range opts.targets {
			pipeline.Emit(s.progress, pipeline.Event{Target: t, Stage: pipeline.StageGraph, Status: pipeline.StatusError, Err: err})
		}
		return err
	}
	s.timer.End(idx, fmt.Sprintf("%d targets", len(graphs)))

	plans := make([]report.Plan, len(graphs))
	for i, g := range graphs {
		name := "plan:" + g.Env().Lang
		idx := s.timer.Begin(name)
		span := trace.Begin(s.tracer, trace.ScopeTarget, name, s.root.ID())
		started := time.Now()
		lang := g.Env().Lang
		pipeline.Emit(s.progress, pipeline.Event{Target: lang, Stage: pipeline.StagePlan, Status: pipeline.StatusWorking})
		plans[i] = report.FromDefinitions(typed, g, g.Definitions(roots))
		if opts.abi != nil {
			pipeline.Emit(s.progress, pipeline.Event{Target: lang, Stage: pipeline.StageLayout, Status: pipeline.StatusWorking})
			le := layout.New(*opts.abi, g.Env(), typed)
			if err := report.AttachLayouts(&plans[i], typed, le); err != nil {
				span.End("error")
				s.timer.End(idx, "error")
				pipeline.Emit(s.progress, pipeline.Event{Target: lang, Stage: pipeline.StageLayout, Status: pipeline.StatusError, Err: err})
				return err
			}
		}
		note := fmt.Sprintf("%d steps", len(plans[i].Steps))
		span.End(note)
		s.timer.End(idx, note)
		stages := opts.stages()
		pipeline.Emit(s.progress, pipeline.Event{Target: lang, Stage: stages[len(stages)-1], Status: pipeline.StatusDone, Elapsed: time.Since(started)})
	}

	if err := cache.Put(key, plans); err != nil {
		s.warnf("plan cache: %v", err)
	}
	return s.writePlans(opts, plans)
}

// planWithUI runs plan on a worker goroutine while a Bubble Tea view on
// stderr follows its progress events. Plans are written after the view has
// quit so they never interleave with it.
func (s *session) planWithUI(inv invocation, opts planOptions) error {
	events := make(chan pipeline.Event, 64)
	done := make(chan error, 1)
	var buffered bytes.Buffer
	s.progress = pipeline.ChannelSink{Ch: events}
	s.output = &buffered
	go func() {
		err := s.plan(inv, opts)
		close(events)
		done <- err
	}()

	model := ui.NewProgressModel("plan "+inv.program, opts.targets, opts.stages(), events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr), tea.WithInput(nil))
	_, uiErr := program.Run()
	for range events {
		// the view quit early; let the worker finish
	}
	err := <-done
	s.progress = nil
	s.output = nil
	if err != nil {
		return err
	}
	if buffered.Len() > 0 {
		w, closeOut, err := openOutput(s.cmd, "", opts.format.Binary())
		if err != nil {
			return err
		}
		if _, err := w.Write(buffered.Bytes()); err != nil {
			_ = closeOut()
			return err
		}
		if err := closeOut(); err != nil {
			return err
		}
	}
	return uiErr
}

// stages lists the per-target stages a plan run goes through.
func (o planOptions) stages() []pipeline.Stage {
	if o.abi == nil {
		return []pipeline.Stage{pipeline.StageGraph, pipeline.StagePlan}
	}
	return []pipeline.Stage{pipeline.StageGraph, pipeline.StagePlan, pipeline.StageLayout}
}

func (o planOptions) abiTriple() string {
	if o.abi == nil {
		return ""
	}
	return o.abi.Triple
}

func (s *session) openCache(opts planOptions) *plancache.DiskCache {
	if !opts.useCache {
		return nil
	}
	var (
		cache *plancache.DiskCache
		err   error
	)
	if opts.cacheDir != "" {
		cache, err = plancache.OpenDir(opts.cacheDir)
	} else {
		cache, err = plancache.Open("abigen")
	}
	if err != nil {
		s.warnf("plan cache disabled: %v", err)
		return nil
	}
	return cache
}

func (s *session) writePlans(opts planOptions, plans []report.Plan) error {
	var (
		w        io.Writer
		closeOut func() error
		err      error
	)
	if s.output != nil && (opts.out == "" || opts.out == "-") {
		w, closeOut = s.output, func() error { return nil }
	} else if w, closeOut, err = openOutput(s.cmd, opts.out, opts.format.Binary()); err != nil {
		return err
	}
	if err := report.WritePlans(w, opts.format, plans); err != nil {
		_ = closeOut()
		return fmt.Errorf("failed to write plans: %w", err)
	}
	if err := closeOut(); err != nil {
		return err
	}
	if opts.out != "" && opts.out != "-" && !s.quiet {
		fmt.Fprintf(s.cmd.ErrOrStderr(), "wrote %d plan(s) to %s\n", len(plans), opts.out)
	}
	return nil
}

func (s *session) warnf(format string, args ...any) {
	if s.quiet {
		return
	}
	fmt.Fprintf(s.cmd.ErrOrStderr(), "warning: "+format+"\n", args...)
}

// selectRoots maps root names to functions. No names selects every user
// function.
func selectRoots(p *typeck.TypedProgram, names []string) ([]typeck.FuncIdx, error) {
	if len(names) == 0 {
		return p.AllFuncs(), nil
	}
	roots := make([]typeck.FuncIdx, 0, len(names))
	for _, name := range names {
		idx, ok := p.LookupFunc(name)
		if !ok {
			return nil, fmt.Errorf("unknown root function %q (known: %s)", name, strings.Join(funcNames(p), ", "))
		}
		roots = append(roots, idx)
	}
	return roots, nil
}

func funcNames(p *typeck.TypedProgram) []string {
	out := make([]string, 0, p.NumFuncs())
	for _, idx := range p.AllFuncs() {
		out = append(out, p.RealizeFunc(idx).Name.Name)
	}
	return out
}
