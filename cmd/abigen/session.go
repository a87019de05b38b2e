package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"abigen/internal/diag"
	"abigen/internal/diagfmt"
	"abigen/internal/loader"
	"abigen/internal/observ"
	"abigen/internal/pipeline"
	"abigen/internal/source"
	"abigen/internal/syntax"
	"abigen/internal/trace"
	"abigen/internal/typeck"
	"abigen/internal/version"
)

// session carries the per-command state shared by check and plan: the file
// set diagnostics resolve against, the stage timer and the root trace span.
type session struct {
	cmd     *cobra.Command
	fs      *source.FileSet
	timer   *observ.Timer
	tracer  trace.Tracer
	root    *trace.Span
	ctx     context.Context
	quiet   bool
	timings bool
	diag    diagOptions
	// progress receives per-target plan events; nil when no view is shown.
	progress pipeline.ProgressSink
	// output replaces stdout for plan output while a progress view owns
	// the terminal.
	output io.Writer
}

type diagOptions struct {
	format   string // pretty|short|json|sarif
	max      int
	fullPath bool
	notes    bool
	fixes    bool
	color    bool
}

func registerDiagFlags(cmd *cobra.Command) {
	cmd.Flags().String("diag-format", "pretty", "diagnostic format (pretty|short|json|sarif)")
	cmd.Flags().Bool("with-notes", true, "include diagnostic notes")
	cmd.Flags().Bool("suggest", true, "include fix suggestions")
	cmd.Flags().Bool("fullpath", false, "emit absolute file paths in diagnostics")
}

func readDiagOptions(cmd *cobra.Command) (diagOptions, error) {
	var opts diagOptions
	var err error
	if opts.format, err = cmd.Flags().GetString("diag-format"); err != nil {
		return opts, fmt.Errorf("failed to get diag-format flag: %w", err)
	}
	opts.format = strings.ToLower(opts.format)
	switch opts.format {
	case "pretty", "short", "json", "sarif":
	default:
		return opts, fmt.Errorf("unknown diag-format: %s", opts.format)
	}
	if opts.notes, err = cmd.Flags().GetBool("with-notes"); err != nil {
		return opts, fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	if opts.fixes, err = cmd.Flags().GetBool("suggest"); err != nil {
		return opts, fmt.Errorf("failed to get suggest flag: %w", err)
	}
	if opts.fullPath, err = cmd.Flags().GetBool("fullpath"); err != nil {
		return opts, fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	if opts.max, err = cmd.Root().PersistentFlags().GetInt("max-diagnostics"); err != nil {
		return opts, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return opts, fmt.Errorf("failed to get color flag: %w", err)
	}
	mode, err := readColorMode(colorFlag)
	if err != nil {
		return opts, err
	}
	opts.color = useColor(mode, os.Stdout)
	return opts, nil
}

func newSession(cmd *cobra.Command, name string) (*session, error) {
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return nil, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	timings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return nil, fmt.Errorf("failed to get timings flag: %w", err)
	}
	opts, err := readDiagOptions(cmd)
	if err != nil {
		return nil, err
	}

	tracer := trace.FromContext(cmd.Context())
	root := trace.Begin(tracer, trace.ScopeDriver, name, 0)
	s := &session{
		cmd:     cmd,
		fs:      source.NewFileSet(),
		tracer:  tracer,
		root:    root,
		ctx:     trace.WithSpan(cmd.Context(), root),
		quiet:   quiet,
		timings: timings,
		diag:    opts,
	}
	if timings {
		s.timer = observ.NewTimer()
	}
	return s, nil
}

// load reads and decodes the program description at path.
func (s *session) load(path string) (*syntax.ParsedProgram, *source.File, error) {
	idx := s.timer.Begin("load")
	span := trace.Begin(s.tracer, trace.ScopePass, "load", s.root.ID())
	pipeline.Emit(s.progress, pipeline.Event{Stage: pipeline.StageLoad, Status: pipeline.StatusWorking})
	prog, err := loader.Load(s.fs, path)
	if err != nil {
		span.End("error")
		s.timer.End(idx, "error")
		return nil, nil, err
	}
	file, _ := s.fs.GetLatest(path)
	note := fmt.Sprintf("%d types, %d funcs", len(prog.Types), len(prog.Funcs))
	span.End(note)
	s.timer.End(idx, note)
	return prog, s.fs.Get(file), nil
}

// check type checks prog.
func (s *session) check(prog *syntax.ParsedProgram) (*typeck.TypedProgram, error) {
	idx := s.timer.Begin("typeck")
	pipeline.Emit(s.progress, pipeline.Event{Stage: pipeline.StageCheck, Status: pipeline.StatusWorking})
	typed, err := typeck.Check(prog, typeck.Options{Tracer: s.tracer, Parent: s.root.ID()})
	if err != nil {
		s.timer.End(idx, "error")
		return nil, err
	}
	s.timer.End(idx, fmt.Sprintf("%d types", typed.NumTypes()))
	return typed, nil
}

// finish closes the root span, prints timings, and turns diagnostics
// carried by err into rendered output. The returned error is errReported
// when err was rendered.
func (s *session) finish(err error) error {
	if err != nil {
		s.root.End("error")
	} else {
		s.root.End("ok")
	}
	if s.timings {
		fmt.Fprint(os.Stderr, s.timer.Summary())
	}
	if err == nil {
		return nil
	}
	dumpTraceRing(s.cmd)
	if _, ok := diag.AsDiagnostic(err); !ok {
		return err
	}
	bag := diag.NewBag(s.diag.max)
	diag.Report(diag.BagReporter{Bag: bag}, err)
	if rerr := s.renderDiagnostics(s.cmd.OutOrStdout(), bag); rerr != nil {
		return rerr
	}
	return errReported
}

func (s *session) renderDiagnostics(w io.Writer, bag *diag.Bag) error {
	pathMode := diagfmt.PathModeAuto
	if s.diag.fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}
	switch s.diag.format {
	case "pretty":
		diagfmt.Pretty(w, bag, s.fs, diagfmt.PrettyOpts{
			Color:     s.diag.color,
			Context:   2,
			PathMode:  pathMode,
			ShowNotes: s.diag.notes,
			ShowFixes: s.diag.fixes,
		})
		return nil
	case "short":
		if out := diag.FormatShort(bag.Items(), s.fs, s.diag.notes); out != "" {
			fmt.Fprintln(w, out)
		}
		return nil
	case "json":
		return diagfmt.JSON(w, bag, s.fs, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			Max:              s.diag.max,
			IncludeNotes:     s.diag.notes,
			IncludeFixes:     s.diag.fixes,
		})
	case "sarif":
		return diagfmt.Sarif(w, bag, s.fs, diagfmt.SarifRunMeta{
			ToolName:       "abigen",
			ToolVersion:    version.Version,
			InvocationArgs: os.Args,
		})
	default:
		return fmt.Errorf("unknown diag-format: %s", s.diag.format)
	}
}

// openOutput returns the destination named by --out ("" or "-" is stdout)
// and a close func. Binary encodings are refused on a terminal.
func openOutput(cmd *cobra.Command, path string, binary bool) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		out := cmd.OutOrStdout()
		if f, ok := out.(*os.File); ok && binary && isTerminal(f) {
			return nil, nil, fmt.Errorf("refusing to write binary output to a terminal; use --out")
		}
		return out, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return f, f.Close, nil
}
