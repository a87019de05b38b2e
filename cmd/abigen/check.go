package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"abigen/internal/report"
)

var checkCmd = &cobra.Command{
	Use:   "check [program.toml|abigen.toml|directory]",
	Short: "Resolve a program description and print its type table",
	Long: `Load a program description, resolve every type reference and print the
deduplicated type table together with the resolved function signatures.
Without an argument the program named by the nearest abigen.toml is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("format", "", "output format (text|json|yaml|msgpack); defaults to the manifest or text")
	checkCmd.Flags().String("out", "", "write output to a file instead of stdout")
	registerDiagFlags(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	inv, err := resolveInvocation(args)
	if err != nil {
		return err
	}
	format, err := outputFormat(cmd, inv.manifest)
	if err != nil {
		return err
	}
	outPath, err := cmd.Flags().GetString("out")
	if err != nil {
		return fmt.Errorf("failed to get out flag: %w", err)
	}

	s, err := newSession(cmd, "check")
	if err != nil {
		return err
	}
	return s.finish(func() error {
		prog, _, err := s.load(inv.program)
		if err != nil {
			return err
		}
		typed, err := s.check(prog)
		if err != nil {
			return err
		}
		w, closeOut, err := openOutput(cmd, outPath, format.Binary())
		if err != nil {
			return err
		}
		if err := report.WriteProgram(w, format, report.FromProgram(typed)); err != nil {
			_ = closeOut()
			return fmt.Errorf("failed to write program: %w", err)
		}
		return closeOut()
	}())
}

// outputFormat reads --format, falling back to [generate].format.
func outputFormat(cmd *cobra.Command, m *projectManifest) (report.Format, error) {
	name, err := cmd.Flags().GetString("format")
	if err != nil {
		return report.FormatText, fmt.Errorf("failed to get format flag: %w", err)
	}
	if !cmd.Flags().Changed("format") && m != nil {
		name = m.Config.Generate.Format
	}
	return report.ParseFormat(name)
}
