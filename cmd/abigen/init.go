package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init [path|name]",
	Short: "Initialize a new abigen project",
	Long: `Create an abigen.toml manifest and a starter program description
(types.toml) in the given directory. Without an argument the current directory
is used; a missing directory is created.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	target, err := initTarget(args)
	if err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}

	created, err := scaffoldProject(target)
	if err != nil {
		return err
	}
	if quiet {
		return nil
	}

	rel := target
	if wd, err := os.Getwd(); err == nil {
		if r, err := filepath.Rel(wd, target); err == nil {
			rel = r
		}
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Initialized abigen project in %s\n", rel)
	fmt.Fprintf(out, "  - %s\n", manifestName)
	if created {
		fmt.Fprintln(out, "  - types.toml")
	} else {
		fmt.Fprintln(out, "  - types.toml (existing)")
	}
	return nil
}

func initTarget(args []string) (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	if len(args) == 0 || args[0] == "." {
		return wd, nil
	}
	if filepath.IsAbs(args[0]) {
		return args[0], nil
	}
	return filepath.Join(wd, args[0]), nil
}

// scaffoldProject writes the manifest and, when absent, the starter program.
// It reports whether the program file was created.
func scaffoldProject(target string) (bool, error) {
	if st, err := os.Stat(target); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return false, err
		}
		if err := os.MkdirAll(target, 0o755); err != nil {
			return false, fmt.Errorf("failed to create directory %q: %w", target, err)
		}
	} else if !st.IsDir() {
		return false, fmt.Errorf("%q is not a directory", target)
	}

	manifestPath := filepath.Join(target, manifestName)
	if _, err := os.Stat(manifestPath); err == nil {
		return false, fmt.Errorf("project already initialized: %s exists", manifestPath)
	}
	name := strings.TrimSpace(filepath.Base(target))
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "abi-tests"
	}
	if err := os.WriteFile(manifestPath, []byte(defaultManifest(name)), 0o600); err != nil {
		return false, fmt.Errorf("failed to write manifest: %w", err)
	}

	programPath := filepath.Join(target, "types.toml")
	if _, err := os.Stat(programPath); !errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err := os.WriteFile(programPath, []byte(defaultProgram), 0o600); err != nil {
		return false, fmt.Errorf("failed to write types.toml: %w", err)
	}
	return true, nil
}

func defaultManifest(name string) string {
	return fmt.Sprintf(`# abigen project manifest
[project]
name = %q
program = "types.toml"

[generate]
targets = ["c", "rust"]
roots = []
format = "text"

[cache]
enabled = false
`, name)
}

const defaultProgram = `# A linked list node and a pointer-sized word that differs per target.

[[type]]
kind = "struct"
name = "Node"
attrs = ["@repr C"]
fields = [
  { name = "next", type = "&Node" },
  { name = "value", type = "Word" },
]

[[type]]
kind = "pun"
name = "Word"

  [[type.block]]
  when = "lang(c)"

    [[type.block.type]]
    kind = "alias"
    name = "Word"
    target = "u32"

  [[type.block]]
  when = "default"

    [[type.block.type]]
    kind = "alias"
    name = "Word"
    target = "u64"

[[func]]
name = "walk"
inputs = [{ name = "head", type = "&Node" }]
outputs = [{ type = "Word" }]
`
