package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/reveal/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update bool   // rewrite golden files from the current traces
	Filter string // glob matched against scenario file names
}

// Golden outcomes recorded per scenario.
const (
	GoldenNone     = "none"
	GoldenMatched  = "matched"
	GoldenMismatch = "mismatch"
	GoldenUpdated  = "updated"
)

// ScenarioResult is the outcome of one scenario file.
type ScenarioResult struct {
	Name   string   `json:"name"`
	File   string   `json:"file"`
	Pass   bool     `json:"pass"`
	Golden string   `json:"golden"`
	Errors []string `json:"errors,omitempty"`
}

// TestResult summarizes a test run.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run conformance scenarios",
		Long: `Run conformance scenarios through the schema builder and resolver.

Every check in a scenario must pass. When golden/<name>.golden exists next
to the scenario file, the scenario's trace must also match it byte for byte.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (missing directory, bad filter)

Examples:
  reveal test ./scenarios
  reveal test ./scenarios --filter "fallback-*"
  reveal test ./scenarios --update
  reveal test ./scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, args[0])
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "rewrite golden files from the current traces")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "only run scenarios whose file name matches this glob")

	return cmd
}

func (o *TestOptions) run(cmd *cobra.Command, dir string) error {
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return NewExitError(ExitCommandError, fmt.Sprintf("scenarios directory not found: %s", dir))
	}
	files, err := findScenarioFiles(dir, o.Filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}

	logger := newLogger(o.RootOptions, cmd.ErrOrStderr())
	result := TestResult{Scenarios: make([]ScenarioResult, 0, len(files)), Total: len(files)}
	for _, file := range files {
		r := o.runScenario(file, logger)
		if r.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
		result.Scenarios = append(result.Scenarios, r)
	}

	msg := fmt.Sprintf("%d scenario(s) failed", result.Failed)
	return newFormatter(cmd, o.RootOptions).Report(result, result.Failed, CodeTestFailed, msg, func(w io.Writer) {
		writeTestText(w, result)
	})
}

func (o *TestOptions) runScenario(file string, logger *slog.Logger) ScenarioResult {
	r := ScenarioResult{Name: filepath.Base(file), File: file, Golden: GoldenNone}

	scenario, err := harness.LoadScenario(file)
	if err != nil {
		r.Errors = []string{fmt.Sprintf("Load error: %v", err)}
		return r
	}
	r.Name = scenario.Name

	res, err := harness.Run(scenario, harness.WithLogger(logger.With("scenario", scenario.Name)))
	if err != nil {
		r.Errors = []string{fmt.Sprintf("Execution error: %v", err)}
		return r
	}
	r.Errors = res.Errors

	snapshot, err := harness.Snapshot(scenario.Name, res)
	if err != nil {
		r.Errors = append(r.Errors, fmt.Sprintf("Snapshot error: %v", err))
		return r
	}

	golden := goldenFilePath(file)
	switch want, err := os.ReadFile(golden); {
	case o.Update:
		if err := writeGolden(golden, snapshot); err != nil {
			r.Errors = append(r.Errors, fmt.Sprintf("Golden update error: %v", err))
			return r
		}
		r.Golden = GoldenUpdated
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		r.Errors = append(r.Errors, fmt.Sprintf("Golden read error: %v", err))
		return r
	case bytes.Equal(want, snapshot):
		r.Golden = GoldenMatched
	default:
		r.Golden = GoldenMismatch
		r.Errors = append(r.Errors, "Golden file mismatch (run with --update to regenerate)")
	}

	r.Pass = len(r.Errors) == 0
	return r
}

// findScenarioFiles walks dir for .yaml and .yml files, skipping golden
// directories. A non-empty filter is matched against the file name without
// its extension.
func findScenarioFiles(dir, filter string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "golden" {
				return filepath.SkipDir
			}
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if filter != "" {
			matched, err := filepath.Match(filter, strings.TrimSuffix(d.Name(), ext))
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	return files, err
}

// goldenFilePath maps scenarios/x.yaml to scenarios/golden/x.golden.
func goldenFilePath(scenarioFile string) string {
	base := filepath.Base(scenarioFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(scenarioFile), "golden", name+".golden")
}

func writeGolden(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func writeTestText(w io.Writer, result TestResult) {
	if result.Total == 0 {
		fmt.Fprintln(w, "No scenarios found.")
		return
	}
	for _, s := range result.Scenarios {
		switch {
		case s.Pass && s.Golden == GoldenUpdated:
			fmt.Fprintf(w, "✓ %s (golden updated)\n", s.Name)
		case s.Pass:
			fmt.Fprintf(w, "✓ %s\n", s.Name)
		default:
			fmt.Fprintf(w, "✗ %s\n", s.Name)
			for _, e := range s.Errors {
				fmt.Fprintf(w, "  %s\n", e)
			}
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
	if result.Failed == 0 {
		fmt.Fprintln(w, "✓ All scenarios passed")
	}
}
