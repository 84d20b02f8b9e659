package cli

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/reveal/internal/config"
)

// testOptions returns root options with default settings, independent of
// the process environment.
func testOptions(t *testing.T, format string) *RootOptions {
	t.Helper()
	cfg, err := config.LoadFrom(map[string]string{})
	require.NoError(t, err)
	return &RootOptions{Format: format, cfg: &cfg}
}

// run executes cmd with args and returns what it wrote to stdout.
func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "reveal", cmd.Use)
	assert.Contains(t, cmd.Long, "breakpoint")
	assert.Equal(t, "0.1.0", cmd.Version)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := [][]string{
		{"resolve"},
		{"sample"},
		{"builder", "add"},
		{"builder", "remove"},
		{"builder", "set"},
		{"builder", "list"},
		{"builder", "tabs"},
		{"builder", "validate"},
		{"builder", "history"},
		{"builder", "docs"},
		{"builder", "delete"},
		{"catalog", "list"},
		{"catalog", "validate"},
		{"catalog", "css"},
		{"test"},
	}

	for _, path := range commands {
		name := path[len(path)-1]
		t.Run(name, func(t *testing.T) {
			subCmd, _, err := cmd.Find(path)
			require.NoError(t, err, "Command %v should exist", path)
			require.NotNil(t, subCmd)
			assert.Equal(t, name, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)
}

func TestResolveCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	resolveCmd, _, err := cmd.Find([]string{"resolve"})
	require.NoError(t, err)

	for _, name := range []string{"table", "target", "breakpoint", "width", "unmeasured", "catalog", "delay-rate", "duration"} {
		assert.NotNil(t, resolveCmd.Flags().Lookup(name), "flag --%s", name)
	}
	ratioFlag := resolveCmd.Flags().Lookup("ratio")
	require.NotNil(t, ratioFlag)
	assert.Equal(t, "1", ratioFlag.DefValue)
}

func TestSampleCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	sampleCmd, _, err := cmd.Find([]string{"sample"})
	require.NoError(t, err)

	atFlag := sampleCmd.Flags().Lookup("at")
	require.NotNil(t, atFlag)
	assert.Equal(t, "[0s]", atFlag.DefValue)
}

func TestBuilderCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	builderCmd, _, err := cmd.Find([]string{"builder"})
	require.NoError(t, err)

	dbFlag := builderCmd.PersistentFlags().Lookup("db")
	require.NotNil(t, dbFlag)
	// Falls back to $REVEAL_DB, so the flag default is empty
	assert.Equal(t, "", dbFlag.DefValue)

	pathFlag := builderCmd.PersistentFlags().Lookup("path")
	require.NotNil(t, pathFlag)
	assert.Equal(t, "animations", pathFlag.DefValue)
}

func TestTestCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	testCmd, _, err := cmd.Find([]string{"test"})
	require.NoError(t, err)

	updateFlag := testCmd.Flags().Lookup("update")
	require.NotNil(t, updateFlag)
	assert.Equal(t, "false", updateFlag.DefValue)

	filterFlag := testCmd.Flags().Lookup("filter")
	require.NotNil(t, filterFlag)
}

func TestFormatValidation(t *testing.T) {
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))

	assert.False(t, isValidFormat("xml"))
	assert.False(t, isValidFormat(""))
	assert.False(t, isValidFormat("TEXT"))
}

func TestFormatValidationIntegration(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--format", "invalid", "catalog", "list"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestInvalidEnvironment(t *testing.T) {
	t.Setenv("REVEAL_DURATION_MS", "0")

	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"catalog", "list"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "REVEAL_DURATION_MS")
}

func TestSettingsCached(t *testing.T) {
	opts := testOptions(t, "text")
	t.Setenv("REVEAL_DELAY_RATE_MS", "999")

	cfg, err := opts.Settings()
	require.NoError(t, err)
	assert.Equal(t, int64(150), cfg.DelayRateMs)
}
