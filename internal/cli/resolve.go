package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/roach88/reveal/internal/engine"
	"github.com/roach88/reveal/internal/ir"
)

// InputOptions are the resolution inputs shared by resolve and sample.
type InputOptions struct {
	Table      string // JSON, or @path to a JSON file
	Target     string
	Breakpoint string
	Width      int
	Ratio      float64
	Unmeasured bool
	CatalogDir string
	DelayRate  int64
	Duration   int64
}

func (o *InputOptions) register(flags *pflag.FlagSet) {
	flags.StringVar(&o.Table, "table", "", "assignment table as JSON, or @file")
	flags.StringVar(&o.Target, "target", "", "target element id (default: every target in the table)")
	flags.StringVar(&o.Breakpoint, "breakpoint", "", "active breakpoint (mobile|tablet|desktop)")
	flags.IntVar(&o.Width, "width", 0, "viewport width in px, classified into a breakpoint")
	flags.Float64Var(&o.Ratio, "ratio", 1, "intersection ratio in [0, 1]")
	flags.BoolVar(&o.Unmeasured, "unmeasured", false, "treat elements as not yet measured")
	flags.StringVar(&o.CatalogDir, "catalog", "", "CUE catalog directory (default: $REVEAL_CATALOG_DIR or built-in)")
	flags.Int64Var(&o.DelayRate, "delay-rate", 0, "ms of delay per order index (default: $REVEAL_DELAY_RATE_MS)")
	flags.Int64Var(&o.Duration, "duration", 0, "animation duration in ms (default: $REVEAL_DURATION_MS)")
}

// inputs is a parsed InputOptions.
type inputs struct {
	table      ir.AssignmentTable
	targets    []string
	breakpoint ir.Breakpoint
	in         *ir.Intersection
	resolver   *engine.Resolver
}

func (o *InputOptions) parse(cmd *cobra.Command, root *RootOptions) (*inputs, error) {
	cfg, err := root.Settings()
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()

	if o.Table == "" {
		return nil, NewExitError(ExitCommandError, "--table is required")
	}
	data := []byte(o.Table)
	if path, ok := strings.CutPrefix(o.Table, "@"); ok {
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to read table", err)
		}
	}
	table, err := ir.ParseTable(data)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid table", err)
	}

	var bp ir.Breakpoint
	switch {
	case flags.Changed("breakpoint") && flags.Changed("width"):
		return nil, NewExitError(ExitCommandError, "--breakpoint and --width are mutually exclusive")
	case flags.Changed("width"):
		bp = ir.BreakpointForWidth(o.Width, cfg.Thresholds())
	case flags.Changed("breakpoint"):
		bp, err = ir.ParseBreakpoint(o.Breakpoint)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "invalid --breakpoint", err)
		}
	default:
		return nil, NewExitError(ExitCommandError, "one of --breakpoint or --width is required")
	}

	var in *ir.Intersection
	switch {
	case o.Unmeasured && flags.Changed("ratio"):
		return nil, NewExitError(ExitCommandError, "--ratio and --unmeasured are mutually exclusive")
	case o.Unmeasured:
	case o.Ratio < 0 || o.Ratio > 1:
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("--ratio must be within [0, 1], got %v", o.Ratio))
	default:
		in = engine.Ratio(o.Ratio)
	}

	dir := cfg.CatalogDir
	if flags.Changed("catalog") {
		dir = o.CatalogDir
	}
	catalog, err := catalogFor(dir)
	if err != nil {
		return nil, err
	}

	delayRate, duration := cfg.DelayRateMs, cfg.DurationMs
	if flags.Changed("delay-rate") {
		delayRate = o.DelayRate
	}
	if flags.Changed("duration") {
		duration = o.Duration
	}
	if delayRate < 0 || duration <= 0 {
		return nil, NewExitError(ExitCommandError, "--delay-rate must be >= 0 and --duration > 0")
	}

	targets := table.Targets()
	if o.Target != "" {
		targets = []string{o.Target}
	}

	return &inputs{
		table:      table,
		targets:    targets,
		breakpoint: bp,
		in:         in,
		resolver: engine.NewResolver(catalog,
			engine.WithDelayRate(delayRate),
			engine.WithDuration(duration),
		),
	}, nil
}

// ResolveOptions holds flags for the resolve command.
type ResolveOptions struct {
	*RootOptions
	InputOptions
}

// Resolution is one target's resolved style.
type Resolution struct {
	Target     string         `json:"target"`
	Breakpoint ir.Breakpoint  `json:"breakpoint"`
	Styled     bool           `json:"styled"`
	Descriptor *ir.Descriptor `json:"descriptor,omitempty"`
	Style      string         `json:"style"`
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ResolveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve the entrance animation of table targets",
		Long: `Resolve the inline style each target receives at a breakpoint.

The active breakpoint's assignments win; otherwise the next narrower
breakpoint that assigns the target is used. An unmeasured element gets
no style; a measured element outside the viewport keeps its timing but
names no animation.

Examples:
  reveal resolve --table '{"mobile":[["hero","fadeIn",0]]}' --width 800
  reveal resolve --table @table.json --target hero --breakpoint desktop --ratio 0
  reveal resolve --table @table.json --breakpoint tablet --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, opts)
		},
	}
	opts.register(cmd.Flags())
	return cmd
}

func runResolve(cmd *cobra.Command, opts *ResolveOptions) error {
	in, err := opts.parse(cmd, opts.RootOptions)
	if err != nil {
		return err
	}
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())
	logger.Debug("resolving", "targets", len(in.targets), "breakpoint", in.breakpoint, "measured", in.in != nil)

	out := make([]Resolution, len(in.targets))
	for i, target := range in.targets {
		d, ok := in.resolver.Resolve(in.table, target, in.breakpoint, in.in)
		out[i] = Resolution{
			Target:     target,
			Breakpoint: in.breakpoint,
			Styled:     ok,
			Style:      engine.StyleCSS(d, ok),
		}
		if ok {
			out[i].Descriptor = &d
		}
	}

	return newFormatter(cmd, opts.RootOptions).Render(out, func(w io.Writer) {
		if len(out) == 0 {
			fmt.Fprintln(w, "No targets.")
			return
		}
		for _, r := range out {
			if !r.Styled {
				fmt.Fprintf(w, "%s: no animation\n", r.Target)
				continue
			}
			fmt.Fprintf(w, "%s: %s (from %s)\n", r.Target, r.Style, r.Descriptor.Source)
		}
	})
}
