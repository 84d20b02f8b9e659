package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/reveal/internal/engine"
	"github.com/roach88/reveal/internal/ir"
)

// SampleOptions holds flags for the sample command.
type SampleOptions struct {
	*RootOptions
	InputOptions
	At []time.Duration
}

// SampledFrame is the frame shown at one instant.
type SampledFrame struct {
	AtMs  int64    `json:"at_ms"`
	Frame ir.Frame `json:"frame"`
}

// Samples are one target's frames over time.
type Samples struct {
	Target string         `json:"target"`
	Styled bool           `json:"styled"`
	Kind   string         `json:"kind,omitempty"`
	Frames []SampledFrame `json:"frames"`
}

// NewSampleCommand creates the sample command.
func NewSampleCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SampleOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Sample the animated frame of table targets over time",
		Long: `Resolve targets like "resolve", then report the opacity and translation
each one shows at the given times after it became visible.

Examples:
  reveal sample --table @table.json --breakpoint mobile --at 0s,150ms,600ms,2s
  reveal sample --table @table.json --target hero --width 1200 --at 500ms --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSample(cmd, opts)
		},
	}
	opts.register(cmd.Flags())
	cmd.Flags().DurationSliceVar(&opts.At, "at", []time.Duration{0}, "times since the element became visible")
	return cmd
}

func runSample(cmd *cobra.Command, opts *SampleOptions) error {
	in, err := opts.parse(cmd, opts.RootOptions)
	if err != nil {
		return err
	}
	for _, at := range opts.At {
		if at < 0 {
			return NewExitError(ExitCommandError, fmt.Sprintf("--at must not be negative, got %v", at))
		}
	}

	out := make([]Samples, len(in.targets))
	for i, target := range in.targets {
		d, ok := in.resolver.Resolve(in.table, target, in.breakpoint, in.in)
		s := Samples{Target: target, Styled: ok, Kind: d.Kind, Frames: make([]SampledFrame, len(opts.At))}
		for j, at := range opts.At {
			s.Frames[j] = SampledFrame{AtMs: at.Milliseconds(), Frame: engine.Sample(d, at)}
		}
		out[i] = s
	}

	return newFormatter(cmd, opts.RootOptions).Render(out, func(w io.Writer) {
		for _, s := range out {
			label := s.Kind
			if !s.Styled {
				label = "no animation"
			}
			fmt.Fprintf(w, "%s (%s)\n", s.Target, label)
			for _, f := range s.Frames {
				fmt.Fprintf(w, "  %6dms  opacity=%.3f x=%dpx y=%dpx\n",
					f.AtMs, f.Frame.Opacity, f.Frame.TranslateX, f.Frame.TranslateY)
			}
		}
	})
}
