package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/reveal/internal/compiler"
	"github.com/roach88/reveal/internal/engine"
	"github.com/roach88/reveal/internal/ir"
)

// CatalogOptions holds flags for the catalog subcommands.
type CatalogOptions struct {
	*RootOptions
	Dir string
}

// CatalogValidation is the validate subcommand's result.
type CatalogValidation struct {
	Valid  bool     `json:"valid"`
	Source string   `json:"source"`
	Kinds  int      `json:"kinds"`
	Errors []string `json:"errors,omitempty"`
}

// NewCatalogCommand creates the catalog command group.
func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CatalogOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the animation catalog",
		Long: `Inspect the animation catalog.

Without --catalog (or $REVEAL_CATALOG_DIR) the built-in catalog is used.
A CUE catalog declares an optional timing function and one entry per kind:

  timing: "cubic-bezier(0,0,0,1)"
  animation: fadeFromTop: {
      label: "Fade from top"
      from: {opacity: 0, y: -50}
      to:   {opacity: 1}
  }`,
	}
	cmd.PersistentFlags().StringVar(&opts.Dir, "catalog", "", "CUE catalog directory")

	cmd.AddCommand(
		newCatalogListCommand(opts),
		newCatalogValidateCommand(opts),
		newCatalogCSSCommand(opts),
	)
	return cmd
}

func (o *CatalogOptions) dir() (string, error) {
	if o.Dir != "" {
		return o.Dir, nil
	}
	cfg, err := o.Settings()
	if err != nil {
		return "", err
	}
	return cfg.CatalogDir, nil
}

func (o *CatalogOptions) load() (ir.Catalog, error) {
	dir, err := o.dir()
	if err != nil {
		return ir.Catalog{}, err
	}
	return catalogFor(dir)
}

func newCatalogListCommand(opts *CatalogOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List animation kinds",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := opts.load()
			if err != nil {
				return err
			}
			kinds := catalog.Kinds()
			return newFormatter(cmd, opts.RootOptions).Render(kinds, func(w io.Writer) {
				for _, k := range kinds {
					fmt.Fprintf(w, "%-16s %-20s %s -> %s\n", k.Name, k.Label,
						describeFrame(k.Keyframes.From), describeFrame(k.Keyframes.To))
				}
			})
		},
	}
}

func newCatalogValidateCommand(opts *CatalogOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Compile and validate a catalog",
		Long: `Compile and validate a catalog, reporting every problem found.

Exit codes:
  0 - Catalog valid
  1 - Catalog invalid
  2 - Command error (missing directory, etc.)`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := opts.dir()
			if err != nil {
				return err
			}

			result := CatalogValidation{Source: dir}
			var errs []error
			if dir == "" {
				catalog := ir.DefaultCatalog()
				result.Source = "built-in"
				result.Kinds = catalog.Len()
				for _, v := range compiler.Validate(catalog) {
					errs = append(errs, v)
				}
			} else {
				var loaded *LoadResult
				loaded, errs = LoadCatalog(dir, LoadModeCollectAll)
				if loaded != nil {
					result.Kinds = loaded.Catalog.Len()
				} else if isCommandError(errs) {
					return WrapExitError(ExitCommandError, "failed to load catalog", errs[0])
				}
			}
			for _, e := range errs {
				result.Errors = append(result.Errors, e.Error())
			}
			result.Valid = len(result.Errors) == 0

			msg := fmt.Sprintf("%d catalog error(s)", len(result.Errors))
			return newFormatter(cmd, opts.RootOptions).Report(result, len(result.Errors), CodeCatalogInvalid, msg, func(w io.Writer) {
				if result.Valid {
					fmt.Fprintf(w, "✓ Catalog valid (%s, %d kinds)\n", result.Source, result.Kinds)
					return
				}
				for _, e := range result.Errors {
					fmt.Fprintf(w, "✗ %s\n", e)
				}
			})
		},
	}
}

func newCatalogCSSCommand(opts *CatalogOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "css",
		Short:         "Print @keyframes rules for every kind",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := opts.load()
			if err != nil {
				return err
			}
			css := engine.KeyframesCSS(catalog)
			return newFormatter(cmd, opts.RootOptions).Render(map[string]string{"css": css}, func(w io.Writer) {
				fmt.Fprint(w, css)
			})
		},
	}
}

// isCommandError reports whether loading failed before any CUE was
// compiled, i.e. the directory itself is unusable.
func isCommandError(errs []error) bool {
	if len(errs) != 1 {
		return false
	}
	le, ok := errs[0].(*LoadError)
	return ok && (le.Code == ErrCodeNotFound || le.Code == ErrCodeScanError || le.Code == ErrCodeNoFiles)
}

func describeFrame(f ir.Frame) string {
	return fmt.Sprintf("{opacity %g, x %d, y %d}", f.Opacity, f.TranslateX, f.TranslateY)
}
