package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/reveal/internal/builder"
	"github.com/roach88/reveal/internal/compiler"
	"github.com/roach88/reveal/internal/formstate"
	"github.com/roach88/reveal/internal/harness"
	"github.com/roach88/reveal/internal/ir"
	"github.com/roach88/reveal/internal/store"
)

// BuilderOptions holds flags shared by the builder subcommands.
type BuilderOptions struct {
	*RootOptions
	Database   string
	Document   string
	Path       string
	Targets    []string
	CatalogDir string
}

// session is one opened document with a builder over its body.
type session struct {
	store   *store.Store
	doc     ir.Document
	form    *formstate.Tree
	builder *builder.Builder
	catalog ir.Catalog
}

// EditResult reports a saved builder edit.
type EditResult struct {
	Document string        `json:"document"`
	Revision int64         `json:"revision"`
	Saved    bool          `json:"saved"`
	Rows     []builder.Row `json:"rows"`
}

// NewBuilderCommand creates the builder command group.
func NewBuilderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BuilderOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "builder",
		Short: "Edit a document's assignment table",
		Long: `Edit the per-breakpoint animation assignments stored in a document.

Every edit saves a new revision; an edit that leaves the body unchanged
saves nothing.

Examples:
  reveal builder add mobile --doc home
  reveal builder set mobile 0 target hero --doc home --targets hero,cta
  reveal builder list --doc home --format json`,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.Database, "db", "", "path to SQLite database (default: $REVEAL_DB)")
	flags.StringVar(&opts.Document, "doc", "", "document name")
	flags.StringVar(&opts.Path, "path", harness.DefaultPath, "form path of the assignment table")
	flags.StringSliceVar(&opts.Targets, "targets", nil, "allowed target element ids (default: any)")
	flags.StringVar(&opts.CatalogDir, "catalog", "", "CUE catalog directory (default: $REVEAL_CATALOG_DIR or built-in)")

	cmd.AddCommand(
		newBuilderAddCommand(opts),
		newBuilderRemoveCommand(opts),
		newBuilderSetCommand(opts),
		newBuilderListCommand(opts),
		newBuilderTabsCommand(opts),
		newBuilderValidateCommand(opts),
		newBuilderHistoryCommand(opts),
		newBuilderDocsCommand(opts),
		newBuilderFindCommand(opts),
		newBuilderDeleteCommand(opts),
	)
	return cmd
}

func newBuilderAddCommand(opts *BuilderOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "add <breakpoint>",
		Short:         "Append an empty row",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.edit(cmd, args[0], func(s *session, bp ir.Breakpoint) error {
				_, err := s.builder.AddRow(bp)
				return err
			})
		},
	}
}

func newBuilderRemoveCommand(opts *BuilderOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "remove <breakpoint> <row>",
		Short:         "Remove the row at a position",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			row, err := strconv.Atoi(args[1])
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid row", err)
			}
			return opts.edit(cmd, args[0], func(s *session, bp ir.Breakpoint) error {
				return s.builder.RemoveRow(bp, row)
			})
		},
	}
}

func newBuilderSetCommand(opts *BuilderOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set <breakpoint> <row> <field> <value>",
		Short: "Set a row's target element or animation type",
		Long: `Set a row's target element or animation type.

Fields: target (targetElement), kind (animationType). The order slot is
written once when the row is added and cannot be edited.`,
		Args:          cobra.ExactArgs(4),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			row, err := strconv.Atoi(args[1])
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid row", err)
			}
			field, err := builder.ParseField(args[2])
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid field", err)
			}
			return opts.edit(cmd, args[0], func(s *session, bp ir.Breakpoint) error {
				return s.builder.SetField(bp, row, field, args[3])
			})
		},
	}
}

func newBuilderListCommand(opts *BuilderOptions) *cobra.Command {
	var revision int64
	cmd := &cobra.Command{
		Use:           "list [breakpoint]",
		Short:         "List rows",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			breakpoints := ir.Breakpoints
			if len(args) == 1 {
				bp, err := parseBreakpointArg(args[0])
				if err != nil {
					return err
				}
				breakpoints = []ir.Breakpoint{bp}
			}

			s, err := opts.open(cmd.Context(), revision)
			if err != nil {
				return err
			}
			defer s.store.Close()

			out := make(map[ir.Breakpoint][]builder.Row, len(breakpoints))
			for _, bp := range breakpoints {
				out[bp] = s.builder.Rows(bp)
			}
			return newFormatter(cmd, opts.RootOptions).Render(out, func(w io.Writer) {
				for _, bp := range breakpoints {
					fmt.Fprintf(w, "%s:\n", bp.Label())
					if len(out[bp]) == 0 {
						fmt.Fprintln(w, "  (no rows)")
					}
					for _, r := range out[bp] {
						fmt.Fprintf(w, "  [%d] %s\n", r.Index, describeTuple(r.Tuple))
					}
				}
			})
		},
	}
	cmd.Flags().Int64Var(&revision, "revision", 0, "list an earlier revision instead of the head")
	return cmd
}

func newBuilderTabsCommand(opts *BuilderOptions) *cobra.Command {
	var selected string
	cmd := &cobra.Command{
		Use:           "tabs",
		Short:         "Show the breakpoint tabs",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd.Context(), 0)
			if err != nil {
				return err
			}
			defer s.store.Close()

			if selected != "" {
				if err := s.builder.SelectTab(ir.Breakpoint(selected)); err != nil {
					return WrapExitError(ExitCommandError, "invalid --select", err)
				}
			}
			tabs := s.builder.Tabs()
			return newFormatter(cmd, opts.RootOptions).Render(tabs, func(w io.Writer) {
				for _, tab := range tabs {
					marker := " "
					if tab.Active {
						marker = "*"
					}
					fmt.Fprintf(w, "%s %-8s %s\n", marker, tab.Label, tab.State)
				}
			})
		},
	}
	cmd.Flags().StringVar(&selected, "select", "", "breakpoint tab to mark active")
	return cmd
}

func newBuilderValidateCommand(opts *BuilderOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "validate",
		Short:         "Check the table against the catalog and target options",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd.Context(), 0)
			if err != nil {
				return err
			}
			defer s.store.Close()

			v, _ := s.form.Read(opts.Path)
			// TableFromValue drops keys that name no breakpoint; report them first.
			var findings []compiler.ValidationError
			for _, key := range unknownKeys(v) {
				findings = append(findings, compiler.ValidationError{
					Field:   key,
					Message: fmt.Sprintf("unknown breakpoint %q, must be one of %v", key, ir.Breakpoints),
					Code:    compiler.ErrUnknownBreakpoint,
				})
			}
			findings = append(findings, compiler.ValidateTable(ir.TableFromValue(v), s.catalog, opts.Targets)...)

			msg := fmt.Sprintf("%d problem(s) found", len(findings))
			return newFormatter(cmd, opts.RootOptions).Report(findings, len(findings), CodeTableInvalid, msg, func(w io.Writer) {
				if len(findings) == 0 {
					fmt.Fprintln(w, "✓ Table valid")
					return
				}
				for _, f := range findings {
					fmt.Fprintf(w, "✗ %s\n", f.Error())
				}
			})
		},
	}
}

func newBuilderHistoryCommand(opts *BuilderOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "history",
		Short:         "List a document's revisions",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := opts.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			revs, err := st.ListRevisions(cmd.Context(), opts.Document)
			if err != nil {
				return storeError("failed to list revisions", err)
			}
			return newFormatter(cmd, opts.RootOptions).Render(revs, func(w io.Writer) {
				for _, r := range revs {
					fmt.Fprintf(w, "%4d  %s\n", r.Seq, r.Hash)
				}
			})
		},
	}
}

func newBuilderDocsCommand(opts *BuilderOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "docs",
		Short:         "List stored documents",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := opts.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			docs, err := st.ListDocuments(cmd.Context())
			if err != nil {
				return storeError("failed to list documents", err)
			}
			return newFormatter(cmd, opts.RootOptions).Render(docs, func(w io.Writer) {
				if len(docs) == 0 {
					fmt.Fprintln(w, "No documents.")
				}
				for _, d := range docs {
					fmt.Fprintf(w, "%-24s rev %d\n", d.Name, d.Revision)
				}
			})
		},
	}
}

func newBuilderFindCommand(opts *BuilderOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "find <hash>",
		Short: "List revisions whose body has the given hash",
		Long: `List every revision, in any document, whose body has the given content
hash. Hashes come from "builder history" or "builder list --format json".`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := opts.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			revs, err := st.RevisionsWithHash(cmd.Context(), args[0])
			if err != nil {
				return storeError("failed to find revisions", err)
			}
			return newFormatter(cmd, opts.RootOptions).Render(revs, func(w io.Writer) {
				if len(revs) == 0 {
					fmt.Fprintln(w, "No matching revisions.")
				}
				for _, r := range revs {
					fmt.Fprintf(w, "%s  rev %d\n", r.DocumentID, r.Seq)
				}
			})
		},
	}
}

func newBuilderDeleteCommand(opts *BuilderOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete",
		Short:         "Delete a document and its revisions",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Document == "" {
				return NewExitError(ExitCommandError, "--doc is required")
			}
			st, err := opts.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.DeleteDocument(cmd.Context(), opts.Document); err != nil {
				return storeError("failed to delete document", err)
			}
			return newFormatter(cmd, opts.RootOptions).Render(map[string]string{"deleted": opts.Document}, func(w io.Writer) {
				fmt.Fprintf(w, "Deleted %s\n", opts.Document)
			})
		},
	}
}

// edit opens the document, applies fn and saves the result.
func (o *BuilderOptions) edit(cmd *cobra.Command, bpArg string, fn func(*session, ir.Breakpoint) error) error {
	bp, err := parseBreakpointArg(bpArg)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	s, err := o.open(ctx, 0)
	if err != nil {
		return err
	}
	defer s.store.Close()

	if err := fn(s, bp); err != nil {
		return WrapExitError(ExitCommandError, "edit rejected", err)
	}

	doc, saved, err := s.store.SaveDocument(ctx, o.Document, s.form.Value())
	if err != nil {
		return storeError("failed to save document", err)
	}
	logger := newLogger(o.RootOptions, cmd.ErrOrStderr())
	logger.Debug("document saved", "doc", doc.Name, "revision", doc.Revision, "changed", saved)

	result := EditResult{Document: doc.Name, Revision: doc.Revision, Saved: saved, Rows: s.builder.Rows(bp)}
	return newFormatter(cmd, o.RootOptions).Render(result, func(w io.Writer) {
		if saved {
			fmt.Fprintf(w, "Saved %s revision %d\n", doc.Name, doc.Revision)
		} else {
			fmt.Fprintf(w, "No change to %s (revision %d)\n", doc.Name, doc.Revision)
		}
		for _, r := range result.Rows {
			fmt.Fprintf(w, "  [%d] %s\n", r.Index, describeTuple(r.Tuple))
		}
	})
}

func (o *BuilderOptions) openStore() (*store.Store, error) {
	cfg, err := o.Settings()
	if err != nil {
		return nil, err
	}
	path := o.Database
	if path == "" {
		path = cfg.DBPath
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

// open loads the document head, or the given revision when rev > 0. A
// missing document opens as an empty body.
func (o *BuilderOptions) open(ctx context.Context, rev int64) (*session, error) {
	if o.Document == "" {
		return nil, NewExitError(ExitCommandError, "--doc is required")
	}
	cfg, err := o.Settings()
	if err != nil {
		return nil, err
	}
	dir := cfg.CatalogDir
	if o.CatalogDir != "" {
		dir = o.CatalogDir
	}
	catalog, err := catalogFor(dir)
	if err != nil {
		return nil, err
	}

	st, err := o.openStore()
	if err != nil {
		return nil, err
	}

	var doc ir.Document
	if rev > 0 {
		doc, err = st.LoadRevision(ctx, o.Document, rev)
	} else {
		doc, err = st.LoadDocument(ctx, o.Document)
	}
	switch {
	case errors.Is(err, store.ErrNotFound) && rev == 0:
		doc = ir.Document{Name: o.Document, Body: ir.IRObject{}}
	case err != nil:
		st.Close()
		return nil, storeError("failed to load document", err)
	}

	form := formstate.NewTree(doc.Body)
	b, err := builder.New(form, o.Path, builder.WithTargets(ir.ValueOptions(o.Targets...)), builder.WithCatalog(catalog))
	if err != nil {
		st.Close()
		return nil, WrapExitError(ExitCommandError, "invalid --path", err)
	}
	return &session{store: st, doc: doc, form: form, builder: b, catalog: catalog}, nil
}

func parseBreakpointArg(s string) (ir.Breakpoint, error) {
	bp := ir.Breakpoint(s)
	if !bp.Valid() {
		return "", NewExitError(ExitCommandError, fmt.Sprintf("unknown breakpoint %q: must be one of %v", s, ir.Breakpoints))
	}
	return bp, nil
}

func storeError(message string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return WrapExitError(ExitFailure, message, err)
	}
	return WrapExitError(ExitCommandError, message, err)
}

// unknownKeys returns the keys of the table object that name no breakpoint.
func unknownKeys(v ir.IRValue) []string {
	obj, ok := v.(ir.IRObject)
	if !ok {
		return nil
	}
	var keys []string
	for _, k := range obj.SortedKeys() {
		if !ir.Breakpoint(k).Valid() {
			keys = append(keys, k)
		}
	}
	return keys
}

func describeTuple(t ir.AssignmentTuple) string {
	target, kind, order := t.Target, t.Kind, "-"
	if target == "" {
		target = "(unset)"
	}
	if kind == "" {
		kind = "(unset)"
	}
	if t.OrderSet {
		order = strconv.FormatInt(t.OrderIndex, 10)
	}
	return fmt.Sprintf("%s  %s  order=%s", target, kind, order)
}
