package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Check failure (scenarios failed, invalid catalog or table)
	ExitCommandError = 2 // Command error (invalid flags, unreadable files, database errors)
)

// Error codes carried by failed JSON responses.
const (
	CodeCatalogInvalid = "E_CATALOG_INVALID"
	CodeTableInvalid   = "E_TABLE_INVALID"
	CodeTestFailed     = "E_TEST_FAILED"
)

// ExitError is an error that carries the process exit code.
type ExitError struct {
	Code    int    // ExitFailure or ExitCommandError
	Message string
	Err     error // optional cause
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *ExitError) Unwrap() error { return e.Err }

// NewExitError creates an ExitError without a cause.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError attaches an exit code and message to err.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode maps err to a process exit code. Errors that are not an
// ExitError exit with ExitFailure; nil exits with ExitSuccess.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// CLIResponse is the envelope every command writes with --format json.
type CLIResponse struct {
	Status string    `json:"status"` // "ok" or "error"
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

// CLIError describes why a command reported failure.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// OutputFormatter writes command results as text or as a CLIResponse.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

func newFormatter(cmd *cobra.Command, opts *RootOptions) *OutputFormatter {
	return &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
}

// Render writes data as an "ok" response in JSON mode, or calls text to
// write the human-readable form.
func (f *OutputFormatter) Render(data any, text func(w io.Writer)) error {
	return f.write(CLIResponse{Status: "ok", Data: data}, text)
}

// Report renders the result of a check. With no failures it behaves like
// Render. Otherwise the JSON response is marked "error" with code, and the
// returned ExitError carries ExitFailure and message.
func (f *OutputFormatter) Report(data any, failures int, code, message string, text func(w io.Writer)) error {
	if failures == 0 {
		return f.Render(data, text)
	}
	resp := CLIResponse{
		Status: "error",
		Data:   data,
		Error:  &CLIError{Code: code, Message: message},
	}
	if err := f.write(resp, text); err != nil {
		return err
	}
	return NewExitError(ExitFailure, message)
}

func (f *OutputFormatter) write(resp CLIResponse, text func(w io.Writer)) error {
	if f.Format != "json" {
		text(f.Writer)
		return nil
	}
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}
