package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/reveal/internal/compiler"
	"github.com/roach88/reveal/internal/ir"
)

// Error codes reported by catalog loading. E0xx are I/O and CUE stages,
// E1xx come from compiling animation kinds, E2xx are validation findings
// (see compiler).
const (
	ErrCodeGeneric     = "E001"
	ErrCodeScanError   = "E002"
	ErrCodeNoFiles     = "E003"
	ErrCodeLoadFailed  = "E004"
	ErrCodeNotFound    = "E005"
	ErrCodeBuildFailed = "E006"

	ErrCodeNoAnimations = "E101" // no animation block
	ErrCodeKindLabel    = "E102" // label missing or not a string
	ErrCodeFrame        = "E103" // keyframe missing or not a struct
	ErrCodeInvalidType  = "E104" // frame field of the wrong type
)

var fieldCodes = map[string]string{
	"animation": ErrCodeNoAnimations,
	"label":     ErrCodeKindLabel,
	"from":      ErrCodeFrame,
	"to":        ErrCodeFrame,
	"frame":     ErrCodeFrame,
	"x":         ErrCodeInvalidType,
	"y":         ErrCodeInvalidType,
	"opacity":   ErrCodeInvalidType,
}

// MapFieldToErrorCode returns the code for a CompileError field.
func MapFieldToErrorCode(field string) string {
	if code, ok := fieldCodes[field]; ok {
		return code
	}
	return ErrCodeGeneric
}

// LoadMode controls how much LoadCatalog reports.
type LoadMode int

const (
	// LoadModeFailFast returns the first error only.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll also validates a compiled catalog and returns
	// every finding.
	LoadModeCollectAll
)

// LoadResult is a compiled catalog and where it came from.
type LoadResult struct {
	Catalog   ir.Catalog
	CUEValue  cue.Value
	FileCount int
}

// LoadError is one catalog loading problem.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if !e.Pos.IsValid() {
		return e.Code + ": " + e.Message
	}
	return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
}

func loadFailure(code, format string, args ...any) []error {
	return []error{&LoadError{Code: code, Message: fmt.Sprintf(format, args...)}}
}

// LoadCatalog builds the CUE package in dir and compiles it into a
// catalog. Compilation stops at its first error; a nil result means the
// catalog could not be built at all.
func LoadCatalog(dir string, mode LoadMode) (*LoadResult, []error) {
	switch info, err := os.Stat(dir); {
	case errors.Is(err, fs.ErrNotExist):
		return nil, loadFailure(ErrCodeNotFound, "catalog directory not found: %s", dir)
	case err != nil:
		return nil, loadFailure(ErrCodeNotFound, "error accessing catalog directory: %v", err)
	case !info.IsDir():
		return nil, loadFailure(ErrCodeNotFound, "not a directory: %s", dir)
	}

	files, err := FindCUEFiles(dir)
	if err != nil {
		return nil, loadFailure(ErrCodeScanError, "error scanning directory: %v", err)
	}
	if len(files) == 0 {
		return nil, loadFailure(ErrCodeNoFiles, "no CUE files found in %s", dir)
	}

	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, loadFailure(ErrCodeLoadFailed, "no CUE instances loaded")
	}
	if err := instances[0].Err; err != nil {
		return nil, loadFailure(ErrCodeLoadFailed, "loading CUE files: %v", err)
	}
	value := cuecontext.New().BuildInstance(instances[0])
	if err := value.Err(); err != nil {
		return nil, loadFailure(ErrCodeBuildFailed, "building CUE value: %v", err)
	}

	catalog, err := compiler.CompileCatalog(value)
	if err != nil {
		return nil, []error{compileFailure(err)}
	}
	result := &LoadResult{Catalog: catalog, CUEValue: value, FileCount: len(files)}
	if mode == LoadModeFailFast {
		return result, nil
	}

	var errs []error
	for _, v := range compiler.Validate(catalog) {
		errs = append(errs, &LoadError{Code: v.Code, Message: v.Field + ": " + v.Message})
	}
	return result, errs
}

// FindCUEFiles returns every .cue file under dir.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func compileFailure(err error) *LoadError {
	var ce *compiler.CompileError
	if errors.As(err, &ce) {
		return &LoadError{Code: MapFieldToErrorCode(ce.Field), Message: ce.Message, Pos: ce.Pos}
	}
	return &LoadError{Code: ErrCodeGeneric, Message: "catalog: " + err.Error()}
}

// catalogFor returns the catalog in dir, or the built-in catalog when dir
// is empty.
func catalogFor(dir string) (ir.Catalog, error) {
	if dir == "" {
		return ir.DefaultCatalog(), nil
	}
	result, errs := LoadCatalog(dir, LoadModeFailFast)
	if len(errs) > 0 {
		return ir.Catalog{}, WrapExitError(ExitCommandError, "failed to load catalog", errs[0])
	}
	return result.Catalog, nil
}
