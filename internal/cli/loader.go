package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue/token"

	"github.com/roach88/recordselect/internal/compiler"
	"github.com/roach88/recordselect/internal/ir"
)

// SchemaSet contains the record types loaded from a schemas directory.
type SchemaSet struct {
	Types     []ir.RecordType
	Registry  *compiler.Registry
	FileCount int // Number of CUE files found
}

// LoadError represents an error that occurred during schema loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Line returns the CUE source line, or 0 when unknown.
func (e *LoadError) Line() int {
	if e.Pos.IsValid() {
		return e.Pos.Line()
	}
	return 0
}

// LoadSchemas compiles the CUE record declarations in dir and registers
// them. Every failure is a *LoadError.
func LoadSchemas(dir string) (*SchemaSet, error) {
	if dir == "" {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: "schemas directory is required (--schemas or config schemas)"}
	}

	// Verify directory exists
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("schemas directory not found: %s", dir)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing schemas directory: %v", err)}
	}
	if !info.IsDir() {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}
	}

	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	if len(cueFiles) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}

	types, err := compiler.LoadDir(dir)
	if err != nil {
		return nil, convertCompileError(err)
	}
	if len(types) == 0 {
		return nil, &LoadError{Code: ErrCodeNoRecords, Message: fmt.Sprintf("no record declarations found in %s", dir)}
	}

	registry, err := compiler.NewRegistry(types...)
	if err != nil {
		return nil, convertCompileError(err)
	}

	return &SchemaSet{Types: types, Registry: registry, FileCount: len(cueFiles)}, nil
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error) *LoadError {
	var validationErr compiler.ValidationError
	if errors.As(err, &validationErr) {
		return &LoadError{Code: validationErr.Code, Message: err.Error()}
	}

	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		msg := compileErr.Message
		if prefix, _, ok := strings.Cut(err.Error(), ": "); ok && strings.HasPrefix(prefix, compiler.RecordRoot+".") {
			msg = prefix + ": " + msg
		}
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: msg,
			Pos:     compileErr.Pos,
		}
	}

	if strings.HasPrefix(err.Error(), "loading CUE files") {
		return &LoadError{Code: ErrCodeLoadFailed, Message: err.Error()}
	}
	return &LoadError{Code: ErrCodeGeneric, Message: err.Error()}
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeWriteFailed = "E007" // Store write error
	ErrCodeNoRecords   = "E008" // No record declarations
	ErrCodeBadInput    = "E009" // Malformed flag or data file
	ErrCodeStoreFailed = "E010" // Store could not be opened
)

// MapFieldToErrorCode maps a compiler error field to an error code.
func MapFieldToErrorCode(field string) string {
	switch field {
	case "fields":
		return compiler.ErrRecordNoFields
	case "type":
		return compiler.ErrInvalidFieldType
	case "key":
		return compiler.ErrInvalidKeyField
	case "cue":
		return ErrCodeBuildFailed
	default:
		return ErrCodeGeneric
	}
}
