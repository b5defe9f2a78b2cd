package xlsxpatch

import (
	"errors"
	"fmt"

	"github.com/ukaji3/xlsxpatch/pkg/xlsxpatch/archive"
)

// ErrFileNotFound indicates the input file does not exist.
var ErrFileNotFound = errors.New("file not found")

// Error kinds. Every error returned by a Package matches exactly one of them
// with errors.Is.
var (
	// ErrArchive means the ZIP container could not be opened, read or written.
	ErrArchive = errors.New("archive error")
	// ErrStructure means a part is not well-formed XML or lacks an element
	// or attribute the format guarantees.
	ErrStructure = errors.New("invalid package structure")
	// ErrFormat means a required part is missing from the package.
	ErrFormat = errors.New("invalid xlsx format")
	// ErrInput means a row or cell was addressed that does not exist, or a
	// cell reference does not belong to the row it was created in.
	ErrInput = errors.New("invalid input")
	// ErrInvalidArgument means a cell or relationship reference is malformed.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrClosed means the package was used after Close or Discard.
	ErrClosed = errors.New("package is closed")
)

// PackageError carries the kind of failure, the part it concerns and, for
// archive failures, the numeric code reported by the archive layer.
type PackageError struct {
	Kind     error
	Fragment string
	Code     int
	Msg      string
	Err      error
}

func (e *PackageError) Error() string {
	msg := e.Kind.Error()
	if e.Fragment != "" {
		msg += fmt.Sprintf(" in %s", e.Fragment)
	}
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is matches the error's kind.
func (e *PackageError) Is(target error) bool {
	return target == e.Kind
}

func (e *PackageError) Unwrap() error {
	return e.Err
}

func newError(kind error, fragment, format string, args ...interface{}) *PackageError {
	return &PackageError{Kind: kind, Fragment: fragment, Msg: fmt.Sprintf(format, args...)}
}

// archiveError wraps a failure of the archive layer, copying its code.
func archiveError(fragment string, err error) *PackageError {
	pe := &PackageError{Kind: ErrArchive, Fragment: fragment, Err: err}
	var ae *archive.Error
	if errors.As(err, &ae) {
		pe.Code = ae.Code
	}
	return pe
}

func structureError(fragment string, err error, format string, args ...interface{}) *PackageError {
	pe := newError(ErrStructure, fragment, format, args...)
	pe.Err = err
	return pe
}

// ExtractionError represents a failure while extracting one worksheet.
type ExtractionError struct {
	SheetName string
	Component string // "cells", "used_range", "print_areas"
	Err       error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction error in sheet %q (%s): %v", e.SheetName, e.Component, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// NewExtractionError creates a new ExtractionError.
func NewExtractionError(sheetName, component string, err error) *ExtractionError {
	return &ExtractionError{
		SheetName: sheetName,
		Component: component,
		Err:       err,
	}
}
