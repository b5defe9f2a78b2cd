// Package xlsxpatch edits existing .xlsx packages in place. Only the XML
// parts that are actually modified are rewritten; everything else in the
// ZIP container is carried over untouched.
package xlsxpatch

import (
	"io"
	"log/slog"
)

// AccessMode decides what a row or cell lookup does when the target does
// not exist.
type AccessMode string

const (
	// ModeNil returns a nil handle and no error.
	ModeNil AccessMode = "nil"
	// ModeError returns an error matching ErrInput.
	ModeError AccessMode = "error"
	// ModeCreate inserts the missing row or cell at its sorted position.
	ModeCreate AccessMode = "create"
)

// Options configures how a package is opened.
type Options struct {
	// Logger receives debug and info records. If nil, logging is discarded.
	Logger *slog.Logger
	// IncludeLinks specifies whether extraction includes cell hyperlinks.
	// If nil, defaults to true.
	IncludeLinks *bool
	// IncludePrintAreas specifies whether extraction includes print areas.
	// If nil, defaults to true.
	IncludePrintAreas *bool
}

// DefaultOptions returns default options.
func DefaultOptions() Options {
	return Options{}
}

// ShouldIncludeLinks returns whether to include cell hyperlinks.
func (o Options) ShouldIncludeLinks() bool {
	if o.IncludeLinks != nil {
		return *o.IncludeLinks
	}
	return true
}

// ShouldIncludePrintAreas returns whether to include print areas.
func (o Options) ShouldIncludePrintAreas() bool {
	if o.IncludePrintAreas != nil {
		return *o.IncludePrintAreas
	}
	return true
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
