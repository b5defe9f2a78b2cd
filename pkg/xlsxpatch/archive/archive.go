// Package archive provides the ZIP container underneath a spreadsheet
// package: named entries can be read, deleted and added, and the result is
// written back to disk when the archive is closed.
//
// Entries that are never deleted are copied to the output in their original
// compressed form, so untouched parts stay byte-for-byte identical. An entry
// that is deleted and added again keeps its original position in the
// central directory.
package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/natefinch/atomic"
)

// Error codes reported by Error.Code. The numbering follows libzip so the
// codes are familiar to anyone who has debugged a broken package before.
const (
	CodeOK      = 0
	CodeRead    = 5
	CodeWrite   = 6
	CodeClosed  = 8
	CodeNoEntry = 9
	CodeExists  = 10
	CodeOpen    = 11
	CodeZlib    = 13
	CodeInvalid = 18
	CodeNotZip  = 19
	CodeDeleted = 23
)

// Error is returned by every Archive operation that fails.
type Error struct {
	Op   string // "open", "read", "delete", "add", "close"
	Name string // entry name, or the file path for open/close
	Code int
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("archive %s %q: code %d: %v", e.Op, e.Name, e.Code, e.Err)
	}
	return fmt.Sprintf("archive %s %q: code %d", e.Op, e.Name, e.Code)
}

func (e *Error) Unwrap() error {
	return e.Err
}

var (
	errNoEntry = errors.New("no such entry")
	errExists  = errors.New("entry already exists")
	errClosed  = errors.New("archive is closed")
)

type entry struct {
	name    string
	file    *zip.File       // original entry, copied raw on close
	header  *zip.FileHeader // metadata of the original entry, kept across delete/add
	data    []byte          // content of an added entry
	deleted bool
}

// Archive is an open ZIP file. It is not safe for concurrent use.
type Archive struct {
	path    string
	comment string
	entries []*entry
	byName  map[string]*entry
	changed bool
	closed  bool
}

// Open reads the ZIP file at path into memory.
func Open(path string) (*Archive, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		code := CodeOpen
		if errors.Is(err, os.ErrNotExist) {
			code = CodeNoEntry
		}
		return nil, &Error{Op: "open", Name: path, Code: code, Err: err}
	}

	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, &Error{Op: "open", Name: path, Code: CodeNotZip, Err: err}
	}

	a := &Archive{
		path:    path,
		comment: zr.Comment,
		byName:  make(map[string]*entry, len(zr.File)),
	}
	for _, f := range zr.File {
		if _, dup := a.byName[f.Name]; dup {
			return nil, &Error{Op: "open", Name: f.Name, Code: CodeInvalid, Err: errExists}
		}
		hdr := f.FileHeader
		e := &entry{name: f.Name, file: f, header: &hdr}
		a.entries = append(a.entries, e)
		a.byName[f.Name] = e
	}
	return a, nil
}

// Path returns the file the archive was opened from.
func (a *Archive) Path() string {
	return a.path
}

// Has reports whether the archive currently holds an entry called name.
func (a *Archive) Has(name string) bool {
	e, ok := a.byName[name]
	return ok && !e.deleted
}

// Names lists the live entries in archive order.
func (a *Archive) Names() []string {
	names := make([]string, 0, len(a.entries))
	for _, e := range a.entries {
		if !e.deleted {
			names = append(names, e.name)
		}
	}
	return names
}

// Read returns the uncompressed content of name. The boolean is false when
// the archive has no such entry.
func (a *Archive) Read(name string) ([]byte, bool, error) {
	if a.closed {
		return nil, false, &Error{Op: "read", Name: name, Code: CodeClosed, Err: errClosed}
	}
	e, ok := a.byName[name]
	if !ok || e.deleted {
		return nil, false, nil
	}
	if e.file == nil {
		return bytes.Clone(e.data), true, nil
	}

	rc, err := e.file.Open()
	if err != nil {
		return nil, false, &Error{Op: "read", Name: name, Code: CodeZlib, Err: err}
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, false, &Error{Op: "read", Name: name, Code: CodeRead, Err: err}
	}
	return data, true, nil
}

// Delete removes name from the archive.
func (a *Archive) Delete(name string) error {
	if a.closed {
		return &Error{Op: "delete", Name: name, Code: CodeClosed, Err: errClosed}
	}
	e, ok := a.byName[name]
	if !ok || e.deleted {
		return &Error{Op: "delete", Name: name, Code: CodeNoEntry, Err: errNoEntry}
	}
	e.deleted = true
	e.file = nil
	e.data = nil
	a.changed = true
	return nil
}

// Add stores data under name. Adding over a live entry fails; adding over a
// deleted one reuses its slot and metadata.
func (a *Archive) Add(name string, data []byte) error {
	if a.closed {
		return &Error{Op: "add", Name: name, Code: CodeClosed, Err: errClosed}
	}
	if e, ok := a.byName[name]; ok {
		if !e.deleted {
			return &Error{Op: "add", Name: name, Code: CodeExists, Err: errExists}
		}
		e.deleted = false
		e.data = bytes.Clone(data)
		a.changed = true
		return nil
	}
	e := &entry{name: name, data: bytes.Clone(data)}
	a.entries = append(a.entries, e)
	a.byName[name] = e
	a.changed = true
	return nil
}

// Close writes pending changes back to the file, replacing it atomically,
// and releases the archive. An unchanged archive is not rewritten. A failed
// write leaves the archive open with its pending changes.
func (a *Archive) Close() error {
	if a.closed {
		return &Error{Op: "close", Name: a.path, Code: CodeClosed, Err: errClosed}
	}
	if a.changed {
		var buf bytes.Buffer
		if err := a.writeTo(&buf); err != nil {
			return &Error{Op: "close", Name: a.path, Code: CodeWrite, Err: err}
		}
		if err := atomic.WriteFile(a.path, &buf); err != nil {
			return &Error{Op: "close", Name: a.path, Code: CodeWrite, Err: err}
		}
	}
	a.closed = true
	return nil
}

// Discard releases the archive without writing anything.
func (a *Archive) Discard() error {
	if a.closed {
		return &Error{Op: "close", Name: a.path, Code: CodeClosed, Err: errClosed}
	}
	a.closed = true
	return nil
}

func (a *Archive) writeTo(w io.Writer) error {
	zw := zip.NewWriter(w)
	if a.comment != "" {
		if err := zw.SetComment(a.comment); err != nil {
			return err
		}
	}
	for _, e := range a.entries {
		if e.deleted {
			continue
		}
		if e.file != nil {
			if err := zw.Copy(e.file); err != nil {
				return fmt.Errorf("copy %s: %w", e.name, err)
			}
			continue
		}
		fw, err := zw.CreateHeader(newHeader(e))
		if err != nil {
			return fmt.Errorf("create %s: %w", e.name, err)
		}
		if _, err := fw.Write(e.data); err != nil {
			return fmt.Errorf("write %s: %w", e.name, err)
		}
	}
	return zw.Close()
}

func newHeader(e *entry) *zip.FileHeader {
	hdr := &zip.FileHeader{
		Name:     e.name,
		Method:   zip.Deflate,
		Modified: time.Now(),
	}
	if e.header != nil {
		hdr.Comment = e.header.Comment
		hdr.Modified = e.header.Modified
		if e.header.Method == zip.Store {
			hdr.Method = zip.Store
		}
	}
	return hdr
}
