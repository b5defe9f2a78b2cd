package xlsxpatch

import (
	"errors"
	"log/slog"
	"os"
	"strings"

	"github.com/beevik/etree"

	"github.com/ukaji3/xlsxpatch/pkg/xlsxpatch/archive"
	"github.com/ukaji3/xlsxpatch/pkg/xlsxpatch/parser"
)

// Package is an open spreadsheet package. It is not safe for concurrent use;
// Row and Cell handles obtained from it are valid until it is closed.
type Package struct {
	path   string
	opts   Options
	log    *slog.Logger
	arc    Archive
	frags  *fragmentCache
	closed bool

	// calcChainStale is set once any formula was written or removed.
	calcChainStale bool
	// epoch is resolved from workbookPr on first date read.
	epoch parser.Epoch
}

// Open opens the .xlsx file at path for editing.
func Open(path string, opts Options) (*Package, error) {
	arc, err := archive.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &PackageError{Kind: ErrArchive, Code: archive.CodeNoEntry, Msg: path, Err: ErrFileNotFound}
		}
		return nil, archiveError("", err)
	}
	p := newPackage(path, arc, opts)
	p.log.Info("opened package", "path", path)
	return p, nil
}

// newPackage wraps an already opened archive.
func newPackage(path string, arc Archive, opts Options) *Package {
	log := opts.logger()
	return &Package{
		path:  path,
		opts:  opts,
		log:   log,
		arc:   arc,
		frags: newFragmentCache(arc, log),
	}
}

// Path returns the file the package was opened from.
func (p *Package) Path() string {
	return p.path
}

// Save writes every modified part back into the archive. When a formula was
// written or removed since the last save, the calculation chain is dropped
// so that the spreadsheet application recalculates on open. With closeAfter
// the package is closed, which commits the archive to disk.
//
// Save is not atomic across parts: if writing one part fails, parts written
// before it remain written.
func (p *Package) Save(closeAfter bool) error {
	if err := p.checkOpen(); err != nil {
		return err
	}

	dropCalcChain := p.calcChainStale && p.frags.exists(parser.CalcChainPart)
	if dropCalcChain {
		if err := p.unlinkCalcChain(); err != nil {
			return err
		}
	}

	dirty := len(p.frags.dirtyNames())
	if err := p.frags.saveAll(); err != nil {
		return err
	}

	if dropCalcChain {
		if err := p.arc.Delete(parser.CalcChainPart); err != nil {
			return archiveError(parser.CalcChainPart, err)
		}
		p.log.Info("removed calculation chain", "path", p.path)
	}
	p.calcChainStale = false
	p.log.Info("saved package", "path", p.path, "fragments", dirty)

	if closeAfter {
		return p.Close()
	}
	return nil
}

// Close commits the parts written by Save to disk and releases the package.
// Modifications that were not saved are discarded. If the file cannot be
// written the package stays open, so Close can be retried or Discard called.
func (p *Package) Close() error {
	if err := p.checkOpen(); err != nil {
		return err
	}
	if err := p.arc.Close(); err != nil {
		return archiveError("", err)
	}
	p.closed = true
	p.frags.reset()
	p.log.Info("closed package", "path", p.path)
	return nil
}

// Discard releases the package without writing anything to disk.
func (p *Package) Discard() error {
	if err := p.checkOpen(); err != nil {
		return err
	}
	p.closed = true
	p.frags.reset()
	if err := p.arc.Discard(); err != nil {
		return archiveError("", err)
	}
	return nil
}

func (p *Package) checkOpen() error {
	if p.closed {
		return &PackageError{Kind: ErrClosed, Msg: p.path}
	}
	return nil
}

// invalidateCalcChain records that the cached evaluation order is stale.
func (p *Package) invalidateCalcChain() {
	if !p.calcChainStale {
		p.log.Debug("calculation chain invalidated")
	}
	p.calcChainStale = true
}

// unlinkCalcChain removes the references to the calculation chain from the
// workbook relationships and the content types, so that deleting the part
// leaves no dangling pointer behind.
func (p *Package) unlinkCalcChain() error {
	if p.frags.exists(parser.WorkbookRelsPart) {
		rels, err := p.frags.root(parser.WorkbookRelsPart)
		if err != nil {
			return err
		}
		for _, rel := range rels.SelectElements("Relationship") {
			target := rel.SelectAttrValue("Target", "")
			if parser.ResolveRelativePath(target, "xl") == parser.CalcChainPart {
				rels.RemoveChild(rel)
				p.frags.markDirty(parser.WorkbookRelsPart)
			}
		}
	}
	if p.frags.exists(parser.ContentTypesPart) {
		types, err := p.frags.root(parser.ContentTypesPart)
		if err != nil {
			return err
		}
		for _, o := range types.SelectElements("Override") {
			if strings.TrimPrefix(o.SelectAttrValue("PartName", ""), "/") == parser.CalcChainPart {
				types.RemoveChild(o)
				p.frags.markDirty(parser.ContentTypesPart)
			}
		}
	}
	return nil
}

// markDirty flags a part for rewriting on the next Save.
func (p *Package) markDirty(name string) {
	p.frags.markDirty(name)
}

// insertBefore inserts child into parent ahead of the first existing child
// whose tag is one of tags, or appends it when there is none.
func insertBefore(parent, child *etree.Element, tags ...string) {
	for _, t := range parent.Child {
		el, ok := t.(*etree.Element)
		if !ok {
			continue
		}
		for _, tag := range tags {
			if el.Tag == tag {
				parent.InsertChildAt(el.Index(), child)
				return
			}
		}
	}
	parent.AddChild(child)
}

// newSibling creates an unattached element in the same namespace prefix as
// parent's children.
func newSibling(parent *etree.Element, tag string) *etree.Element {
	el := etree.NewElement(tag)
	el.Space = parent.Space
	return el
}
