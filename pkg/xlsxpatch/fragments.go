package xlsxpatch

import (
	"log/slog"

	"github.com/beevik/etree"
)

// Archive is the container a fragment cache reads parts from and writes
// them back to. *archive.Archive implements it.
type Archive interface {
	Read(name string) ([]byte, bool, error)
	Has(name string) bool
	Delete(name string) error
	Add(name string, data []byte) error
	Close() error
	Discard() error
}

// fragmentCache materializes XML parts on first use and remembers which of
// them were modified.
type fragmentCache struct {
	arc     Archive
	log     *slog.Logger
	docs    map[string]*etree.Document
	dirty   []string
	isDirty map[string]bool
}

func newFragmentCache(arc Archive, log *slog.Logger) *fragmentCache {
	return &fragmentCache{
		arc:     arc,
		log:     log,
		docs:    make(map[string]*etree.Document),
		isDirty: make(map[string]bool),
	}
}

// get returns the parsed tree of name, loading it on first access.
func (c *fragmentCache) get(name string) (*etree.Document, error) {
	if doc, ok := c.docs[name]; ok {
		return doc, nil
	}

	data, ok, err := c.arc.Read(name)
	if err != nil {
		return nil, archiveError(name, err)
	}
	if !ok {
		return nil, newError(ErrFormat, name, "part not found in package")
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, structureError(name, err, "cannot parse XML")
	}
	if doc.Root() == nil {
		return nil, newError(ErrStructure, name, "no root element")
	}

	c.log.Debug("loaded fragment", "name", name, "bytes", len(data))
	c.docs[name] = doc
	return doc, nil
}

// root returns the root element of name.
func (c *fragmentCache) root(name string) (*etree.Element, error) {
	doc, err := c.get(name)
	if err != nil {
		return nil, err
	}
	return doc.Root(), nil
}

// exists reports whether the package holds name, without parsing it.
func (c *fragmentCache) exists(name string) bool {
	if _, ok := c.docs[name]; ok {
		return true
	}
	return c.arc.Has(name)
}

func (c *fragmentCache) markDirty(name string) {
	if c.isDirty[name] {
		return
	}
	c.isDirty[name] = true
	c.dirty = append(c.dirty, name)
}

func (c *fragmentCache) dirtyNames() []string {
	return c.dirty
}

// saveAll writes every modified tree back to the archive. A failure aborts
// the loop; parts written before it stay written.
func (c *fragmentCache) saveAll() error {
	for _, name := range c.dirty {
		doc, ok := c.docs[name]
		if !ok {
			continue
		}
		// Line breaks in attribute values and carriage returns in text
		// would otherwise be normalized away on the next read.
		doc.WriteSettings.CanonicalAttrVal = true
		doc.WriteSettings.CanonicalText = true
		data, err := doc.WriteToBytes()
		if err != nil {
			return structureError(name, err, "cannot serialize XML")
		}
		if c.arc.Has(name) {
			if err := c.arc.Delete(name); err != nil {
				return archiveError(name, err)
			}
		}
		if err := c.arc.Add(name, data); err != nil {
			return archiveError(name, err)
		}
		c.log.Debug("wrote fragment", "name", name, "bytes", len(data))
	}
	c.dirty = nil
	c.isDirty = make(map[string]bool)
	return nil
}

// reset drops every cached tree.
func (c *fragmentCache) reset() {
	c.docs = make(map[string]*etree.Document)
	c.dirty = nil
	c.isDirty = make(map[string]bool)
}
