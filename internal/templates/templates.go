// Package templates holds the catalog of story-structure outlines that can seed
// a project's item tree.
package templates

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Beat is a single named unit of narrative structure. It becomes a document.
type Beat struct {
	Name    string `yaml:"name"`
	Content string `yaml:"content"` // Guidance text copied into the document
}

// Entry is a top-level element of a template: either a standalone beat or a
// group of beats that becomes a folder.
type Entry struct {
	Name    string `yaml:"name"`
	Content string `yaml:"content,omitempty"`
	Color   string `yaml:"color,omitempty"`
	Icon    string `yaml:"icon,omitempty"`
	Beats   []Beat `yaml:"beats,omitempty"`
}

// IsGroup reports whether the entry becomes a folder with child documents.
func (e Entry) IsGroup() bool {
	return len(e.Beats) > 0
}

// Template is a named outline. Templates are shared; treat them as read-only.
type Template struct {
	ID          string  `yaml:"id"`
	Label       string  `yaml:"label"`
	Description string  `yaml:"description"`
	Icon        string  `yaml:"icon"`
	Entries     []Entry `yaml:"entries"`
}

// Counts returns how many folders and documents applying the template creates.
func (t *Template) Counts() (folders, documents int) {
	for _, e := range t.Entries {
		if e.IsGroup() {
			folders++
			documents += len(e.Beats)
			continue
		}
		documents++
	}
	return folders, documents
}

// ItemCount returns the total number of items applying the template creates.
func (t *Template) ItemCount() int {
	folders, documents := t.Counts()
	return folders + documents
}

// Summary describes a template for a selection list.
type Summary struct {
	ID          string
	Label       string
	Description string
	Icon        string
	Items       int
}

// Catalog is an immutable, ordered set of templates keyed by id.
type Catalog struct {
	templates []*Template
	byID      map[string]*Template
}

type catalogFile struct {
	Templates []*Template `yaml:"templates"`
}

// Load parses and validates a YAML catalog.
func Load(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file catalogFile
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("template catalog is empty")
		}
		return nil, fmt.Errorf("failed to parse template catalog: %w", err)
	}

	c := &Catalog{byID: make(map[string]*Template, len(file.Templates))}
	for i, t := range file.Templates {
		if err := validate(t); err != nil {
			return nil, fmt.Errorf("template %d: %w", i, err)
		}
		if _, dup := c.byID[t.ID]; dup {
			return nil, fmt.Errorf("template %d: duplicate id %q", i, t.ID)
		}
		c.byID[t.ID] = t
		c.templates = append(c.templates, t)
	}
	if len(c.templates) == 0 {
		return nil, errors.New("template catalog has no templates")
	}

	return c, nil
}

// LoadFile loads the catalog at path, or returns the built-in catalog when path
// is empty.
func LoadFile(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open template catalog: %w", err)
	}
	defer f.Close()
	return Load(f)
}

func validate(t *Template) error {
	if t == nil || t.ID == "" {
		return errors.New("missing id")
	}
	if t.Label == "" {
		return fmt.Errorf("%s: missing label", t.ID)
	}
	if len(t.Entries) == 0 {
		return fmt.Errorf("%s: no entries", t.ID)
	}
	for i, e := range t.Entries {
		if e.Name == "" {
			return fmt.Errorf("%s: entry %d has no name", t.ID, i)
		}
		if e.Beats != nil && len(e.Beats) == 0 {
			return fmt.Errorf("%s: group %q has no beats", t.ID, e.Name)
		}
		for j, b := range e.Beats {
			if b.Name == "" {
				return fmt.Errorf("%s: beat %d of %q has no name", t.ID, j, e.Name)
			}
		}
	}
	return nil
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the built-in catalog.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Load(bytes.NewReader(catalogYAML))
		if err != nil {
			panic(fmt.Sprintf("templates: embedded catalog is invalid: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Get returns the template with the given id.
func (c *Catalog) Get(id string) (*Template, bool) {
	t, ok := c.byID[id]
	return t, ok
}

// List returns summaries of every template in catalog order.
func (c *Catalog) List() []Summary {
	out := make([]Summary, 0, len(c.templates))
	for _, t := range c.templates {
		out = append(out, Summary{
			ID:          t.ID,
			Label:       t.Label,
			Description: t.Description,
			Icon:        t.Icon,
			Items:       t.ItemCount(),
		})
	}
	return out
}

// Len returns the number of templates.
func (c *Catalog) Len() int {
	return len(c.templates)
}
