// Package game provides the item catalog and the player session state.
package game

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/price-check/internal/model"
)

// Catalog resolves item ids to item metadata.
type Catalog interface {
	Item(id uint32) (model.Item, bool)
}

// StaticCatalog is an in-memory catalog.
type StaticCatalog struct {
	items map[uint32]model.Item
}

type catalogFile struct {
	Items []model.Item `yaml:"items"`
}

// NewStaticCatalog builds a catalog from items. Later duplicates win.
func NewStaticCatalog(items []model.Item) *StaticCatalog {
	c := &StaticCatalog{items: make(map[uint32]model.Item, len(items))}
	for _, it := range items {
		c.items[it.ID] = it
	}
	return c
}

// LoadCatalog reads a YAML catalog file.
func LoadCatalog(path string) (*StaticCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "game: read catalog %s", path)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes YAML catalog content.
func ParseCatalog(data []byte) (*StaticCatalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrap(err, "game: parse catalog")
	}
	for i, it := range f.Items {
		if it.ID == 0 {
			return nil, eris.Errorf("game: catalog entry %d has no id", i)
		}
	}
	return NewStaticCatalog(f.Items), nil
}

// Item returns the item for id.
func (c *StaticCatalog) Item(id uint32) (model.Item, bool) {
	it, ok := c.items[id]
	return it, ok
}

// Len returns the number of items.
func (c *StaticCatalog) Len() int {
	return len(c.items)
}
