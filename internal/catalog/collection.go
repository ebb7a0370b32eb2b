package catalog

import (
	"slices"

	"artshop/pkg/models"
)

// DefaultGalleries are the gallery subfolders known to the storefront.
var DefaultGalleries = []string{"pergamano", "original"}

// Collection is a set of named galleries built in one load. It is never
// modified after LoadGalleries returns; reloads produce a new value.
type Collection struct {
	Names []string                        `json:"names"`
	Items map[string][]models.GalleryItem `json:"galleries"`
}

func newCollection(names []string) *Collection {
	return &Collection{
		Names: slices.Clone(names),
		Items: make(map[string][]models.GalleryItem, len(names)),
	}
}

// Gallery returns a copy of the named gallery's items.
func (c *Collection) Gallery(name string) ([]models.GalleryItem, bool) {
	if c == nil {
		return nil, false
	}
	items, ok := c.Items[name]
	if !ok {
		return nil, false
	}
	return slices.Clone(items), true
}

// Item returns the item at index in the named gallery's display order.
func (c *Collection) Item(gallery string, index int) (models.GalleryItem, bool) {
	if c == nil {
		return models.GalleryItem{}, false
	}
	items := c.Items[gallery]
	if index < 0 || index >= len(items) {
		return models.GalleryItem{}, false
	}
	return items[index], true
}

// Len is the total item count over all galleries.
func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, items := range c.Items {
		n += len(items)
	}
	return n
}
