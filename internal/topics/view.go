package topics

import (
	"artshop/pkg/models"
	"artshop/pkg/money"
)

// Selection is the expand state of the tree: at most one active entry per level.
type Selection struct {
	Topic    string `json:"topic"`
	Subtopic string `json:"subtopic"`
	Gallery  string `json:"gallery"`
}

// ItemLookup returns the items of a gallery folder.
type ItemLookup func(gallery string) []models.GalleryItem

type ItemView struct {
	models.GalleryItem
	Index      int    `json:"index"`
	PriceLabel string `json:"price_label"`
}

type NodeView struct {
	Name     string     `json:"name"`
	Kind     string     `json:"kind"`
	Gallery  string     `json:"gallery,omitempty"`
	Sound    string     `json:"sound,omitempty"`
	Expanded bool       `json:"expanded"`
	Children []NodeView `json:"children,omitempty"`
	Items    []ItemView `json:"items,omitempty"`
}

type TopicView struct {
	Name      string     `json:"name"`
	Color     string     `json:"color"`
	Expanded  bool       `json:"expanded"`
	Subtopics []NodeView `json:"subtopics,omitempty"`
}

// BuildView renders the tree for a selection. Collapsed entries carry no
// children, and gallery items appear only under the active gallery.
func BuildView(t *Tree, sel Selection, lookup ItemLookup) []TopicView {
	if t == nil {
		return nil
	}
	out := make([]TopicView, 0, len(t.Topics))
	for _, tp := range t.Topics {
		tv := TopicView{
			Name:     tp.Name,
			Color:    tp.Color,
			Expanded: sel.Topic == tp.Name,
		}
		if tv.Expanded {
			tv.Subtopics = buildNodes(tp.Subtopics, sel, lookup)
		}
		out = append(out, tv)
	}
	return out
}

func buildNodes(nodes []Node, sel Selection, lookup ItemLookup) []NodeView {
	out := make([]NodeView, 0, len(nodes))
	for _, n := range nodes {
		nv := NodeView{
			Name:    n.Name,
			Kind:    n.Kind(),
			Gallery: n.Gallery,
			Sound:   n.Sound,
		}
		switch nv.Kind {
		case KindGroup:
			nv.Expanded = sel.Subtopic == n.Name
			if nv.Expanded {
				nv.Children = buildNodes(n.Children, sel, lookup)
			}
		case KindGallery:
			nv.Expanded = sel.Gallery == n.Name
			if nv.Expanded && lookup != nil {
				nv.Items = itemViews(lookup(n.Gallery))
			}
		}
		out = append(out, nv)
	}
	return out
}

func itemViews(items []models.GalleryItem) []ItemView {
	out := make([]ItemView, 0, len(items))
	for i, it := range items {
		out = append(out, ItemView{
			GalleryItem: it,
			Index:       i,
			PriceLabel:  money.Format(it.Price),
		})
	}
	return out
}

// FindGallery maps a gallery entry's display name to its folder.
func (t *Tree) FindGallery(name string) (string, bool) {
	var found string
	var walk func([]Node) bool
	walk = func(nodes []Node) bool {
		for _, n := range nodes {
			if n.Kind() == KindGallery && n.Name == name {
				found = n.Gallery
				return true
			}
			if walk(n.Children) {
				return true
			}
		}
		return false
	}
	for _, tp := range t.Topics {
		if walk(tp.Subtopics) {
			return found, true
		}
	}
	return "", false
}
