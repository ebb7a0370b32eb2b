package topics

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default_topics.yaml
var defaultTopics []byte

// Node kinds.
const (
	KindLabel   = "label"
	KindGroup   = "group"
	KindGallery = "gallery"
	KindSound   = "sound"
)

// Node is a subtopic entry. Its kind follows from which fields are set:
// children make a group, gallery a gallery, sound a sound item.
type Node struct {
	Name     string `yaml:"name" json:"name"`
	Gallery  string `yaml:"gallery,omitempty" json:"gallery,omitempty"`
	Sound    string `yaml:"sound,omitempty" json:"sound,omitempty"`
	Children []Node `yaml:"children,omitempty" json:"children,omitempty"`
}

func (n Node) Kind() string {
	switch {
	case len(n.Children) > 0:
		return KindGroup
	case n.Gallery != "":
		return KindGallery
	case n.Sound != "":
		return KindSound
	default:
		return KindLabel
	}
}

type Topic struct {
	Name      string `yaml:"name" json:"name"`
	Color     string `yaml:"color" json:"color"`
	Subtopics []Node `yaml:"subtopics" json:"subtopics"`
}

type Tree struct {
	Topics []Topic `yaml:"topics" json:"topics"`
}

// Default returns the built-in topic tree.
func Default() *Tree {
	t, err := Parse(defaultTopics)
	if err != nil {
		panic(fmt.Sprintf("topics: embedded default is invalid: %v", err))
	}
	return t
}

func Parse(data []byte) (*Tree, error) {
	var t Tree
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse topics: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

func LoadFile(path string) (*Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read topics: %w", err)
	}
	return Parse(data)
}

// LoadOrDefault loads path, or returns the built-in tree when path is empty.
func LoadOrDefault(path string) (*Tree, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// Validate checks that names are present and that topic names are unique.
func (t *Tree) Validate() error {
	if len(t.Topics) == 0 {
		return errors.New("topics: tree is empty")
	}
	seen := make(map[string]struct{}, len(t.Topics))
	for _, tp := range t.Topics {
		if strings.TrimSpace(tp.Name) == "" {
			return errors.New("topics: topic without name")
		}
		if _, dup := seen[tp.Name]; dup {
			return fmt.Errorf("topics: duplicate topic %q", tp.Name)
		}
		seen[tp.Name] = struct{}{}
		if err := validateNodes(tp.Name, tp.Subtopics); err != nil {
			return err
		}
	}
	return nil
}

func validateNodes(parent string, nodes []Node) error {
	for _, n := range nodes {
		if strings.TrimSpace(n.Name) == "" {
			return fmt.Errorf("topics: unnamed entry under %q", parent)
		}
		if n.Gallery != "" && strings.ContainsAny(n.Gallery, `/\`) {
			return fmt.Errorf("topics: gallery %q under %q must be a plain folder name", n.Gallery, parent)
		}
		if err := validateNodes(n.Name, n.Children); err != nil {
			return err
		}
	}
	return nil
}

// GalleryKeys lists the gallery folders referenced by the tree in
// depth-first order, without duplicates.
func (t *Tree) GalleryKeys() []string {
	var keys []string
	seen := map[string]struct{}{}
	var walk func([]Node)
	walk = func(nodes []Node) {
		for _, n := range nodes {
			if n.Gallery != "" {
				if _, ok := seen[n.Gallery]; !ok {
					seen[n.Gallery] = struct{}{}
					keys = append(keys, n.Gallery)
				}
			}
			walk(n.Children)
		}
	}
	for _, tp := range t.Topics {
		walk(tp.Subtopics)
	}
	return keys
}
