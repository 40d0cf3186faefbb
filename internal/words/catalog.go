package words

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"math/rand/v2"
	"os"
	"sort"
	"strings"

	yaml "gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultFiles embed.FS

// Catalog is an in-memory Source loaded from YAML. The file maps category
// names to lists of words; each word is either a plain string or a
// {word, emoji} mapping. A Catalog is immutable once loaded.
type Catalog struct {
	categories map[string][]Word
}

// NewCatalog loads the embedded default catalog and then applies the override
// file at path, if any. Categories in the override replace defaults of the
// same name.
func NewCatalog(path string) (*Catalog, error) {
	c := &Catalog{categories: make(map[string][]Word)}

	raw, err := fs.ReadFile(defaultFiles, "catalog.yaml")
	if err != nil {
		return nil, fmt.Errorf("read embedded catalog: %w", err)
	}
	if err := c.apply(raw); err != nil {
		return nil, fmt.Errorf("parse embedded catalog: %w", err)
	}

	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", path, err)
		}
		if err := c.apply(b); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", path, err)
		}
	}

	return c, nil
}

// ParseCatalog builds a Catalog from YAML alone, without the defaults.
func ParseCatalog(b []byte) (*Catalog, error) {
	c := &Catalog{categories: make(map[string][]Word)}
	if err := c.apply(b); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) apply(b []byte) error {
	var m map[string][]Word
	if err := yaml.Unmarshal(b, &m); err != nil {
		return err
	}
	for name, list := range m {
		name = cleanCategory(name)
		if name == "" {
			return fmt.Errorf("empty category name")
		}
		c.categories[name] = dedupe(list)
	}
	return nil
}

// UnmarshalYAML accepts both `- cat` and `- {word: cat, emoji: 🐱}`.
func (w *Word) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		w.Text = strings.TrimSpace(node.Value)
		return nil
	}

	type plain Word
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*w = Word(p)
	w.Text = strings.TrimSpace(w.Text)
	w.Emoji = strings.TrimSpace(w.Emoji)
	return nil
}

// dedupe drops blank entries and repeated words (ignoring case)
func dedupe(list []Word) []Word {
	seen := make(map[string]bool, len(list))
	out := make([]Word, 0, len(list))
	for _, w := range list {
		key := strings.ToLower(w.Text)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, w)
	}
	return out
}

// Categories lists categories sorted by name.
func (c *Catalog) Categories(_ context.Context) ([]Category, error) {
	out := make([]Category, 0, len(c.categories))
	for name, list := range c.categories {
		out = append(out, Category{Name: name, Count: len(list)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Draw picks up to n distinct words from category.
func (c *Catalog) Draw(_ context.Context, category string, n int) ([]Word, error) {
	list := c.categories[cleanCategory(category)]
	if n <= 0 || len(list) == 0 {
		return []Word{}, nil
	}
	if n > len(list) {
		n = len(list)
	}

	out := make([]Word, 0, n)
	for _, i := range rand.Perm(len(list))[:n] {
		out = append(out, list[i])
	}
	return out, nil
}

// Words returns a copy of the words in category, in file order.
func (c *Catalog) Words(category string) []Word {
	list := c.categories[cleanCategory(category)]
	out := make([]Word, len(list))
	copy(out, list)
	return out
}

// Names returns the category names sorted.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.categories))
	for name := range c.categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
