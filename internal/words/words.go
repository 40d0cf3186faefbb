// Package words provides the dictionaries secret words are drawn from.
package words

import (
	"context"
	"strings"
)

// Word is a dictionary entry with an optional emoji decoration.
type Word struct {
	Text  string `json:"word" yaml:"word"`
	Emoji string `json:"emoji,omitempty" yaml:"emoji,omitempty"`
}

// Display returns the word as shown to players.
func (w Word) Display() string {
	if w.Emoji == "" {
		return w.Text
	}
	return w.Emoji + " " + w.Text
}

// Category describes a named word pool.
type Category struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Source is a read-only dictionary.
//
// Draw returns up to n distinct words from category in random order; fewer
// than n (possibly none) are returned when the pool is smaller or the
// category does not exist.
type Source interface {
	Categories(ctx context.Context) ([]Category, error)
	Draw(ctx context.Context, category string, n int) ([]Word, error)
}

// Displays converts words to their display form.
func Displays(ws []Word) []string {
	out := make([]string, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.Display())
	}
	return out
}

func cleanCategory(name string) string {
	return strings.TrimSpace(name)
}
