package words

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCatalog = `
fruit:
  - apple
  - { word: banana, emoji: "🍌" }
  - Apple
  - "  "
  - cherry
single:
  - lonely
`

func TestParseCatalog(t *testing.T) {
	c, err := ParseCatalog([]byte(testCatalog))
	require.NoError(t, err)

	assert.Equal(t, []string{"fruit", "single"}, c.Names())
	assert.Equal(t, []Word{
		{Text: "apple"},
		{Text: "banana", Emoji: "🍌"},
		{Text: "cherry"},
	}, c.Words("fruit"), "blank and repeated words are dropped")

	cats, err := c.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Category{{Name: "fruit", Count: 3}, {Name: "single", Count: 1}}, cats)
}

func TestCatalogDrawDistinct(t *testing.T) {
	c, err := ParseCatalog([]byte(testCatalog))
	require.NoError(t, err)
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		got, err := c.Draw(ctx, "fruit", 3)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.ElementsMatch(t, c.Words("fruit"), got)
	}
}

func TestCatalogDrawShortPool(t *testing.T) {
	c, err := ParseCatalog([]byte(testCatalog))
	require.NoError(t, err)
	ctx := context.Background()

	got, err := c.Draw(ctx, "single", 2)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = c.Draw(ctx, "missing", 2)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestNewCatalogOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.yaml")
	require.NoError(t, os.WriteFile(path, []byte("animals:\n  - axolotl\n  - quokka\n"), 0o644))

	c, err := NewCatalog(path)
	require.NoError(t, err)

	assert.Equal(t, []Word{{Text: "axolotl"}, {Text: "quokka"}}, c.Words("animals"))
	assert.NotEmpty(t, c.Words("food"), "defaults outside the override are kept")
}

func TestNewCatalogMissingOverride(t *testing.T) {
	_, err := NewCatalog(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestWordDisplay(t *testing.T) {
	assert.Equal(t, "cat", Word{Text: "cat"}.Display())
	assert.Equal(t, "🐱 cat", Word{Text: "cat", Emoji: "🐱"}.Display())
	assert.Equal(t, []string{"a", "🐶 b"}, Displays([]Word{{Text: "a"}, {Text: "b", Emoji: "🐶"}}))
}
