package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/legalshelf/internal/entities"
)

func TestSample(t *testing.T) {
	books, err := Sample()
	require.NoError(t, err)
	require.NotEmpty(t, books)

	for i, b := range books {
		assert.NotEmpty(t, b.Title)
		assert.NotEmpty(t, b.Area)
		assert.NotEmpty(t, b.Image, "image defaults to the placeholder")
		if i > 0 {
			assert.Less(t, books[i-1].ID, b.ID)
		}
	}

	again, err := Sample()
	require.NoError(t, err)
	again[0].Title = "changed"
	assert.NotEqual(t, "changed", books[0].Title, "each call returns a fresh copy")
}

func TestLoad(t *testing.T) {
	t.Run("applies defaults and sorts by id", func(t *testing.T) {
		books, err := Load(strings.NewReader(`
books:
  - id: 3
    area: Penal
    title: Terceiro
    progress: 250
  - id: 1
    area: Civil
    title: Primeiro
    image: https://example.org/capa.jpg
`))
		require.NoError(t, err)
		require.Len(t, books, 2)

		assert.Equal(t, uint(1), books[0].ID)
		assert.Equal(t, "https://example.org/capa.jpg", books[0].Image)
		assert.Equal(t, "", books[0].About)

		assert.Equal(t, uint(3), books[1].ID)
		assert.Equal(t, entities.PlaceholderCover, books[1].Image)
		assert.Equal(t, 100, books[1].Progress)
	})

	t.Run("rejects missing ids", func(t *testing.T) {
		_, err := Load(strings.NewReader("books:\n  - title: Sem id\n"))
		assert.Error(t, err)
	})

	t.Run("rejects duplicate ids", func(t *testing.T) {
		_, err := Load(strings.NewReader("books:\n  - id: 1\n    title: A\n  - id: 1\n    title: B\n"))
		assert.Error(t, err)
	})

	t.Run("rejects malformed yaml", func(t *testing.T) {
		_, err := Load(strings.NewReader("books: [unterminated"))
		assert.Error(t, err)
	})
}
