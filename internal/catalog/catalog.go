// Package catalog holds the fixed sample dataset shipped with the binary.
package catalog

import (
	_ "embed"
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/mrlokans/legalshelf/internal/entities"
)

//go:embed sample.yaml
var sampleYAML []byte

type document struct {
	Books []entities.Book `yaml:"books"`
}

// Sample returns a fresh copy of the embedded dataset in id order, with
// defaults applied.
func Sample() ([]entities.Book, error) {
	return decode(sampleYAML)
}

// Load decodes a dataset in the same format as the embedded one.
func Load(r io.Reader) ([]entities.Book, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return decode(data)
}

func decode(data []byte) ([]entities.Book, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	seen := make(map[uint]bool, len(doc.Books))
	for i := range doc.Books {
		b := &doc.Books[i]
		if b.ID == 0 {
			return nil, fmt.Errorf("catalog entry %d (%q) has no id", i, b.Title)
		}
		if seen[b.ID] {
			return nil, fmt.Errorf("duplicate catalog id %d", b.ID)
		}
		seen[b.ID] = true
		b.ApplyDefaults()
	}

	sort.SliceStable(doc.Books, func(i, j int) bool {
		return doc.Books[i].ID < doc.Books[j].ID
	})
	return doc.Books, nil
}
