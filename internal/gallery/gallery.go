// Package gallery holds the reference database of known identities: an
// ordered mapping from identity name to one reference embedding. A gallery
// is loaded once and read-only afterwards, so it is safe for concurrent
// reads without locking.
package gallery

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode"

	log "github.com/sirupsen/logrus"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// ErrNotFound means the gallery file is missing at the given path.
	ErrNotFound = errors.New("gallery file not found")

	// ErrMalformed means the gallery file could not be parsed or failed
	// validation. Loading fails fast rather than skipping bad entries.
	ErrMalformed = errors.New("malformed gallery file")
)

// Entry is one known identity with its reference embedding.
type Entry struct {
	Name      string    `json:"name"`
	Embedding []float32 `json:"embedding"`
}

// Gallery keeps entries in insertion order so that similarity ties resolve
// deterministically, plus a normalized-name index for lookups.
type Gallery struct {
	entries []Entry
	byName  map[string]int
}

// New returns an empty gallery.
func New() *Gallery {
	return &Gallery{byName: make(map[string]int)}
}

// Load reads a gallery from a JSON file: an array of {name, embedding}
// objects. The array form preserves entry order across save/load cycles.
// All embeddings must be non-empty and share one dimension.
func Load(path string) (*Gallery, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read gallery %s: %w", path, err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}

	g := New()
	dim := 0
	for i, entry := range entries {
		if entry.Name == "" {
			return nil, fmt.Errorf("%w: entry %d has no name", ErrMalformed, i)
		}
		if len(entry.Embedding) == 0 {
			return nil, fmt.Errorf("%w: entry %q has an empty embedding", ErrMalformed, entry.Name)
		}
		if dim == 0 {
			dim = len(entry.Embedding)
		} else if len(entry.Embedding) != dim {
			return nil, fmt.Errorf("%w: entry %q has dimension %d, expected %d",
				ErrMalformed, entry.Name, len(entry.Embedding), dim)
		}
		g.Add(entry.Name, entry.Embedding)
	}

	log.Debugf("loaded gallery %s: %d identities, dimension %d", path, g.Len(), dim)
	return g, nil
}

// Save writes the gallery as a JSON array, preserving entry order.
func (g *Gallery) Save(path string) error {
	data, err := json.MarshalIndent(g.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode gallery: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write gallery %s: %w", path, err)
	}
	return nil
}

// Add inserts or replaces the entry for name. Replacement keeps the
// original position so existing rankings stay stable.
func (g *Gallery) Add(name string, embedding []float32) {
	key := NormalizeName(name)
	if i, ok := g.byName[key]; ok {
		g.entries[i] = Entry{Name: name, Embedding: embedding}
		return
	}
	g.byName[key] = len(g.entries)
	g.entries = append(g.entries, Entry{Name: name, Embedding: embedding})
}

// Entries returns all entries in insertion order. Callers must not mutate
// the returned slice.
func (g *Gallery) Entries() []Entry {
	return g.entries
}

// Len returns the number of identities.
func (g *Gallery) Len() int {
	return len(g.entries)
}

// Find looks up an identity's embedding, ignoring case and diacritics.
func (g *Gallery) Find(name string) ([]float32, bool) {
	i, ok := g.byName[NormalizeName(name)]
	if !ok {
		return nil, false
	}
	return g.entries[i].Embedding, true
}

// NormalizeName normalizes an identity name for comparison: diacritics
// removed, lowercase, dashes treated as spaces (e.g. "Jiří" -> "jiri").
func NormalizeName(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	name, _, _ = transform.String(t, name)
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, "-", " ")
	return strings.TrimSpace(name)
}
