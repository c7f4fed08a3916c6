package recognize

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/kozaktomas/face-tagger/internal/gallery"
)

// ErrDegenerateEmbedding means a zero-norm vector made cosine similarity
// undefined. Surfaced instead of silently producing NaN scores.
var ErrDegenerateEmbedding = errors.New("zero-norm embedding")

// CosineSimilarity computes the cosine similarity between two embedding
// vectors. Returns a value in [-1, 1], clamped against floating point
// drift. A zero-norm input is an error, not a score.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) || len(a) == 0 {
		return 0, fmt.Errorf("embedding dimensions differ: %d vs %d", len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0, ErrDegenerateEmbedding
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if sim > 1 {
		sim = 1
	}
	if sim < -1 {
		sim = -1
	}
	return sim, nil
}

// Match resolves each query embedding to a ranked candidate list.
//
// With a non-empty gallery, every query is scored against every gallery
// entry by cosine similarity and the full ranking is returned; topK is
// deliberately not applied on this path so downstream consumers see the
// complete ordering. Without a gallery, class probabilities are ranked
// instead and only the top K classes are returned.
//
// Ties keep gallery iteration order. Inputs are never mutated.
func Match(features, probs [][]float32, g *gallery.Gallery, classNames []string, topK int) ([][]Candidate, error) {
	if g == nil || g.Len() == 0 {
		out := make([][]Candidate, len(probs))
		for i, p := range probs {
			out[i] = topClasses(p, classNames, topK)
		}
		return out, nil
	}

	entries := g.Entries()
	out := make([][]Candidate, len(features))
	for i, feature := range features {
		candidates := make([]Candidate, 0, len(entries))
		for _, entry := range entries {
			sim, err := CosineSimilarity(feature, entry.Embedding)
			if err != nil {
				return nil, fmt.Errorf("query %d against %q: %w", i, entry.Name, err)
			}
			candidates = append(candidates, Candidate{Name: entry.Name, Score: sim})
		}
		sort.SliceStable(candidates, func(a, b int) bool {
			return candidates[a].Score > candidates[b].Score
		})
		out[i] = candidates
	}
	return out, nil
}

// topClasses ranks one probability vector and keeps the top K classes.
// K larger than the class count returns all classes.
func topClasses(probs []float32, classNames []string, topK int) []Candidate {
	candidates := make([]Candidate, len(probs))
	for i, p := range probs {
		name := fmt.Sprintf("class_%d", i)
		if i < len(classNames) {
			name = classNames[i]
		}
		candidates[i] = Candidate{Name: name, Score: float64(p)}
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].Score > candidates[b].Score
	})

	if topK > 0 && topK < len(candidates) {
		candidates = candidates[:topK]
	}
	return candidates
}
