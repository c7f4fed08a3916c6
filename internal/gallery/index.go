package gallery

import (
	"errors"
	"fmt"

	"github.com/coder/hnsw"
)

// hnswMaxNeighbors is the M parameter of the HNSW graph.
const hnswMaxNeighbors = 16

// Neighbor is one approximate nearest-neighbor hit.
type Neighbor struct {
	Name       string
	Similarity float64
}

// Index is an HNSW graph over a gallery for approximate nearest-neighbor
// lookups on large galleries. It is a convenience for downstream consumers;
// the exhaustive matcher does not use it. Built once from a read-only
// gallery, an Index is safe for concurrent searches.
type Index struct {
	graph *hnsw.Graph[int]
	names []string
}

// NewIndex builds an index over all gallery entries using cosine distance.
func NewIndex(g *Gallery) (*Index, error) {
	if g == nil || g.Len() == 0 {
		return nil, errors.New("cannot index an empty gallery")
	}

	graph := hnsw.NewGraph[int]()
	graph.M = hnswMaxNeighbors
	graph.Ml = 1.0 / float64(hnswMaxNeighbors)
	graph.Distance = hnsw.CosineDistance

	names := make([]string, g.Len())
	for i, entry := range g.Entries() {
		graph.Add(hnsw.MakeNode(i, entry.Embedding))
		names[i] = entry.Name
	}

	return &Index{graph: graph, names: names}, nil
}

// Nearest returns up to k identities closest to the query embedding,
// ordered by descending cosine similarity.
func (ix *Index) Nearest(query []float32, k int) ([]Neighbor, error) {
	if k < 1 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}

	nodes := ix.graph.Search(query, k)
	neighbors := make([]Neighbor, len(nodes))
	for i, node := range nodes {
		neighbors[i] = Neighbor{
			Name:       ix.names[node.Key],
			Similarity: 1 - float64(hnsw.CosineDistance(query, node.Value)),
		}
	}
	return neighbors, nil
}
