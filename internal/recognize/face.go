// Package recognize implements the face identification pipeline: detected
// face regions are normalized, batched through an embedding model, matched
// against a gallery of known identities by cosine similarity, and tagged
// with the best candidate when it clears the score threshold.
package recognize

// Face is the output of an external face detector, annotated in place by
// the tagger. BBox is [x1, y1, x2, y2] in pixel coordinates.
type Face struct {
	BBox      []float64   `json:"bbox"`
	Landmarks [][]float64 `json:"landmarks,omitempty"`
	DetScore  float64     `json:"det_score,omitempty"`

	// Set by the pipeline. An empty Name means the face stayed unidentified.
	Feature []float32 `json:"feature,omitempty"`
	Name    string    `json:"name,omitempty"`
	Score   float64   `json:"score,omitempty"`
}

// Candidate is one (identity, score) pair from the matcher.
type Candidate struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// Result holds three parallel sequences aligned by face index.
type Result struct {
	Probabilities [][]float32   `json:"probabilities"`
	Features      [][]float32   `json:"features"`
	Candidates    [][]Candidate `json:"candidates"`
}
