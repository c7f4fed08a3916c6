package recognize

import "errors"

var (
	// ErrShapeMismatch means a region's dimensions cannot be reconciled
	// with the model's expected input tensor shape.
	ErrShapeMismatch = errors.New("region shape does not match model input")

	// ErrInference means the underlying forward pass failed. Never retried.
	ErrInference = errors.New("model inference failed")
)

// Model is the opaque embedding model consumed by the pipeline. Infer must
// be called with exactly the model's batch size worth of regions, already
// resized to its input shape; the assembler guarantees both. Implementations
// return one probability vector and one embedding per region, in input
// order. A Model is not assumed safe for concurrent calls; the Recognizer
// serializes access.
type Model interface {
	Infer(batch []Region) (probs [][]float32, features [][]float32, err error)
}
