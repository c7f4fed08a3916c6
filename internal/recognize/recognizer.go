package recognize

import (
	"fmt"
	"image"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/kozaktomas/face-tagger/internal/gallery"
)

// Options configures the pipeline. All knobs are explicit parameters; there
// is no global configuration lookup.
type Options struct {
	BatchSize      int     // regions per model invocation
	InputWidth     int     // model input width in pixels
	InputHeight    int     // model input height in pixels
	ScoreThreshold float64 // minimum top-candidate score to tag a face
	TopK           int     // class candidates on the no-gallery path
}

func (o *Options) setDefaults() {
	if o.BatchSize == 0 {
		o.BatchSize = 4
	}
	if o.InputWidth == 0 {
		o.InputWidth = 224
	}
	if o.InputHeight == 0 {
		o.InputHeight = 224
	}
	if o.TopK == 0 {
		o.TopK = 5
	}
}

// Recognizer runs the identification pipeline against one embedding model.
// The gallery is read-only after construction; the model is treated as an
// exclusively owned resource and calls to it are serialized.
type Recognizer struct {
	model   Model
	gallery *gallery.Gallery
	classes []string
	opts    Options

	mu sync.Mutex // serializes Infer; the model is not proven concurrency-safe
}

// New creates a Recognizer. A nil gallery switches Match to the
// class-probability fallback path.
func New(model Model, g *gallery.Gallery, classNames []string, opts Options) *Recognizer {
	opts.setDefaults()
	return &Recognizer{
		model:   model,
		gallery: g,
		classes: classNames,
		opts:    opts,
	}
}

// Options returns the effective options after defaulting.
func (r *Recognizer) Options() Options {
	return r.opts
}

// ExtractFeatures runs regions through the model and returns per-region
// class probabilities and embeddings in input order. Regions are resized
// and batched first; results for padding are dropped. A failure in any
// batch fails the whole request, there is no partial success.
func (r *Recognizer) ExtractFeatures(regions []Region) (probs, features [][]float32, err error) {
	batches, err := Assemble(regions, r.opts.BatchSize, r.opts.InputWidth, r.opts.InputHeight)
	if err != nil {
		return nil, nil, err
	}
	log.Debugf("assembled %d regions into %d batches of %d", len(regions), len(batches), r.opts.BatchSize)

	batchProbs := make([][][]float32, 0, len(batches))
	batchFeats := make([][][]float32, 0, len(batches))
	for i, batch := range batches {
		r.mu.Lock()
		p, f, err := r.model.Infer(batch)
		r.mu.Unlock()
		if err != nil {
			return nil, nil, fmt.Errorf("batch %d/%d: %w", i+1, len(batches), err)
		}
		if len(p) != len(batch) || len(f) != len(batch) {
			return nil, nil, fmt.Errorf("%w: batch %d returned %d probabilities and %d features for %d regions",
				ErrInference, i+1, len(p), len(f), len(batch))
		}
		batchProbs = append(batchProbs, p)
		batchFeats = append(batchFeats, f)
	}

	return Unassemble(batchProbs, len(regions)), Unassemble(batchFeats, len(regions)), nil
}

// DetectRegions identifies precomputed face regions.
func (r *Recognizer) DetectRegions(regions []Region) (*Result, error) {
	if len(regions) == 0 {
		return &Result{}, nil
	}

	probs, features, err := r.ExtractFeatures(regions)
	if err != nil {
		return nil, err
	}

	candidates, err := Match(features, probs, r.gallery, r.classes, r.opts.TopK)
	if err != nil {
		return nil, err
	}

	return &Result{
		Probabilities: probs,
		Features:      features,
		Candidates:    candidates,
	}, nil
}

// Detect derives one region per face from img and identifies them.
func (r *Recognizer) Detect(img image.Image, faces []Face) (*Result, error) {
	regions := make([]Region, len(faces))
	for i, face := range faces {
		regions[i] = RegionFromFace(img, face, r.opts.InputWidth, r.opts.InputHeight)
	}
	return r.DetectRegions(regions)
}

// TagFaces applies the configured score threshold to a detection result,
// mutating and returning the same faces.
func (r *Recognizer) TagFaces(faces []Face, result *Result) []Face {
	return Tag(faces, result.Candidates, result.Features, r.opts.ScoreThreshold)
}
