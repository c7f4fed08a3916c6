package recognize

import "fmt"

// Assemble groups regions into consecutive batches of exactly batchSize,
// resizing any region whose dimensions differ from width x height and
// padding the final batch with zero regions. Output order equals input
// order; padding is discarded later by Unassemble.
func Assemble(regions []Region, batchSize, width, height int) ([][]Region, error) {
	if batchSize < 1 {
		return nil, fmt.Errorf("batch size must be positive, got %d", batchSize)
	}
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("%w: invalid model input %dx%d", ErrShapeMismatch, width, height)
	}

	batches := make([][]Region, 0, (len(regions)+batchSize-1)/batchSize)

	var batch []Region
	for i, region := range regions {
		if !region.valid() {
			return nil, fmt.Errorf("%w: region %d has %d pixel values for %dx%d",
				ErrShapeMismatch, i, len(region.Pix), region.Width, region.Height)
		}
		if batch == nil {
			batch = make([]Region, 0, batchSize)
		}
		batch = append(batch, region.Resize(width, height))
		if len(batch) == batchSize {
			batches = append(batches, batch)
			batch = nil
		}
	}

	if batch != nil {
		for len(batch) < batchSize {
			batch = append(batch, ZeroRegion(width, height))
		}
		batches = append(batches, batch)
	}

	return batches, nil
}

// Unassemble concatenates per-batch results in order and truncates to the
// original input count, dropping results attributable to padding.
func Unassemble[T any](batches [][]T, n int) []T {
	out := make([]T, 0, n)
	for _, batch := range batches {
		out = append(out, batch...)
	}
	if len(out) > n {
		out = out[:n]
	}
	return out
}
