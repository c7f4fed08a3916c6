package recognize

// Tag annotates faces in place with the matcher's output and returns the
// same slice. Every face gets its embedding attached; name and score are
// set only when the top candidate clears scoreThreshold. Faces below the
// threshold keep their fields untouched, so an empty Name means
// "unidentified" rather than an error. Re-running with the same inputs
// yields the same state.
func Tag(faces []Face, candidates [][]Candidate, features [][]float32, scoreThreshold float64) []Face {
	for i := range faces {
		if i < len(features) {
			faces[i].Feature = features[i]
		}
		if i >= len(candidates) || len(candidates[i]) == 0 {
			continue
		}

		top := candidates[i][0]
		if top.Score < scoreThreshold {
			continue
		}
		faces[i].Name = top.Name
		faces[i].Score = top.Score
	}
	return faces
}
