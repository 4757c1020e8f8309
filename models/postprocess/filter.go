package postprocess

import "sort"

// FilterCandidates drops candidates below threshold and keeps at most
// maxBoxes of the rest, highest confidence first.
//
// Arguments:
//   - candidates: The decoded candidates. Not modified.
//   - threshold: Candidates with confidence strictly below it are dropped.
//   - maxBoxes: The cap on the result length. Non-positive keeps nothing.
//
// Returns:
//   - The surviving candidates ordered by descending confidence, ties by scan
//     order. An empty slice means nothing was detected.
func FilterCandidates(candidates []Candidate, threshold float32, maxBoxes int) []Candidate {
	kept := make([]Candidate, 0, min(len(candidates), max(maxBoxes, 0)))
	if maxBoxes <= 0 {
		return kept
	}

	for _, c := range candidates {
		if c.Confidence >= threshold {
			kept = append(kept, c)
		}
	}

	sortByConfidence(kept)

	if len(kept) > maxBoxes {
		kept = kept[:maxBoxes]
	}

	return kept
}

// sortByConfidence orders candidates by descending confidence, then scan order.
func sortByConfidence(candidates []Candidate) {
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Confidence != candidates[j].Confidence {
			return candidates[i].Confidence > candidates[j].Confidence
		}
		return candidates[i].Order < candidates[j].Order
	})
}
