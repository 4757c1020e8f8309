package postprocess

import "github.com/chewxy/math32"

// maxLogit bounds logits before they are exponentiated. sigmoid(±30) is
// already 0 or 1 in float32 and exp(30) keeps box sizes finite after scaling.
const maxLogit = 30

// clampLogit bounds x to [-maxLogit, maxLogit]. NaN maps to 0 and reports false.
func clampLogit(x float32) (float32, bool) {
	if math32.IsNaN(x) {
		return 0, false
	}
	if x > maxLogit {
		return maxLogit, true
	}
	if x < -maxLogit {
		return -maxLogit, true
	}
	return x, true
}

// sigmoid is the logistic function on a clamped logit.
func sigmoid(x float32) (float32, bool) {
	x, ok := clampLogit(x)
	return 1 / (1 + math32.Exp(-x)), ok
}

// expScale is exp on a clamped logit. The result is always positive and finite.
func expScale(x float32) (float32, bool) {
	x, ok := clampLogit(x)
	return math32.Exp(x), ok
}

// softmaxArgmax returns the index and probability of the largest class in a
// softmax over logits. The max logit is subtracted before exponentiating, so
// no term exceeds 1. Ties resolve to the lowest index.
func softmaxArgmax(logits []float32) (int, float32, bool) {
	ok := true
	best := 0
	maxVal := math32.Inf(-1)
	for i, v := range logits {
		if math32.IsNaN(v) {
			ok = false
			continue
		}
		if v > maxVal {
			maxVal = v
			best = i
		}
	}
	if math32.IsInf(maxVal, -1) {
		// Every logit is -Inf or NaN.
		return 0, 0, ok
	}
	if math32.IsInf(maxVal, 1) {
		// +Inf - +Inf is NaN, so split the mass between the +Inf logits.
		var count float32
		for _, v := range logits {
			if math32.IsInf(v, 1) {
				count++
			}
		}
		return best, 1 / count, ok
	}

	var sum float32
	for _, v := range logits {
		if math32.IsNaN(v) {
			continue
		}
		sum += math32.Exp(v - maxVal)
	}

	// The best term is exp(0) = 1.
	return best, 1 / sum, ok
}

// sanitizeConfidence forces NaN to 0 and clamps to [0,1].
func sanitizeConfidence(c float32) float32 {
	if math32.IsNaN(c) || c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
