package postprocess

import (
	"math/rand"
	"testing"

	"github.com/nvr-ai/go-yolo/images"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyNMS_SuppressesSameClassOverlap(t *testing.T) {
	// Same center; b is 0.2x0.18 inside a's 0.2x0.2, so IoU = 0.036 / 0.04 = 0.9.
	a := Candidate{X: 0.5, Y: 0.5, W: 0.2, H: 0.2, ClassID: 3, Confidence: 0.9, Order: 0}
	b := Candidate{X: 0.5, Y: 0.5, W: 0.2, H: 0.18, ClassID: 3, Confidence: 0.8, Order: 1}
	require.InDelta(t, 0.9, images.CalculateIoU(a.Rect(), b.Rect()), 1e-4)

	kept := ApplyNMS([]Candidate{b, a}, &NMSConfig{IoUThreshold: 0.45})
	require.Len(t, kept, 1)
	assert.Equal(t, a, kept[0])
}

func TestApplyNMS_ClassIsolation(t *testing.T) {
	a := Candidate{X: 0.5, Y: 0.5, W: 0.2, H: 0.2, ClassID: 1, Confidence: 0.9, Order: 0}
	b := Candidate{X: 0.5, Y: 0.5, W: 0.2, H: 0.2, ClassID: 2, Confidence: 0.8, Order: 1}

	kept := ApplyNMS([]Candidate{a, b}, &NMSConfig{IoUThreshold: 0.45})
	assert.Equal(t, []Candidate{a, b}, kept)

	agnostic := ApplyNMS([]Candidate{a, b}, &NMSConfig{IoUThreshold: 0.45, ClassAgnostic: true})
	assert.Equal(t, []Candidate{a}, agnostic)
}

func TestApplyNMS_ThresholdIsExclusive(t *testing.T) {
	// Side-by-side halves of a 0.4 wide box overlap 1/3: IoU = 0.02 / 0.06.
	a := Candidate{X: 0.4, Y: 0.5, W: 0.2, H: 0.2, Confidence: 0.9, Order: 0}
	b := Candidate{X: 0.5, Y: 0.5, W: 0.2, H: 0.2, Confidence: 0.8, Order: 1}
	iou := images.CalculateIoU(a.Rect(), b.Rect())

	assert.Len(t, ApplyNMS([]Candidate{a, b}, &NMSConfig{IoUThreshold: iou}), 2)
	assert.Len(t, ApplyNMS([]Candidate{a, b}, &NMSConfig{IoUThreshold: iou - 0.01}), 1)
}

func TestApplyNMS_Chain(t *testing.T) {
	// a suppresses b; c only overlaps b, so it survives.
	a := Candidate{X: 0.30, Y: 0.5, W: 0.2, H: 0.2, Confidence: 0.9, Order: 0}
	b := Candidate{X: 0.35, Y: 0.5, W: 0.2, H: 0.2, Confidence: 0.8, Order: 1}
	c := Candidate{X: 0.48, Y: 0.5, W: 0.2, H: 0.2, Confidence: 0.7, Order: 2}

	kept := ApplyNMS([]Candidate{c, b, a}, &NMSConfig{IoUThreshold: 0.45})
	assert.Equal(t, []Candidate{a, c}, kept)
}

func TestApplyNMS_Empty(t *testing.T) {
	assert.Nil(t, ApplyNMS(nil, &NMSConfig{IoUThreshold: 0.45}))
	assert.Nil(t, ApplyGreedyNMS(nil, 0.45))
}

func randomCandidates(rng *rand.Rand, n, classes int) []Candidate {
	out := make([]Candidate, n)
	for i := range out {
		out[i] = Candidate{
			X:          rng.Float32(),
			Y:          rng.Float32(),
			W:          0.05 + rng.Float32()*0.3,
			H:          0.05 + rng.Float32()*0.3,
			ClassID:    rng.Intn(classes),
			Confidence: float32(rng.Intn(20)) / 20,
			Order:      i,
		}
	}
	return out
}

func TestApplyNMS_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for round := 0; round < 20; round++ {
		candidates := randomCandidates(rng, 200, 4)
		config := &NMSConfig{IoUThreshold: 0.3}

		kept := ApplyNMS(candidates, config)
		require.NotEmpty(t, kept)

		for i := 1; i < len(kept); i++ {
			prev, cur := kept[i-1], kept[i]
			ordered := prev.Confidence > cur.Confidence ||
				(prev.Confidence == cur.Confidence && prev.Order < cur.Order)
			assert.True(t, ordered, "output must be ordered by confidence, then scan order")
		}

		for i := range kept {
			for j := i + 1; j < len(kept); j++ {
				if kept[i].ClassID != kept[j].ClassID {
					continue
				}
				assert.LessOrEqual(t, images.CalculateIoU(kept[i].Rect(), kept[j].Rect()), config.IoUThreshold)
			}
		}

		parallel := ApplyNMS(candidates, &NMSConfig{IoUThreshold: 0.3, NumWorkers: 3})
		assert.Equal(t, kept, parallel, "parallel suppression must match the sequential result")
	}
}

func BenchmarkApplyNMS(b *testing.B) {
	candidates := randomCandidates(rand.New(rand.NewSource(1)), 845, 20)
	config := &NMSConfig{IoUThreshold: 0.45}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = ApplyNMS(candidates, config)
	}
}
