// Package postprocess - provides Non-Maximum Suppression for detection results.
package postprocess

import (
	"sync"

	"github.com/nvr-ai/go-yolo/images"
)

// NMSConfig defines parameters for Non-Maximum Suppression.
type NMSConfig struct {
	IoUThreshold  float32 // Overlap above which the lower-confidence box is suppressed.
	ClassAgnostic bool    // If true, boxes of different classes suppress each other too.
	NumWorkers    int     // Number of goroutines suppressing class buckets in parallel.
}

// ApplyNMS filters overlapping candidates using greedy Non-Maximum Suppression.
//
// Candidates are bucketed by class and each bucket is suppressed on its own, so
// boxes of different classes never suppress one another unless ClassAgnostic
// is set. With NumWorkers > 1 the buckets are processed concurrently; the
// output is the same either way.
//
// Arguments:
//   - candidates: Candidates in any order. Not modified.
//   - config: NMS configuration.
//
// Returns:
//   - The accepted candidates by descending confidence, ties by scan order. If
//     no candidates are provided, returns nil.
func ApplyNMS(candidates []Candidate, config *NMSConfig) []Candidate {
	if len(candidates) == 0 {
		return nil
	}

	buckets := bucketByClass(candidates, config.ClassAgnostic)
	kept := make([][]Candidate, len(buckets))

	if config.NumWorkers <= 1 || len(buckets) == 1 {
		for i, bucket := range buckets {
			kept[i] = ApplyGreedyNMS(bucket, config.IoUThreshold)
		}
	} else {
		var wg sync.WaitGroup
		sem := make(chan struct{}, config.NumWorkers)
		for i, bucket := range buckets {
			wg.Add(1)
			sem <- struct{}{}
			go func(i int, bucket []Candidate) {
				defer wg.Done()
				defer func() { <-sem }()
				kept[i] = ApplyGreedyNMS(bucket, config.IoUThreshold)
			}(i, bucket)
		}
		wg.Wait()
	}

	filtered := make([]Candidate, 0, len(candidates))
	for _, k := range kept {
		filtered = append(filtered, k...)
	}
	sortByConfidence(filtered)

	return filtered
}

// bucketByClass groups candidates by class id, in first-seen class order.
func bucketByClass(candidates []Candidate, agnostic bool) [][]Candidate {
	if agnostic {
		return [][]Candidate{append([]Candidate(nil), candidates...)}
	}

	index := make(map[int]int)
	var buckets [][]Candidate
	for _, c := range candidates {
		i, ok := index[c.ClassID]
		if !ok {
			i = len(buckets)
			index[c.ClassID] = i
			buckets = append(buckets, nil)
		}
		buckets[i] = append(buckets[i], c)
	}

	return buckets
}

// ApplyGreedyNMS performs standard greedy Non-Maximum Suppression on a single
// bucket, ignoring class ids.
//
// Arguments:
//   - candidates: The bucket. It is sorted in place by descending confidence.
//   - iouThreshold: IoU threshold above which overlapping boxes are suppressed.
//
// Returns:
//   - Filtered slice of candidates.
func ApplyGreedyNMS(candidates []Candidate, iouThreshold float32) []Candidate {
	n := len(candidates)
	if n == 0 {
		return nil
	}

	sortByConfidence(candidates)

	rects := make([]images.Rect, n)
	for i, c := range candidates {
		rects[i] = c.Rect()
	}

	filtered := make([]Candidate, 0, n)
	used := make([]bool, n)

	for i := 0; i < n; i++ {
		if used[i] {
			continue
		}

		anchor := rects[i]
		filtered = append(filtered, candidates[i])
		used[i] = true

		for j := i + 1; j < n; j++ {
			if used[j] {
				continue
			}

			// Suppress if IoU exceeds threshold
			if images.CalculateIoU(anchor, rects[j]) > iouThreshold {
				used[j] = true
			}
		}
	}

	return filtered
}
