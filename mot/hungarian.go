package mot

import (
	"github.com/arthurkushman/go-hungarian"
)

// HungarianMatcher finds assignment with the minimum total distance among pairs
// closer than the threshold. It is globally optimal but ignores the order of detections.
type HungarianMatcher struct{}

// Match implements Matcher
func (HungarianMatcher) Match(detections []Detection, candidates []*TrackedObject, maxDistance float64) []int {
	assignment := newAssignment(len(detections))
	numDetections := len(detections)
	numCandidates := len(candidates)
	if numDetections == 0 || numCandidates == 0 {
		return assignment
	}

	// Rows are detections, columns are candidates. Pairs out of the gate get zero score,
	// the rest get (maxDistance - distance) so maximizing total score minimizes total distance.
	paddedSize := maxInt(numDetections, numCandidates)
	scoreMatrix := make([][]float64, paddedSize)
	distances := make([][]float64, numDetections)
	for i := 0; i < paddedSize; i++ {
		scoreMatrix[i] = make([]float64, paddedSize)
	}
	gated := false
	for i := 0; i < numDetections; i++ {
		distances[i] = make([]float64, numCandidates)
		for j := 0; j < numCandidates; j++ {
			dist := euclideanDistance(detections[i].Center, candidates[j].Center)
			distances[i][j] = dist
			if dist < maxDistance {
				scoreMatrix[i][j] = maxDistance - dist
				gated = true
			}
		}
	}
	if !gated {
		return assignment
	}

	assignmentsMap := hungarian.SolveMax(scoreMatrix)
	for detectionIdx, rowMap := range assignmentsMap {
		for candidateIdx := range rowMap {
			// Skip padding and dummy zero-score pairs
			if detectionIdx >= numDetections || candidateIdx >= numCandidates {
				continue
			}
			if distances[detectionIdx][candidateIdx] < maxDistance {
				assignment[detectionIdx] = candidateIdx
			}
		}
	}
	return assignment
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
