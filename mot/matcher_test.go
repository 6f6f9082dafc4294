package mot

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Two tracks and two detections where the greedy order starves the second detection
func starvationSetup() ([]Detection, []*TrackedObject) {
	candidates := []*TrackedObject{
		{ID: 1, Center: NewPoint(0, 0), History: []Point{NewPoint(0, 0)}},
		{ID: 2, Center: NewPoint(30, 0), History: []Point{NewPoint(30, 0)}},
	}
	detections := []Detection{NewDetection(16, 0), NewDetection(45, 0)}
	return detections, candidates
}

func TestGreedyMatcher(t *testing.T) {
	detections, candidates := starvationSetup()
	assignment := GreedyMatcher{}.Match(detections, candidates, 50)
	assert.Equal(t, []int{1, 0}, assignment)

	// Second detection is out of the gate once its nearest free track is far away
	assignment = GreedyMatcher{}.Match(detections, candidates, 40)
	assert.Equal(t, []int{1, -1}, assignment)
}

func TestNearestFirstMatcher(t *testing.T) {
	detections, candidates := starvationSetup()
	// Both detections are nearest to track 2; the closer one (16 -> 14px) wins, the other stays unmatched
	assignment := NearestFirstMatcher{}.Match(detections, candidates, 50)
	assert.Equal(t, []int{1, -1}, assignment)
}

func TestHungarianMatcher(t *testing.T) {
	detections, candidates := starvationSetup()
	// Total distance 16+15 beats greedy's 14+45
	assignment := HungarianMatcher{}.Match(detections, candidates, 50)
	assert.Equal(t, []int{0, 1}, assignment)
}

func TestHungarianMatcherRectangular(t *testing.T) {
	candidates := []*TrackedObject{
		{ID: 1, Center: NewPoint(0, 0)},
		{ID: 2, Center: NewPoint(100, 0)},
		{ID: 3, Center: NewPoint(200, 0)},
	}
	detections := []Detection{NewDetection(198, 0), NewDetection(500, 500)}
	assignment := HungarianMatcher{}.Match(detections, candidates, 20)
	assert.Equal(t, []int{2, -1}, assignment)
}

func TestGreedyMatcherNewTracksJoinPool(t *testing.T) {
	detections := []Detection{NewDetection(0, 0), NewDetection(5, 0), NewDetection(8, 0), NewDetection(300, 0)}
	// d0 creates track 0, d1 claims it, d2 creates track 1 (nothing free nearby), d3 creates track 2
	assert.Equal(t, []int{-1, 0, -1, -1}, GreedyMatcher{}.Match(detections, nil, 80))

	candidates := []*TrackedObject{{ID: 1, Center: NewPoint(0, 0)}}
	detections = []Detection{NewDetection(200, 0), NewDetection(1, 0), NewDetection(205, 0)}
	// Index 1 is past the single candidate: the track created by d0
	assert.Equal(t, []int{-1, 0, 1}, GreedyMatcher{}.Match(detections, candidates, 80))
}

func TestMatchersEmptyInput(t *testing.T) {
	matchers := []Matcher{GreedyMatcher{}, NearestFirstMatcher{}, HungarianMatcher{}}
	for _, matcher := range matchers {
		assert.Empty(t, matcher.Match(nil, nil, 80))
		assert.Equal(t, []int{-1, -1}, matcher.Match([]Detection{NewDetection(0, 0), NewDetection(500, 500)}, nil, 80))
		assert.Empty(t, matcher.Match(nil, []*TrackedObject{{ID: 1}}, 80))
	}
}

func TestMatchersRespectGate(t *testing.T) {
	candidates := []*TrackedObject{{ID: 1, Center: NewPoint(0, 0)}}
	detections := []Detection{NewDetection(30, 40)}
	matchers := []Matcher{GreedyMatcher{}, NearestFirstMatcher{}, HungarianMatcher{}}
	for _, matcher := range matchers {
		assert.Equal(t, []int{-1}, matcher.Match(detections, candidates, 50), "%T", matcher)
		assert.Equal(t, []int{0}, matcher.Match(detections, candidates, 50.01), "%T", matcher)
	}
}

func TestMatcherByName(t *testing.T) {
	cases := map[string]Matcher{
		"greedy":        GreedyMatcher{},
		"nearest-first": NearestFirstMatcher{},
		"hungarian":     HungarianMatcher{},
	}
	for name, expected := range cases {
		matcher, err := MatcherByName(name)
		require.NoError(t, err)
		assert.IsType(t, expected, matcher)
	}

	_, err := MatcherByName("kalman")
	require.Error(t, err)
	assert.Equal(t, ErrUnknownMatcher, errors.Cause(err))
	assert.Contains(t, err.Error(), "kalman")
}

func TestMatchingAlgorithmString(t *testing.T) {
	assert.Equal(t, "greedy", MatchingAlgorithmGreedy.String())
	assert.Equal(t, "nearest-first", MatchingAlgorithmNearestFirst.String())
	assert.Equal(t, "hungarian", MatchingAlgorithmHungarian.String())
	assert.Equal(t, "unknown", MatchingAlgorithm(42).String())
}

func TestDistanceHeapOrder(t *testing.T) {
	h := make(distanceHeap, 0)
	for i, dist := range []float64{5, 1, 3, 1, 4} {
		h.Push(&distancePair{detectionIdx: i, distance: dist})
	}
	popped := make([]int, 0, 5)
	for h.Len() > 0 {
		popped = append(popped, h.Pop().detectionIdx)
	}
	assert.Equal(t, []int{1, 3, 2, 4, 0}, popped)
}

func TestShapeString(t *testing.T) {
	for _, shape := range []Shape{ShapeIrregular, ShapeRectangle, ShapeCircle} {
		parsed, err := ParseShape(shape.String())
		require.NoError(t, err)
		assert.Equal(t, shape, parsed)
	}
	_, err := ParseShape("triangle")
	assert.Error(t, err)
	assert.Equal(t, "Shape(9)", Shape(9).String())
}
