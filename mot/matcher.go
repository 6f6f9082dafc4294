package mot

import (
	"math"

	"github.com/pkg/errors"
)

// MatchingAlgorithm is for algorithm type for matching detections to tracks
type MatchingAlgorithm uint16

const (
	// MatchingAlgorithmGreedy matches detections in input order, each one to its nearest free track
	MatchingAlgorithmGreedy MatchingAlgorithm = iota
	// MatchingAlgorithmNearestFirst processes detection-track pairs from the smallest distance to the largest
	MatchingAlgorithmNearestFirst
	// MatchingAlgorithmHungarian uses the Hungarian algorithm (Kuhn-Munkres) for optimal assignment
	MatchingAlgorithmHungarian
)

var algorithmNames = map[MatchingAlgorithm]string{
	MatchingAlgorithmGreedy:       "greedy",
	MatchingAlgorithmNearestFirst: "nearest-first",
	MatchingAlgorithmHungarian:    "hungarian",
}

func (algorithm MatchingAlgorithm) String() string {
	if name, ok := algorithmNames[algorithm]; ok {
		return name
	}
	return "unknown"
}

// ErrUnknownMatcher is returned for unsupported matching algorithm names
var ErrUnknownMatcher = errors.New("unknown matching algorithm")

// Matcher assigns detections to candidate tracks.
//
// Match returns slice of the same length as detections: i-th element is index of the track
// matched to i-th detection or -1 when detection has no match and starts a new track.
// Indices below len(candidates) refer to candidates, which are given in ascending order of
// identifiers. Index len(candidates)+k refers to the k-th track created earlier in the same
// frame, so matchers which interleave matching and creation may return it; batch matchers
// never do. Only pairs with distance strictly less than maxDistance may be matched and
// every track may be used at most once.
type Matcher interface {
	Match(detections []Detection, candidates []*TrackedObject, maxDistance float64) []int
}

// NewMatcher creates matcher for given algorithm
func NewMatcher(algorithm MatchingAlgorithm) Matcher {
	switch algorithm {
	case MatchingAlgorithmNearestFirst:
		return NearestFirstMatcher{}
	case MatchingAlgorithmHungarian:
		return HungarianMatcher{}
	default:
		return GreedyMatcher{}
	}
}

// MatcherByName creates matcher from its configuration name: "greedy", "nearest-first" or "hungarian"
func MatcherByName(name string) (Matcher, error) {
	for algorithm, algorithmName := range algorithmNames {
		if algorithmName == name {
			return NewMatcher(algorithm), nil
		}
	}
	return nil, errors.Wrapf(ErrUnknownMatcher, "'%s'", name)
}

// GreedyMatcher is nearest-neighbour matching in the order of detections.
// The first detection gets the first choice of its nearest track; a later detection
// may be starved of its nearest track when it has been claimed already.
// Unmatched detection starts a new track which joins the pool right away, so a later
// detection of the same frame may still match it.
// Ties are broken in favour of the track encountered first.
type GreedyMatcher struct{}

// Match implements Matcher
func (GreedyMatcher) Match(detections []Detection, candidates []*TrackedObject, maxDistance float64) []int {
	assignment := newAssignment(len(detections))
	pool := make([]Point, len(candidates), len(candidates)+len(detections))
	for j, candidate := range candidates {
		pool[j] = candidate.Center
	}
	claimed := make([]bool, len(candidates), len(candidates)+len(detections))
	for i := range detections {
		minIdx := -1
		minDistance := math.Inf(1)
		for j, center := range pool {
			if claimed[j] {
				continue
			}
			dist := euclideanDistance(detections[i].Center, center)
			if dist < minDistance {
				minDistance = dist
				minIdx = j
			}
		}
		if minIdx >= 0 && minDistance < maxDistance {
			assignment[i] = minIdx
			claimed[minIdx] = true
			continue
		}
		// New track, not claimed yet
		pool = append(pool, detections[i].Center)
		claimed = append(claimed, false)
	}
	return assignment
}

func newAssignment(n int) []int {
	assignment := make([]int, n)
	for i := range assignment {
		assignment[i] = -1
	}
	return assignment
}
