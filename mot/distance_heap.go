package mot

import "math"

type distancePair struct {
	detectionIdx int
	candidateIdx int
	distance     float64
}

// Copied from container/heap - https://golang.org/pkg/container/heap/
// Why make copy? Just want to avoid type conversion

type distanceHeap []*distancePair

func (h distanceHeap) Len() int { return len(h) }

// Less orders by distance. Equal distances keep detections order
func (h distanceHeap) Less(i, j int) bool {
	if h[i].distance == h[j].distance {
		return h[i].detectionIdx < h[j].detectionIdx
	}
	return h[i].distance < h[j].distance
}
func (h distanceHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

// Push pushes the element x onto the heap.
// The complexity is O(log n) where n = h.Len().
func (h *distanceHeap) Push(x *distancePair) {
	*h = append(*h, x)
	h.up(h.Len() - 1)
}

// Pop removes and returns the minimum element (according to Less) from the heap.
// The complexity is O(log n) where n = h.Len().
func (h *distanceHeap) Pop() *distancePair {
	n := h.Len() - 1
	h.Swap(0, n)
	h.down(0, n)
	heapSize := len(*h)
	lastNode := (*h)[heapSize-1]
	*h = (*h)[0 : heapSize-1]
	return lastNode
}

func (h distanceHeap) up(j int) {
	for {
		i := (j - 1) / 2
		if i == j || !h.Less(j, i) {
			break
		}
		h.Swap(i, j)
		j = i
	}
}

func (h distanceHeap) down(i0, n int) bool {
	i := i0
	for {
		j1 := 2*i + 1
		if j1 >= n || j1 < 0 {
			break
		}
		j := j1
		if j2 := j1 + 1; j2 < n && h.Less(j2, j1) {
			j = j2
		}
		if !h.Less(j, i) {
			break
		}
		h.Swap(i, j)
		i = j
	}
	return i > i0
}

// NearestFirstMatcher finds nearest candidate for every detection and then resolves
// pairs from the smallest distance to the largest. A detection whose nearest candidate
// has already been reserved by a closer detection stays unmatched.
type NearestFirstMatcher struct{}

// Match implements Matcher
func (NearestFirstMatcher) Match(detections []Detection, candidates []*TrackedObject, maxDistance float64) []int {
	assignment := newAssignment(len(detections))
	if len(candidates) == 0 {
		return assignment
	}
	priorityQueue := make(distanceHeap, 0, len(detections))
	for i := range detections {
		minIdx := -1
		minDistance := math.Inf(1)
		for j, candidate := range candidates {
			dist := euclideanDistance(detections[i].Center, candidate.Center)
			if dist < minDistance {
				minDistance = dist
				minIdx = j
			}
		}
		if minIdx < 0 {
			continue
		}
		priorityQueue.Push(&distancePair{
			detectionIdx: i,
			candidateIdx: minIdx,
			distance:     minDistance,
		})
	}

	// We need to prevent double update of objects
	reserved := make([]bool, len(candidates))
	for priorityQueue.Len() > 0 {
		pair := priorityQueue.Pop()
		// Since we are using min-heap we garantee that each candidate is taken by the closest detection only
		if reserved[pair.candidateIdx] {
			continue
		}
		if pair.distance < maxDistance {
			assignment[pair.detectionIdx] = pair.candidateIdx
			reserved[pair.candidateIdx] = true
		}
	}
	return assignment
}
