package mot

import "sort"

// State is the tracking state keyed by object identifier
type State map[int]*TrackedObject

// IDs returns identifiers in ascending order, i.e. in order of creation
func (state State) IDs() []int {
	ids := make([]int, 0, len(state))
	for id := range state {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Sorted returns objects in ascending order of identifiers
func (state State) Sorted() []*TrackedObject {
	objects := make([]*TrackedObject, 0, len(state))
	for _, id := range state.IDs() {
		objects = append(objects, state[id])
	}
	return objects
}

// Clone returns deep copy of the state
func (state State) Clone() State {
	cp := make(State, len(state))
	for id, object := range state {
		cp[id] = object.Clone()
	}
	return cp
}
