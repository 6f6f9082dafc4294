package api

import (
	"sync"
	"time"

	"github.com/LdDl/blobtrack/mot"
)

// Snapshot is an immutable view of tracking state after some frame
type Snapshot struct {
	Frame     int
	NextID    int
	Objects   mot.State
	UpdatedAt time.Time
}

// StateHub holds the latest published snapshot. Publisher is the frame loop, readers are HTTP handlers
type StateHub struct {
	sync.RWMutex
	snapshot Snapshot
}

// NewStateHub creates hub with empty state
func NewStateHub() *StateHub {
	return &StateHub{
		snapshot: Snapshot{
			NextID:  mot.DefaultNextObjectID,
			Objects: make(mot.State),
		},
	}
}

// Publish stores copy of the state
func (hub *StateHub) Publish(frameIdx int, nextID int, state mot.State) {
	snapshot := Snapshot{
		Frame:     frameIdx,
		NextID:    nextID,
		Objects:   state.Clone(),
		UpdatedAt: time.Now().UTC(),
	}
	hub.Lock()
	hub.snapshot = snapshot
	hub.Unlock()
}

// Get returns the latest snapshot. Callers must not modify returned objects
func (hub *StateHub) Get() Snapshot {
	hub.RLock()
	defer hub.RUnlock()
	return hub.snapshot
}
