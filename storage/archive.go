package storage

import (
	"github.com/LdDl/blobtrack/mot"
)

// Archive keeps the latest known version of every object seen during a run,
// including objects which have been evicted from the live state already.
type Archive struct {
	objects  mot.State
	lastSeen map[int]int
	frames   int
}

// NewArchive creates empty archive
func NewArchive() *Archive {
	return &Archive{
		objects:  make(mot.State),
		lastSeen: make(map[int]int),
	}
}

// Record stores objects of the given frame. State is copied
func (archive *Archive) Record(frameIdx int, state mot.State) error {
	for id, object := range state {
		archive.objects[id] = object.Clone()
		archive.lastSeen[id] = frameIdx
	}
	archive.frames++
	return nil
}

// Objects returns copy of every object recorded so far
func (archive *Archive) Objects() mot.State {
	return archive.objects.Clone()
}

// LastSeen returns index of the last frame where object was alive
func (archive *Archive) LastSeen(id int) (int, bool) {
	frameIdx, ok := archive.lastSeen[id]
	return frameIdx, ok
}

// Frames returns number of recorded frames
func (archive *Archive) Frames() int {
	return archive.frames
}
