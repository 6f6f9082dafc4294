package storage

import (
	"github.com/LdDl/blobtrack/mot"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Recorder binds SQLiteStore to a single run so it could be used as a per-frame sink
type Recorder struct {
	store *SQLiteStore
	runID uuid.UUID
}

// NewRecorder registers new run in the store
func NewRecorder(store *SQLiteStore, source string) (*Recorder, error) {
	runID, err := store.NewRun(source)
	if err != nil {
		return nil, errors.Wrap(err, "can't start run")
	}
	return &Recorder{store: store, runID: runID}, nil
}

// RunID returns identifier of the run
func (recorder *Recorder) RunID() uuid.UUID {
	return recorder.runID
}

// Record stores observed objects of the frame
func (recorder *Recorder) Record(frameIdx int, state mot.State) error {
	return recorder.store.RecordFrame(recorder.runID, frameIdx, state)
}
