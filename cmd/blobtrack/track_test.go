package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/LdDl/blobtrack/mot"
	"github.com/LdDl/blobtrack/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func recordRun(t *testing.T, dbPath string, frames [][]mot.Detection) string {
	t.Helper()
	store, err := storage.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer store.Close()
	recorder, err := storage.NewRecorder(store, "test")
	require.NoError(t, err)

	tracker := mot.NewTrackerDefault()
	for frameIdx, detections := range frames {
		tracker.MatchObjects(detections)
		require.NoError(t, recorder.Record(frameIdx, tracker.Objects))
	}
	return recorder.RunID().String()
}

func TestExportLatestRun(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "tracks.db")
	recordRun(t, dbPath, [][]mot.Detection{{mot.NewDetection(1, 1)}})
	recordRun(t, dbPath, [][]mot.Detection{
		{mot.NewDetection(100, 100)},
		{mot.NewDetection(104, 103)},
	})

	csvPath := filepath.Join(dir, "tracks.csv")
	require.NoError(t, export(dbPath, "", csvPath, zap.NewNop().Sugar()))

	file, err := os.Open(csvPath)
	require.NoError(t, err)
	defer file.Close()
	tracks, err := storage.ReadCSV(file)
	require.NoError(t, err)
	assert.Equal(t, map[int][]mot.Point{1: {{X: 100, Y: 100}, {X: 104, Y: 103}}}, tracks)
}

func TestExportByRunID(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "tracks.db")
	first := recordRun(t, dbPath, [][]mot.Detection{{mot.NewDetection(1, 1), mot.NewDetection(300, 300)}})
	recordRun(t, dbPath, [][]mot.Detection{{mot.NewDetection(5, 5)}})

	csvPath := filepath.Join(dir, "first.csv")
	require.NoError(t, export(dbPath, first, csvPath, zap.NewNop().Sugar()))

	file, err := os.Open(csvPath)
	require.NoError(t, err)
	defer file.Close()
	tracks, err := storage.ReadCSV(file)
	require.NoError(t, err)
	assert.Len(t, tracks, 2)
}

func TestExportErrors(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "empty.db")
	logger := zap.NewNop().Sugar()

	assert.Error(t, export(dbPath, "", filepath.Join(dir, "out.csv"), logger))
	assert.Error(t, export(dbPath, "not-a-uuid", filepath.Join(dir, "out.csv"), logger))
}
