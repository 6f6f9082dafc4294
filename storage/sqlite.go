package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/LdDl/blobtrack/mot"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

const schema = `
	CREATE TABLE IF NOT EXISTS runs (
		run_id            TEXT PRIMARY KEY,
		source            TEXT,
		started_at        TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS track_points (
		run_id            TEXT,
		frame_idx         BIGINT,
		object_id         BIGINT,
		x                 DOUBLE,
		y                 DOUBLE,
		shape             TEXT,
		color             TEXT,
		FOREIGN KEY(run_id) REFERENCES runs(run_id)
	);
	CREATE INDEX IF NOT EXISTS track_points_run_object ON track_points(run_id, object_id, frame_idx);
`

// SQLiteStore records observed positions of tracked objects
type SQLiteStore struct {
	*sql.DB
}

// NewSQLiteStore opens (or creates) database at the given path
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "can't open '%s'", path)
	}
	_, err = db.Exec(schema)
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "can't prepare schema")
	}
	return &SQLiteStore{db}, nil
}

// NewRun registers new tracking run and returns its identifier
func (store *SQLiteStore) NewRun(source string) (uuid.UUID, error) {
	runID := uuid.New()
	_, err := store.Exec(
		`INSERT INTO runs (run_id, source, started_at) VALUES (?, ?, ?)`,
		runID.String(), source, time.Now().UTC(),
	)
	if err != nil {
		return uuid.Nil, errors.Wrap(err, "can't insert run")
	}
	return runID, nil
}

// RecordFrame stores positions of objects which were observed in the frame.
// Objects which were not matched (Age > 0) carry a stale position and are skipped
func (store *SQLiteStore) RecordFrame(runID uuid.UUID, frameIdx int, state mot.State) error {
	tx, err := store.Begin()
	if err != nil {
		return errors.Wrap(err, "can't begin transaction")
	}
	stmt, err := tx.Prepare(`INSERT INTO track_points (run_id, frame_idx, object_id, x, y, shape, color) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return errors.Wrap(err, "can't prepare statement")
	}
	defer stmt.Close()
	for _, object := range state.Sorted() {
		if object.Age != 0 {
			continue
		}
		c := object.LastColor()
		_, err = stmt.Exec(
			runID.String(), frameIdx, object.ID,
			object.Center.X, object.Center.Y,
			object.LastShape().String(),
			colorHex(c.R, c.G, c.B),
		)
		if err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "can't insert object %d", object.ID)
		}
	}
	return errors.Wrap(tx.Commit(), "can't commit frame")
}

// Tracks returns trajectories recorded for the run, ordered by frame
func (store *SQLiteStore) Tracks(runID uuid.UUID) (map[int][]mot.Point, error) {
	rows, err := store.Query(
		`SELECT object_id, x, y FROM track_points WHERE run_id = ? ORDER BY object_id, frame_idx`,
		runID.String(),
	)
	if err != nil {
		return nil, errors.Wrap(err, "can't query tracks")
	}
	defer rows.Close()

	tracks := make(map[int][]mot.Point)
	for rows.Next() {
		var id int
		var pt mot.Point
		if err := rows.Scan(&id, &pt.X, &pt.Y); err != nil {
			return nil, errors.Wrap(err, "can't scan track point")
		}
		tracks[id] = append(tracks[id], pt)
	}
	return tracks, errors.Wrap(rows.Err(), "can't iterate track points")
}

// Runs returns identifiers of all recorded runs, oldest first
func (store *SQLiteStore) Runs() ([]uuid.UUID, error) {
	rows, err := store.Query(`SELECT run_id FROM runs ORDER BY started_at, rowid`)
	if err != nil {
		return nil, errors.Wrap(err, "can't query runs")
	}
	defer rows.Close()

	runs := []uuid.UUID{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, errors.Wrap(err, "can't scan run")
		}
		runID, err := uuid.Parse(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "bad run id '%s'", raw)
		}
		runs = append(runs, runID)
	}
	return runs, errors.Wrap(rows.Err(), "can't iterate runs")
}

func colorHex(r, g, b uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}
