package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/LdDl/blobtrack/mot"
	"github.com/pkg/errors"
)

// WriteCSV dumps trajectories as ';'-separated rows "id;x,y|x,y|..." ordered by identifier
func WriteCSV(w io.Writer, state mot.State) error {
	writer := csv.NewWriter(w)
	writer.Comma = ';'

	err := writer.Write([]string{"id", "track"})
	if err != nil {
		return errors.Wrap(err, "can't write header")
	}
	for _, object := range state.Sorted() {
		data := make([]string, len(object.History))
		for idx, pt := range object.History {
			data[idx] = fmt.Sprintf("%f,%f", pt.X, pt.Y)
		}
		err = writer.Write([]string{strconv.Itoa(object.ID), strings.Join(data, "|")})
		if err != nil {
			return errors.Wrapf(err, "can't write object %d", object.ID)
		}
	}
	writer.Flush()
	return errors.Wrap(writer.Error(), "can't flush csv")
}

// SaveCSV writes trajectories into file
func SaveCSV(path string, state mot.State) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "can't create '%s'", path)
	}
	defer file.Close()
	return WriteCSV(file, state)
}

// ReadCSV parses output of WriteCSV back into identifier -> trajectory
func ReadCSV(r io.Reader) (map[int][]mot.Point, error) {
	reader := csv.NewReader(r)
	reader.Comma = ';'
	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "can't read csv")
	}
	tracks := make(map[int][]mot.Point)
	for i, record := range records {
		if i == 0 {
			continue
		}
		if len(record) != 2 {
			return nil, errors.Errorf("line %d: expected 2 fields, got %d", i+1, len(record))
		}
		id, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, errors.Wrapf(err, "line %d: bad id", i+1)
		}
		if record[1] == "" {
			tracks[id] = []mot.Point{}
			continue
		}
		pairs := strings.Split(record[1], "|")
		track := make([]mot.Point, 0, len(pairs))
		for _, pair := range pairs {
			var pt mot.Point
			if _, err := fmt.Sscanf(pair, "%f,%f", &pt.X, &pt.Y); err != nil {
				return nil, errors.Wrapf(err, "line %d: bad point '%s'", i+1, pair)
			}
			track = append(track, pt)
		}
		tracks[id] = track
	}
	return tracks, nil
}
