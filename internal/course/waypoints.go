package course

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// LoadWaypoints reads waypoints from a CSV file. The first row is assumed to
// be a header and is skipped; every following row must carry x in the first
// column and y in the second. Extra columns are ignored.
func LoadWaypoints(path string) ([]Waypoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open waypoints file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read waypoints file: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("waypoints file has no data rows (header plus %d rows)", len(rows))
	}

	waypoints := make([]Waypoint, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) < 2 {
			return nil, fmt.Errorf("row %d: expected at least 2 columns, got %d", i+2, len(row))
		}
		x, err := strconv.ParseFloat(row[0], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: failed to parse x: %w", i+2, err)
		}
		y, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: failed to parse y: %w", i+2, err)
		}
		waypoints = append(waypoints, Waypoint{X: x, Y: y})
	}
	return waypoints, nil
}
