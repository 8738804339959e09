package analytics

import (
	"time"

	"github.com/sensorpipe/sensorpipe/pkg/types"
)

// latest returns the maximum timestamp across rows and false when rows is empty.
func latest(rows []types.EnrichedReading) (time.Time, bool) {
	if len(rows) == 0 {
		return time.Time{}, false
	}
	newest := rows[0].Timestamp
	for _, r := range rows[1:] {
		if r.Timestamp.After(newest) {
			newest = r.Timestamp
		}
	}
	return newest, true
}

// AddRecency flags rows whose timestamp is within window of the newest
// reading, and whether such a row carries any alert.
func AddRecency(rows []types.EnrichedReading, window time.Duration) {
	newest, ok := latest(rows)
	if !ok {
		return
	}
	cutoff := newest.Add(-window)
	for i := range rows {
		rows[i].Recent = !rows[i].Timestamp.Before(cutoff)
		rows[i].RecentAlert = rows[i].Recent && rows[i].HasAlert()
	}
}
