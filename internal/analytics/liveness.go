package analytics

import (
	"time"

	"github.com/sensorpipe/sensorpipe/pkg/types"
)

// AddDeviceStatus sets seconds_since_last and offline on every row.
//
// seconds_since_last is the gap between the newest reading overall and the
// newest reading of the row's device, so it is the same for every row of a
// device. A device is offline when that gap exceeds offlineAfter.
func AddDeviceStatus(rows []types.EnrichedReading, offlineAfter time.Duration) {
	newest, ok := latest(rows)
	if !ok {
		return
	}

	lastSeen := make(map[string]time.Time)
	for _, r := range rows {
		if ts, seen := lastSeen[r.DeviceID]; !seen || r.Timestamp.After(ts) {
			lastSeen[r.DeviceID] = r.Timestamp
		}
	}

	limit := offlineAfter.Seconds()
	for i := range rows {
		since := newest.Sub(lastSeen[rows[i].DeviceID]).Seconds()
		rows[i].SecondsSinceLast = since
		rows[i].Offline = since > limit
	}
}
