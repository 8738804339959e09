package analytics

import (
	"sort"

	"github.com/guregu/null"

	"github.com/sensorpipe/sensorpipe/pkg/types"
)

// Order returns the readings as enriched rows sorted ascending by timestamp.
// Ties keep their original relative order. Index is renumbered from zero.
//
// Each numeric column is then repaired independently: gaps are forward-filled
// from the last known value, and leading gaps are back-filled from the first
// known later value. A column with no known value stays missing.
func Order(readings []types.Reading) []types.EnrichedReading {
	rows := make([]types.EnrichedReading, len(readings))
	for i, r := range readings {
		rows[i] = types.EnrichedReading{Reading: r}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Timestamp.Before(rows[j].Timestamp)
	})
	for i := range rows {
		rows[i].Index = i
	}

	for _, sig := range types.Signals {
		fillColumn(rows, sig)
	}
	return rows
}

// fillColumn forward-fills then back-fills one signal in place.
func fillColumn(rows []types.EnrichedReading, signal string) {
	var last null.Float
	firstKnown := -1
	for i := range rows {
		v := rows[i].Value(signal)
		if v.Valid {
			last = v
			if firstKnown < 0 {
				firstKnown = i
			}
			continue
		}
		if last.Valid {
			rows[i].SetValue(signal, last)
		}
	}

	if firstKnown <= 0 {
		// Either nothing to back-fill or the column is entirely missing.
		return
	}
	first := rows[firstKnown].Value(signal)
	for i := 0; i < firstKnown; i++ {
		rows[i].SetValue(signal, first)
	}
}
