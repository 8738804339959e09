// Package analytics derives operational intelligence from an ordered stream
// of sensor readings.
//
// Pipeline.Run applies the stages below, each a plain function over the row
// slice owned by that call:
//
//	Order               stable timestamp sort, forward/back fill per column
//	AddRollingFeatures  trailing 5-row means per signal (null until full)
//	AddAlerts           overheat, high_vibration, low_battery, battery_drop
//	AddHealth           100 - 30/20/20/10 penalties, not clamped
//	AddRecency          rows within 5m of the newest reading
//	AddAnomalyScores    rolling z-score (window 20, min 5), mean |z|, flag
//	AddDeviceStatus     per-device staleness against 5s x 3
//
// Windows run over the global order and are not grouped by device.
// The package performs no I/O and keeps no state between runs.
package analytics
