// Package types defines the reading types shared by ingestion, the analytics
// pipeline and the exporters. Numeric sensor values use null.Float so a
// missing value is an explicit absence rather than a NaN sentinel.
package types
