// Package store is the in-memory reading log shared by every ingestion path.
//
// Store.Append is the single write operation: the MQTT receiver and the
// background producer both call it, and it rejects readings without a device
// id. Store.Snapshot hands the analytics pipeline a consistent copy of the
// whole log in append order, so a pipeline run never observes a concurrent
// write.
//
// Retention is based on when a reading was appended, not on its own
// timestamp. Evict(now) drops expired readings and enforces the max_readings
// cap; Run(ctx) calls it periodically.
package store
