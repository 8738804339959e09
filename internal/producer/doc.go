// Package producer simulates a sensor fleet by appending synthetic readings
// to the store on a fixed interval.
//
// Producer owns a single background loop. Start and Stop are idempotent;
// Status reports whether the loop is alive, how many readings it appended,
// its run id and the last error. An append failure is recorded and the loop
// continues. A panic in the generator is recorded and ends the loop.
//
// The producer only writes to the store and never runs the pipeline.
package producer
