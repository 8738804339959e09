// Package ingest turns inbound JSON payloads into stored readings.
//
// Decode and DecodeBatch parse the wire format: an object carrying
// device_id, temperature, vibration, speed, battery and an ISO-8601
// timestamp. Every key must be present; numeric values may be null.
// Failures are *analytics.MalformedReadingError values naming the field.
//
// Receiver.Handle decodes a payload and appends it to a Writer (the store).
// Subscriber connects a Receiver to an MQTT topic through paho, renewing
// the subscription on reconnect.
package ingest
