// Package config loads and watches the sensorpipe configuration file.
//
// Top-level types:
//   - Config{Log, Pipeline, Store, Producer, MQTT, Export} parsed from YAML
//   - PipelineConfig: window sizes, anomaly threshold, liveness interval and
//     grace factor, alert thresholds; Analytics() converts it for the pipeline
//   - StoreConfig: retention and max_readings for the in-memory log
//   - ProducerConfig: simulated feed switch, interval and device ids
//   - MQTTConfig: broker subscription; Password() resolves from the environment
//   - ExportConfig: interval, output target (stdout or file) and format
//
// Load(path) reads the file, applies defaults, then validates. Defaults()
// is usable on its own when no file is present.
//
// Watch(ctx, path, onChange) uses fsnotify on the file's directory to detect
// writes and rename-over saves, and calls onChange with the newly parsed
// Config. Invalid reloads are logged and dropped.
package config
