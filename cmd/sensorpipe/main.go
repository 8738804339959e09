package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/sensorpipe/sensorpipe/internal/analytics"
	"github.com/sensorpipe/sensorpipe/internal/config"
	"github.com/sensorpipe/sensorpipe/internal/ingest"
	"github.com/sensorpipe/sensorpipe/internal/producer"
	"github.com/sensorpipe/sensorpipe/internal/store"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	inputPath := flag.String("input", "", "JSON file of readings: process once, print the result and exit")
	format := flag.String("format", "", "output format override: json | prometheus")
	flag.Parse()

	level := new(slog.LevelVar)
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	level.Set(cfg.Log.SlogLevel())
	if *format != "" {
		if *format != "json" && *format != "prometheus" {
			slog.Error("unknown -format", "format", *format)
			os.Exit(2)
		}
		cfg.Export.Format = *format
	}

	pipe, err := analytics.New(cfg.Pipeline.Analytics())
	if err != nil {
		slog.Error("invalid pipeline config", "err", err)
		os.Exit(1)
	}

	if *inputPath != "" {
		if err := processFile(pipe, *inputPath, cfg.Export.Format, os.Stdout); err != nil {
			slog.Error("batch run failed", "input", *inputPath, "err", err)
			os.Exit(1)
		}
		return
	}

	slog.Info("sensorpipe starting",
		"config", *configPath,
		"export_format", cfg.Export.Format,
		"export_interval", cfg.Export.Interval,
		"mqtt", cfg.MQTT.Enabled,
		"producer", cfg.Producer.Enabled,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	st := store.New(cfg.Store.Retention, cfg.Store.MaxReadings)
	go st.Run(ctx)

	if cfg.MQTT.Enabled {
		sub := ingest.NewSubscriber(cfg.MQTT, ingest.NewReceiver(st))
		go func() {
			if err := sub.Run(ctx); err != nil {
				slog.Error("mqtt ingestion stopped", "err", err)
			}
		}()
	}

	var prod *producer.Producer
	if cfg.Producer.Enabled {
		prod = producer.New(st, producer.NewRandomGenerator(cfg.Producer.Devices, nil), cfg.Producer.Interval)
		prod.Start()
		defer prod.Stop()
	}

	var current atomic.Pointer[analytics.Pipeline]
	current.Store(pipe)

	// Hot reload swaps the pipeline and log level. Store, ingestion and
	// export settings take effect on restart.
	if _, err := os.Stat(*configPath); err == nil {
		go func() {
			if err := config.Watch(ctx, *configPath, func(updated *config.Config) {
				next, err := analytics.New(updated.Pipeline.Analytics())
				if err != nil {
					slog.Error("config reload rejected", "err", err)
					return
				}
				current.Store(next)
				level.Set(updated.Log.SlogLevel())
				slog.Info("pipeline config reloaded",
					"overheat_temp", updated.Pipeline.Thresholds.OverheatTemp,
					"anomaly_threshold", updated.Pipeline.AnomalyThreshold,
				)
			}); err != nil {
				slog.Error("config watcher stopped", "err", err)
			}
		}()
	}

	exp := newExporter(cfg.Export)
	ticker := time.NewTicker(cfg.Export.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if prod != nil {
				logProducerStatus(slog.Default(), slog.LevelInfo, prod.Status())
			}
			slog.Info("sensorpipe shutting down", "readings", st.Count())
			return
		case <-ticker.C:
			if prod != nil {
				logProducerStatus(slog.Default(), slog.LevelDebug, prod.Status())
			}
			if err := exp.export(current.Load(), st.Snapshot()); err != nil {
				slog.Error("export failed", "err", err)
			}
		}
	}
}

// loadConfig reads path. A missing file yields the defaults so the binary
// runs without any configuration.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Warn("config file not found, using defaults", "path", path)
		return config.Defaults(), nil
	}
	return cfg, err
}
