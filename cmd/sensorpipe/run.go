package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/sensorpipe/sensorpipe/internal/analytics"
	"github.com/sensorpipe/sensorpipe/internal/config"
	"github.com/sensorpipe/sensorpipe/internal/export"
	"github.com/sensorpipe/sensorpipe/internal/ingest"
	"github.com/sensorpipe/sensorpipe/internal/producer"
	"github.com/sensorpipe/sensorpipe/pkg/types"
)

// processFile runs the pipeline once over a JSON array of readings and
// writes the result to out.
func processFile(p *analytics.Pipeline, path, format string, out io.Writer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	readings, err := ingest.DecodeBatch(data)
	if err != nil {
		return err
	}

	start := time.Now()
	rows, err := p.Run(readings)
	if err != nil {
		return err
	}
	return render(out, format, rows, time.Since(start), export.NewCollector())
}

// render writes rows in the chosen format. The collector is only used for
// the prometheus format.
func render(w io.Writer, format string, rows []types.EnrichedReading, took time.Duration, c *export.Collector) error {
	switch format {
	case "json":
		return export.WriteJSON(w, rows)
	case "prometheus":
		c.Observe(rows, took)
		return c.WriteText(w)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

// exporter runs the pipeline over a store snapshot and writes one export.
type exporter struct {
	cfg       config.ExportConfig
	collector *export.Collector
	stdout    io.Writer
}

func newExporter(cfg config.ExportConfig) *exporter {
	return &exporter{cfg: cfg, collector: export.NewCollector(), stdout: os.Stdout}
}

func (e *exporter) export(p *analytics.Pipeline, readings []types.Reading) error {
	start := time.Now()
	rows, err := p.Run(readings)
	if err != nil {
		return err
	}
	took := time.Since(start)

	write := func(w io.Writer) error { return render(w, e.cfg.Format, rows, took, e.collector) }
	if e.cfg.Output == config.DefaultExportOutput {
		err = write(e.stdout)
	} else {
		err = export.WriteFile(e.cfg.Output, write)
	}
	if err != nil {
		return err
	}

	slog.Debug("export written",
		"rows", len(rows),
		"devices", len(export.Summarize(rows)),
		"took", took,
		"output", e.cfg.Output,
	)
	return nil
}

// logProducerStatus reports the simulated feed at level. A recorded error is
// always logged as a warning.
func logProducerStatus(logger *slog.Logger, level slog.Level, s producer.Status) {
	attrs := []any{"running", s.Running, "run_id", s.RunID, "produced", s.Produced}
	if s.Error != "" {
		level = slog.LevelWarn
		attrs = append(attrs, "err", s.Error)
	}
	logger.Log(context.Background(), level, "producer status", attrs...)
}
