package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sensorpipe/sensorpipe/pkg/types"
)

// WriteJSON writes rows as a single JSON array. Undefined numbers render as
// null and every flag is always present. An empty run writes [].
func WriteJSON(w io.Writer, rows []types.EnrichedReading) error {
	if rows == nil {
		rows = []types.EnrichedReading{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("export: encode json: %w", err)
	}
	return nil
}

// WriteFile replaces the file at path with whatever write produces. The new
// content is written to a temporary file in the same directory and renamed
// into place, so readers never see a partial export.
func WriteFile(path string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("export: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("export: close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("export: replace %s: %w", path, err)
	}
	return nil
}
