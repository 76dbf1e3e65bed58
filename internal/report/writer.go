package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/haskel/runeconomy/internal/analysis"
)

// WriteJSON writes the report as indented JSON.
func WriteJSON(w io.Writer, rep *analysis.Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(rep)
}

// Encode renders the report in one format. CSV and Parquet carry the
// analyzed table only.
func Encode(rep *analysis.Report, format Format) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case FormatJSON:
		if err := WriteJSON(&buf, rep); err != nil {
			return nil, err
		}
	case FormatCSV:
		if err := WriteCSV(&buf, rep.Analyzed()); err != nil {
			return nil, err
		}
	case FormatParquet:
		return MarshalParquet(rep.Analyzed())
	default:
		return nil, fmt.Errorf("unknown output format: %s", format)
	}
	return buf.Bytes(), nil
}

// Writer saves reports into a directory.
type Writer struct {
	dir     string
	formats []Format
	logger  *slog.Logger
}

// NewWriter creates a writer for the given directory and formats.
func NewWriter(dir string, formats []Format, logger *slog.Logger) *Writer {
	return &Writer{dir: dir, formats: formats, logger: logger}
}

// Write encodes rep in every configured format and returns the written paths.
// Each file is replaced atomically.
func (w *Writer) Write(rep *analysis.Report) ([]string, error) {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(w.formats))
	for _, f := range w.formats {
		data, err := Encode(rep, f)
		if err != nil {
			return paths, fmt.Errorf("encode %s: %w", f, err)
		}

		path := filepath.Join(w.dir, f.FileName())
		if err := writeAtomic(path, data); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}

		w.logger.Debug("wrote report file", "run_id", rep.ID, "format", f, "path", path, "bytes", len(data))
		paths = append(paths, path)
	}
	return paths, nil
}

func writeAtomic(path string, data []byte) error {
	tempPath := path + ".tmp"

	file, err := os.Create(tempPath)
	if err != nil {
		return err
	}

	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(tempPath)
		return err
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return err
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return err
	}
	return nil
}
