package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/skedplan/intake/internal/config"
	"github.com/skedplan/intake/internal/entity"
)

// Reader turns uploaded CSV bytes into raw rows for the validation engine.
// It is deliberately thin: all interpretation of values happens downstream,
// a read failure here is the one unrecoverable error class and callers
// convert it into a single synthetic file-level validation error.
type Reader struct {
	maxRows int
	logger  *zap.Logger
}

// NewReader creates a new upload reader
func NewReader(cfg config.IntakeConfig, logger *zap.Logger) *Reader {
	return &Reader{
		maxRows: cfg.MaxRows,
		logger:  logger,
	}
}

// ReadCSV parses CSV content into header-keyed raw rows. The first record is
// the header row; ragged records are tolerated, short records leave trailing
// columns unset.
func (r *Reader) ReadCSV(src io.Reader) ([]entity.RawRow, error) {
	cr := csv.NewReader(src)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	headers, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}

	var rows []entity.RawRow
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", len(rows)+1, err)
		}

		if r.maxRows > 0 && len(rows) >= r.maxRows {
			return nil, fmt.Errorf("upload exceeds the %d row limit", r.maxRows)
		}

		row := make(entity.RawRow, len(headers))
		for i, header := range headers {
			if header == "" {
				continue
			}
			if i < len(record) {
				row[header] = record[i]
			}
		}
		rows = append(rows, row)
	}

	r.logger.Debug("CSV parsed", zap.Int("rows", len(rows)), zap.Int("columns", len(headers)))
	return rows, nil
}

// ReadFile reads an upload from disk, dispatching on extension. Anything but
// CSV is unsupported and short-circuits the pipeline.
func (r *Reader) ReadFile(path string) ([]entity.RawRow, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()
		return r.ReadCSV(f)
	default:
		return nil, fmt.Errorf("unsupported file extension %q", ext)
	}
}
