package writer

import (
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/tradeterm-lab/tradeterm/internal/types"
	"github.com/tradeterm-lab/tradeterm/pkg/errors"
)

var csvHeader = []string{"time", "open", "high", "low", "close", "vol"}

// CSVWriter writes bars as the comma-delimited cache file format the chart
// application loads: a header row followed by six integer columns.
type CSVWriter struct {
	outputPath string
	file       *os.File
	w          *csv.Writer
}

// NewCSVWriter creates a CSV writer targeting outputPath.
func NewCSVWriter(outputPath string) SeriesWriter {
	return &CSVWriter{
		outputPath: outputPath,
	}
}

// Initialize creates the output file (and its directory) and writes the
// header row.
func (c *CSVWriter) Initialize() error {
	if err := os.MkdirAll(filepath.Dir(c.outputPath), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, "create output directory", err)
	}

	file, err := os.Create(c.outputPath)
	if err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, "create output file", err)
	}

	c.file = file
	c.w = csv.NewWriter(file)

	if err := c.w.Write(csvHeader); err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, "write header", err)
	}

	return nil
}

// Write appends one bar as a row of integer cells.
func (c *CSVWriter) Write(bar types.Ohlcv) error {
	if c.w == nil {
		return errors.New(errors.ErrCodeWriteFailed, "writer not initialized")
	}

	row := []string{
		formatCell(bar.Time),
		formatCell(bar.Open),
		formatCell(bar.High),
		formatCell(bar.Low),
		formatCell(bar.Close),
		formatCell(bar.Vol),
	}

	return c.w.Write(row)
}

// Finalize flushes buffered rows to disk.
func (c *CSVWriter) Finalize() (string, error) {
	if c.w == nil {
		return "", errors.New(errors.ErrCodeWriteFailed, "writer not initialized")
	}

	c.w.Flush()

	if err := c.w.Error(); err != nil {
		return "", errors.Wrap(errors.ErrCodeWriteFailed, "flush rows", err)
	}

	return c.outputPath, nil
}

// Close closes the underlying file.
func (c *CSVWriter) Close() error {
	if c.file == nil {
		return nil
	}

	err := c.file.Close()
	c.file = nil
	c.w = nil

	return err
}

// OutputPath returns the configured output file path.
func (c *CSVWriter) OutputPath() string {
	return c.outputPath
}

// formatCell renders a value as the integer text the cache parser expects.
// NaN becomes an empty cell, which loads back as NaN.
func formatCell(v float64) string {
	if math.IsNaN(v) {
		return ""
	}

	return strconv.FormatInt(int64(math.Round(v)), 10)
}
