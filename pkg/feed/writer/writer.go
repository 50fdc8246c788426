package writer

import (
	"github.com/tradeterm-lab/tradeterm/internal/types"
)

// SeriesWriter defines the interface for writing downloaded OHLCV bars to a
// destination.
type SeriesWriter interface {
	// Initialize sets up the writer, potentially creating tables or files.
	Initialize() error
	// Write persists a single bar.
	Write(bar types.Ohlcv) error
	// Finalize completes the writing process (e.g., commits transactions, exports files).
	Finalize() (outputPath string, err error)
	// Close releases any resources held by the writer.
	Close() error
	// OutputPath returns the configured output file path.
	OutputPath() string
}
