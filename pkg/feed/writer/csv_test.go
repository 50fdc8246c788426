package writer

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradeterm-lab/tradeterm/internal/logger"
	"github.com/tradeterm-lab/tradeterm/internal/store"
	"github.com/tradeterm-lab/tradeterm/internal/types"
)

func TestCSVWriterRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Binance", "btc_usdt-1hour.csv")

	w := NewCSVWriter(path)
	require.NoError(t, w.Initialize())

	bars := []types.Ohlcv{
		{Time: 1700000000, Open: 42000, High: 43000, Low: 41000, Close: 42500, Vol: 1200},
		{Time: 1700003600, Open: 42500, High: 42900, Low: 42100, Close: 42700, Vol: 900},
	}
	for _, bar := range bars {
		require.NoError(t, w.Write(bar))
	}

	out, err := w.Finalize()
	require.NoError(t, err)
	assert.Equal(t, path, out)
	require.NoError(t, w.Close())

	// The produced file loads back through the cache parser unchanged.
	var loaded []types.Ohlcv
	require.NoError(t, store.ParseSeriesFile(path, &loaded, logger.NewNopLogger()))
	assert.Equal(t, bars, loaded)
}

func TestCSVWriterHeaderRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	w := NewCSVWriter(path)
	require.NoError(t, w.Initialize())
	_, err := w.Finalize()
	require.NoError(t, err)
	require.NoError(t, w.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 1)
	assert.Equal(t, "time,open,high,low,close,vol", lines[0])
}

func TestCSVWriterFractionalValuesRounded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	w := NewCSVWriter(path)
	require.NoError(t, w.Initialize())
	require.NoError(t, w.Write(types.Ohlcv{Time: 1700000000, Open: 42000.6, High: 43000.4, Low: 41000, Close: 42500, Vol: 1200.5}))
	_, err := w.Finalize()
	require.NoError(t, err)
	require.NoError(t, w.Close())

	var loaded []types.Ohlcv
	require.NoError(t, store.ParseSeriesFile(path, &loaded, logger.NewNopLogger()))
	require.Len(t, loaded, 1)
	assert.Equal(t, 42001.0, loaded[0].Open)
	assert.Equal(t, 43000.0, loaded[0].High)
}

func TestCSVWriterNaNBecomesEmptyCell(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	w := NewCSVWriter(path)
	require.NoError(t, w.Initialize())
	require.NoError(t, w.Write(types.Ohlcv{Time: 1700000000, Open: math.NaN(), High: 1, Low: 1, Close: 1, Vol: 1}))
	_, err := w.Finalize()
	require.NoError(t, err)
	require.NoError(t, w.Close())

	var loaded []types.Ohlcv
	require.NoError(t, store.ParseSeriesFile(path, &loaded, logger.NewNopLogger()))
	require.Len(t, loaded, 1)
	assert.True(t, math.IsNaN(loaded[0].Open))
	assert.Equal(t, 1.0, loaded[0].High)
}

func TestCSVWriterWriteBeforeInitialize(t *testing.T) {
	w := NewCSVWriter(filepath.Join(t.TempDir(), "out.csv"))
	assert.Error(t, w.Write(types.Ohlcv{}))
}
