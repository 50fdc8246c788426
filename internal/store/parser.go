package store

import (
	"encoding/csv"
	"errors"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/tradeterm-lab/tradeterm/internal/logger"
	"github.com/tradeterm-lab/tradeterm/internal/types"
)

// Cached series files carry exactly these six columns, positionally:
// time, open, high, low, close, vol.
const seriesColumns = 6

// ParseSeries reads comma-delimited OHLCV rows from r and appends them to dst
// in file order. The first row is always treated as a header and dropped,
// regardless of its content. Each remaining cell is coerced to a base-10
// integer value; a cell that does not start with one becomes NaN instead of
// failing its row. A framing error (bad quoting, truncated file) is logged and
// ends the scan: rows parsed before it are kept, nothing is reported upward.
func ParseSeries(r io.Reader, dst *[]types.Ohlcv, log *logger.Logger) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header := true

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return
		}

		if err != nil {
			log.Warn("malformed series data, keeping rows parsed so far", zap.Error(err))

			return
		}

		if header {
			header = false

			continue
		}

		*dst = append(*dst, recordFromRow(row))
	}
}

// ParseSeriesFile opens path and parses it into dst. A missing or unreadable
// file is tolerated the same way a malformed one is: the destination is left
// as-is and the error is returned only for reporting purposes.
func ParseSeriesFile(path string, dst *[]types.Ohlcv, log *logger.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		if log != nil {
			log.Warn("series file unavailable", zap.String("path", path), zap.Error(err))
		}

		return err
	}
	defer f.Close()

	ParseSeries(f, dst, log)

	return nil
}

func recordFromRow(row []string) types.Ohlcv {
	var cells [seriesColumns]float64

	for i := range cells {
		if i < len(row) {
			cells[i] = coerceInt(row[i])
		} else {
			cells[i] = math.NaN()
		}
	}

	return types.Ohlcv{
		Time:  cells[0],
		Open:  cells[1],
		High:  cells[2],
		Low:   cells[3],
		Close: cells[4],
		Vol:   cells[5],
	}
}

// coerceInt parses the longest leading base-10 integer of the cell,
// so "42000.5" coerces to 42000. Cells with no integer prefix become NaN:
// a bad cell poisons one field, never a row.
func coerceInt(cell string) float64 {
	s := strings.TrimSpace(cell)

	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}

	j := i
	for j < len(s) && s[j] >= '0' && s[j] <= '9' {
		j++
	}

	if j == i {
		return math.NaN()
	}

	v, err := strconv.ParseInt(s[:j], 10, 64)
	if err != nil {
		return math.NaN()
	}

	return float64(v)
}
