package provider

import (
	"context"
	"strconv"
	"strings"
	"time"

	binance "github.com/adshao/go-binance/v2"

	"github.com/tradeterm-lab/tradeterm/internal/types"
	"github.com/tradeterm-lab/tradeterm/pkg/errors"
	"github.com/tradeterm-lab/tradeterm/pkg/feed/writer"
)

// binancePageSize is the kline page size the public API serves.
const binancePageSize = 500

type BinanceClient struct {
	client *binance.Client
}

// NewBinanceClient creates a provider over the public Binance REST API.
// No credentials are needed for kline data.
func NewBinanceClient() (Provider, error) {
	return &BinanceClient{
		client: binance.NewClient("", ""),
	}, nil
}

// Fetch returns the latest bars for the asset.
func (c *BinanceClient) Fetch(ctx context.Context, asset string, interval types.Interval) ([]types.Ohlcv, error) {
	klines, err := c.client.NewKlinesService().
		Symbol(binanceSymbol(asset)).
		Interval(binanceInterval(interval)).
		Limit(fetchLimit).
		Do(ctx)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeFetchFailed, err, "fetch %s %s klines from Binance", asset, interval)
	}

	series := make([]types.Ohlcv, 0, len(klines))
	for _, k := range klines {
		series = append(series, ohlcvFromKline(k))
	}

	return series, nil
}

// Download pulls the klines for the whole date range through the writer,
// paging by the API's limit and resuming from the last close time.
func (c *BinanceClient) Download(ctx context.Context, asset string, interval types.Interval, start, end time.Time, w writer.SeriesWriter, onProgress OnDownloadProgress) error {
	startMillis := start.UnixMilli()
	endMillis := end.UnixMilli()
	currentStart := startMillis

	for {
		klines, err := c.client.NewKlinesService().
			Symbol(binanceSymbol(asset)).
			Interval(binanceInterval(interval)).
			StartTime(currentStart).
			EndTime(endMillis).
			Do(ctx)
		if err != nil {
			return errors.Wrapf(errors.ErrCodeFetchFailed, err, "fetch %s klines from Binance", asset)
		}

		if onProgress != nil {
			onProgress(float64(currentStart-startMillis), float64(endMillis-startMillis),
				"Downloading "+asset+" klines from Binance")
		}

		for _, k := range klines {
			if err := w.Write(ohlcvFromKline(k)); err != nil {
				return errors.Wrap(errors.ErrCodeWriteFailed, "write kline", err)
			}
		}

		// Last page: no data or fewer rows than the page size.
		if len(klines) < binancePageSize {
			return nil
		}

		// Resume just after the close of the last bar to avoid duplicates.
		currentStart = klines[len(klines)-1].CloseTime + 1
		if currentStart >= endMillis {
			return nil
		}
	}
}

// binanceSymbol maps a cached asset name to the exchange symbol:
// "btc" and "btc_usdt" both become "BTCUSDT".
func binanceSymbol(asset string) string {
	s := strings.ToUpper(asset)
	if strings.Contains(s, "_") {
		return strings.ReplaceAll(s, "_", "")
	}

	return s + "USDT"
}

// binanceInterval maps a cache interval onto the exchange's interval token.
// The supported four happen to share the same spelling.
func binanceInterval(interval types.Interval) string {
	switch interval {
	case types.IntervalOneHour:
		return "1h"
	case types.IntervalOneDay:
		return "1d"
	case types.IntervalOneWeek:
		return "1w"
	case types.IntervalOneMonth:
		return "1M"
	default:
		return string(interval)
	}
}

// ohlcvFromKline converts a Binance kline to a cache bar. The exchange sends
// prices as strings; unparsable values fall back to zero, and the bar keeps
// the kline's open time in epoch seconds.
func ohlcvFromKline(k *binance.Kline) types.Ohlcv {
	open, _ := strconv.ParseFloat(k.Open, 64)
	high, _ := strconv.ParseFloat(k.High, 64)
	low, _ := strconv.ParseFloat(k.Low, 64)
	closePrice, _ := strconv.ParseFloat(k.Close, 64)
	volume, _ := strconv.ParseFloat(k.Volume, 64)

	return types.Ohlcv{
		Time:  float64(k.OpenTime / 1000),
		Open:  open,
		High:  high,
		Low:   low,
		Close: closePrice,
		Vol:   volume,
	}
}
