package provider

import (
	"context"
	"strings"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"

	"github.com/tradeterm-lab/tradeterm/internal/types"
	"github.com/tradeterm-lab/tradeterm/pkg/errors"
	"github.com/tradeterm-lab/tradeterm/pkg/feed/writer"
)

type PolygonClient struct {
	client *polygon.Client
}

// NewPolygonClient creates a provider over the Polygon aggregates API.
func NewPolygonClient(apiKey string) (Provider, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeMissingParameter, "polygon apiKey is required")
	}

	return &PolygonClient{
		client: polygon.New(apiKey),
	}, nil
}

// Fetch returns the most recent bars for the ticker by querying a window wide
// enough to hold fetchLimit bars at the requested interval.
func (c *PolygonClient) Fetch(ctx context.Context, asset string, interval types.Interval) ([]types.Ohlcv, error) {
	end := time.Now()
	start := end.Add(-time.Duration(fetchLimit) * intervalDuration(interval))

	multiplier, timespan := polygonTimespan(interval)

	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     polygonTicker(asset),
		Multiplier: multiplier,
		Timespan:   timespan,
		From:       models.Millis(start),
		To:         models.Millis(end),
	}.WithLimit(50000)

	iter := c.client.ListAggs(ctx, params)

	var series []types.Ohlcv
	for iter.Next() {
		series = append(series, ohlcvFromAgg(iter.Item()))
	}

	if iter.Err() != nil {
		return nil, errors.Wrapf(errors.ErrCodeFetchFailed, iter.Err(), "fetch %s %s aggregates from Polygon", asset, interval)
	}

	return series, nil
}

// Download pulls the aggregates for the whole date range through the writer.
func (c *PolygonClient) Download(ctx context.Context, asset string, interval types.Interval, start, end time.Time, w writer.SeriesWriter, onProgress OnDownloadProgress) error {
	multiplier, timespan := polygonTimespan(interval)

	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     polygonTicker(asset),
		Multiplier: multiplier,
		Timespan:   timespan,
		From:       models.Millis(start),
		To:         models.Millis(end),
	}.WithLimit(50000)

	iter := c.client.ListAggs(ctx, params)

	total := end.Sub(start)
	written := 0

	for iter.Next() {
		bar := ohlcvFromAgg(iter.Item())
		if err := w.Write(bar); err != nil {
			return errors.Wrap(errors.ErrCodeWriteFailed, "write aggregate", err)
		}

		written++

		if onProgress != nil && written%1000 == 0 {
			elapsed := time.Time(iter.Item().Timestamp).Sub(start)
			onProgress(float64(elapsed), float64(total), "Downloading "+asset+" aggregates from Polygon")
		}
	}

	if iter.Err() != nil {
		return errors.Wrapf(errors.ErrCodeFetchFailed, iter.Err(), "iterate %s aggregates", asset)
	}

	return nil
}

func polygonTicker(asset string) string {
	return strings.ToUpper(asset)
}

// polygonTimespan maps a cache interval onto the aggregates API granularity.
func polygonTimespan(interval types.Interval) (int, models.Timespan) {
	switch interval {
	case types.IntervalOneHour:
		return 1, models.Hour
	case types.IntervalOneDay:
		return 1, models.Day
	case types.IntervalOneWeek:
		return 1, models.Week
	case types.IntervalOneMonth:
		return 1, models.Month
	default:
		return 1, models.Day
	}
}

// intervalDuration approximates one bar's wall-clock span, used to size the
// Fetch window. A month counts as 30 days.
func intervalDuration(interval types.Interval) time.Duration {
	switch interval {
	case types.IntervalOneHour:
		return time.Hour
	case types.IntervalOneDay:
		return 24 * time.Hour
	case types.IntervalOneWeek:
		return 7 * 24 * time.Hour
	case types.IntervalOneMonth:
		return 30 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}

func ohlcvFromAgg(agg models.Agg) types.Ohlcv {
	return types.Ohlcv{
		Time:  float64(time.Time(agg.Timestamp).Unix()),
		Open:  agg.Open,
		High:  agg.High,
		Low:   agg.Low,
		Close: agg.Close,
		Vol:   agg.Volume,
	}
}
