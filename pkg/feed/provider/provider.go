package provider

import (
	"context"
	"time"

	"github.com/tradeterm-lab/tradeterm/internal/types"
	"github.com/tradeterm-lab/tradeterm/pkg/errors"
	"github.com/tradeterm-lab/tradeterm/pkg/feed/writer"
)

// ProviderType defines the type of live market data provider.
type ProviderType string

const (
	ProviderBinance ProviderType = "binance"
	ProviderPolygon ProviderType = "polygon"
)

// fetchLimit is how many of the most recent bars a Fetch returns.
const fetchLimit = 500

type OnDownloadProgress = func(current float64, total float64, message string)

// Provider is a direct-exchange market data source.
type Provider interface {
	// Fetch returns the most recent bars for the asset at the given interval.
	Fetch(ctx context.Context, asset string, interval types.Interval) ([]types.Ohlcv, error)
	// Download pulls the full date range through the given writer.
	// The context can be used to cancel the download operation.
	Download(ctx context.Context, asset string, interval types.Interval, start, end time.Time, w writer.SeriesWriter, onProgress OnDownloadProgress) error
}

// NewProvider creates a market data provider based on the provider type.
func NewProvider(providerType ProviderType, config any) (Provider, error) {
	switch providerType {
	case ProviderBinance:
		return NewBinanceClient()
	case ProviderPolygon:
		apiKey, ok := config.(string)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidProvider, "polygon provider requires API key string config")
		}

		return NewPolygonClient(apiKey)
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported market data provider: %s", providerType)
	}
}

// Fetcher is the narrow fetch-only surface consumed by the state store.
type Fetcher interface {
	GetOhlcv(ctx context.Context, asset string, interval types.Interval) ([]types.Ohlcv, error)
}

type providerFetcher struct {
	p Provider
}

func (f providerFetcher) GetOhlcv(ctx context.Context, asset string, interval types.Interval) ([]types.Ohlcv, error) {
	return f.p.Fetch(ctx, asset, interval)
}

// AsFetcher adapts a Provider's Fetch method to the Fetcher surface.
func AsFetcher(p Provider) Fetcher {
	return providerFetcher{p: p}
}
