package provider

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tradeterm-lab/tradeterm/internal/types"
	"github.com/tradeterm-lab/tradeterm/pkg/errors"
	"github.com/tradeterm-lab/tradeterm/pkg/feed/writer"
)

func TestNewProviderBinance(t *testing.T) {
	p, err := NewProvider(ProviderBinance, nil)
	assert.NoError(t, err)
	assert.NotNil(t, p)
}

func TestNewProviderPolygon(t *testing.T) {
	p, err := NewProvider(ProviderPolygon, "test-api-key")
	assert.NoError(t, err)
	assert.NotNil(t, p)
}

func TestNewProviderPolygonWithoutKey(t *testing.T) {
	p, err := NewProvider(ProviderPolygon, nil)
	assert.Nil(t, p)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidProvider))
}

func TestNewProviderUnknown(t *testing.T) {
	p, err := NewProvider(ProviderType("ftx"), nil)
	assert.Nil(t, p)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidProvider))
}

type stubProvider struct {
	fetched []types.Ohlcv
	asset   string
}

func (s *stubProvider) Fetch(_ context.Context, asset string, _ types.Interval) ([]types.Ohlcv, error) {
	s.asset = asset
	return s.fetched, nil
}

func (s *stubProvider) Download(_ context.Context, _ string, _ types.Interval, _, _ time.Time, _ writer.SeriesWriter, _ OnDownloadProgress) error {
	return nil
}

func TestAsFetcherDelegatesToFetch(t *testing.T) {
	stub := &stubProvider{
		fetched: []types.Ohlcv{{Time: 1, Open: 2, High: 3, Low: 1, Close: 2, Vol: 10}},
	}

	fetcher := AsFetcher(stub)

	series, err := fetcher.GetOhlcv(context.Background(), "btc", types.IntervalOneHour)
	assert.NoError(t, err)
	assert.Equal(t, stub.fetched, series)
	assert.Equal(t, "btc", stub.asset)
}
