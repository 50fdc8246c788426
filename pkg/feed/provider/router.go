package provider

import (
	"context"

	"github.com/moznion/go-optional"

	"github.com/tradeterm-lab/tradeterm/internal/types"
	"github.com/tradeterm-lab/tradeterm/pkg/errors"
)

// Classifier reports which market an asset belongs to. The local store's
// catalog lookup satisfies this.
type Classifier interface {
	Market(asset string) optional.Option[types.Market]
}

// Router fans fetches out by market: crypto-spot assets to one provider,
// US stocks to another, everything unclassified to the fallback fetcher
// (typically the agent-server client).
type Router struct {
	classifier Classifier
	crypto     Provider
	stock      Provider
	fallback   Fetcher
}

// NewRouter creates a routing fetcher. Any of crypto, stock, and fallback may
// be nil; an asset that lands on a nil branch falls back, and if the fallback
// is nil too the fetch fails.
func NewRouter(classifier Classifier, crypto, stock Provider, fallback Fetcher) *Router {
	return &Router{
		classifier: classifier,
		crypto:     crypto,
		stock:      stock,
		fallback:   fallback,
	}
}

// GetOhlcv implements Fetcher.
func (r *Router) GetOhlcv(ctx context.Context, asset string, interval types.Interval) ([]types.Ohlcv, error) {
	market := r.classifier.Market(asset)

	if market.IsSome() {
		switch market.Unwrap() {
		case types.MarketCryptoSpot:
			if r.crypto != nil {
				return r.crypto.Fetch(ctx, asset, interval)
			}
		case types.MarketStockUS:
			if r.stock != nil {
				return r.stock.Fetch(ctx, asset, interval)
			}
		}
	}

	if r.fallback != nil {
		return r.fallback.GetOhlcv(ctx, asset, interval)
	}

	return nil, errors.Newf(errors.ErrCodeFeedNotConfigured, "no feed can serve asset %q", asset)
}
