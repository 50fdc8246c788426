// Package state holds the single source of truth for the chart display:
// the loaded series database, the active asset/interval selection, and the
// currently displayed series. All mutations go through named transitions that
// apply atomically under one writer.
package state

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"github.com/tradeterm-lab/tradeterm/internal/logger"
	"github.com/tradeterm-lab/tradeterm/internal/types"
)

// fetchTimeout bounds a single live-feed request issued by a selection change.
const fetchTimeout = 10 * time.Second

// Fetcher supplies a replacement series for a selection, asynchronously from
// the caller's point of view.
type Fetcher interface {
	GetOhlcv(ctx context.Context, asset string, interval types.Interval) ([]types.Ohlcv, error)
}

// Snapshot is an immutable copy of the display state, delivered to observers
// after every transition.
type Snapshot struct {
	Assets          []string
	CurrentAsset    string
	CurrentInterval types.Interval
	CurrentSeries   []types.Ohlcv
	Notification    string
	ServerLatency   time.Duration
	CryptoAssets    optional.Option[types.CryptoCatalog]
	StockAssets     optional.Option[types.StockCatalog]
}

// Store is the state owner. Construct once at startup and hand references to
// the view layer; there is exactly one writer, guarded by the mutex.
type Store struct {
	mu      sync.Mutex
	fetcher Fetcher
	log     *logger.Logger

	cryptoAssets optional.Option[types.CryptoCatalog]
	stockAssets  optional.Option[types.StockCatalog]

	db              types.OhlcvDB
	currentAsset    string
	currentInterval types.Interval
	currentSeries   []types.Ohlcv
	notification    string
	serverLatency   time.Duration

	// fetchGen tags in-flight fetches with the selection that issued them;
	// a completion whose tag is stale is discarded instead of applied.
	fetchGen uint64

	onChange     func(Snapshot)
	onFetchError func(error)
}

// NewStore creates a state store. The fetcher may be nil, in which case
// selections only consult the local cache. The initial selection mirrors an
// empty btc/1h cache until LoadCache replaces it.
func NewStore(fetcher Fetcher, log *logger.Logger) *Store {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Store{
		fetcher: fetcher,
		log:     log,
		db: types.OhlcvDB{
			"btc": {types.IntervalOneHour: {}},
		},
		currentAsset:    "btc",
		currentInterval: types.IntervalOneHour,
		currentSeries:   []types.Ohlcv{},
	}
}

// OnChange registers the observer invoked with a snapshot after every applied
// transition. Set it before dispatching transitions; it is called outside the
// store lock.
func (s *Store) OnChange(fn func(Snapshot)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// OnFetchError registers the observer for failed live-feed fetches.
func (s *Store) OnFetchError(fn func(error)) {
	s.mu.Lock()
	s.onFetchError = fn
	s.mu.Unlock()
}

// SetFetcher installs (or replaces) the live-feed fetcher. It does not issue
// a fetch; the next selection does.
func (s *Store) SetFetcher(fetcher Fetcher) {
	s.mu.Lock()
	s.fetcher = fetcher
	s.mu.Unlock()
}

// Snapshot returns a copy of the current display state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshotLocked()
}

// LoadCache replaces the whole series database. The active asset resets to
// the database's first key (smallest, for determinism) and the displayed
// series is recomputed; on a lookup miss it keeps its previous value.
func (s *Store) LoadCache(db types.OhlcvDB) {
	s.mu.Lock()

	s.db = db.Clone()
	if asset, ok := firstKey(s.db); ok {
		s.currentAsset = asset
	}

	if series, ok := s.lookupLocked(s.currentAsset, s.currentInterval); ok {
		s.currentSeries = series
	}

	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
}

// LoadCryptoAssets replaces the crypto catalog. No effect on the series.
func (s *Store) LoadCryptoAssets(catalog types.CryptoCatalog) {
	s.mu.Lock()
	s.cryptoAssets = optional.Some(catalog)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
}

// LoadStockAssets replaces the US stock catalog. No effect on the series.
func (s *Store) LoadStockAssets(catalog types.StockCatalog) {
	s.mu.Lock()
	s.stockAssets = optional.Some(catalog)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
}

// SelectAsset switches the active asset. The displayed series updates
// synchronously from the cache when the slot exists (otherwise it keeps its
// previous value), and a live fetch is always issued for the new selection.
func (s *Store) SelectAsset(asset string) {
	s.mu.Lock()
	s.currentAsset = asset

	if series, ok := s.lookupLocked(asset, s.currentInterval); ok {
		s.currentSeries = series
	}

	gen := s.nextGenLocked()
	interval := s.currentInterval
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
	s.dispatchFetch(gen, asset, interval)
}

// SelectInterval switches the active interval, symmetric to SelectAsset.
func (s *Store) SelectInterval(interval types.Interval) {
	s.mu.Lock()
	s.currentInterval = interval

	if series, ok := s.lookupLocked(s.currentAsset, interval); ok {
		s.currentSeries = series
	}

	gen := s.nextGenLocked()
	asset := s.currentAsset
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
	s.dispatchFetch(gen, asset, interval)
}

// SetNotification updates the notification line.
func (s *Store) SetNotification(message string) {
	s.mu.Lock()
	s.notification = message
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
}

// SetServerLatency updates the measured agent-server latency.
func (s *Store) SetServerLatency(latency time.Duration) {
	s.mu.Lock()
	s.serverLatency = latency
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
}

func (s *Store) dispatchFetch(gen uint64, asset string, interval types.Interval) {
	s.mu.Lock()
	fetcher := s.fetcher
	s.mu.Unlock()

	if fetcher == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		series, err := fetcher.GetOhlcv(ctx, asset, interval)
		if err != nil {
			s.log.Warn("live series fetch failed",
				zap.String("asset", asset),
				zap.String("interval", string(interval)),
				zap.Error(err))

			s.mu.Lock()
			onErr := s.onFetchError
			s.mu.Unlock()

			if onErr != nil {
				onErr(err)
			}

			return
		}

		s.applyFetch(gen, asset, interval, series)
	}()
}

// applyFetch installs a fetched series unless the selection has moved on
// since the fetch was issued.
func (s *Store) applyFetch(gen uint64, asset string, interval types.Interval, series []types.Ohlcv) {
	s.mu.Lock()

	if gen != s.fetchGen || asset != s.currentAsset || interval != s.currentInterval {
		s.mu.Unlock()
		s.log.Debug("discarding stale series fetch",
			zap.String("asset", asset),
			zap.String("interval", string(interval)))

		return
	}

	s.currentSeries = series
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
}

func (s *Store) nextGenLocked() uint64 {
	s.fetchGen++

	return s.fetchGen
}

func (s *Store) lookupLocked(asset string, interval types.Interval) ([]types.Ohlcv, bool) {
	intervals, ok := s.db[asset]
	if !ok {
		return nil, false
	}

	series, ok := intervals[interval]
	if !ok {
		return nil, false
	}

	return series, true
}

func (s *Store) snapshotLocked() Snapshot {
	assets := make([]string, 0, len(s.db))
	for asset := range s.db {
		assets = append(assets, asset)
	}

	sort.Strings(assets)

	series := make([]types.Ohlcv, len(s.currentSeries))
	copy(series, s.currentSeries)

	return Snapshot{
		Assets:          assets,
		CurrentAsset:    s.currentAsset,
		CurrentInterval: s.currentInterval,
		CurrentSeries:   series,
		Notification:    s.notification,
		ServerLatency:   s.serverLatency,
		CryptoAssets:    s.cryptoAssets,
		StockAssets:     s.stockAssets,
	}
}

func (s *Store) notify(snap Snapshot) {
	s.mu.Lock()
	fn := s.onChange
	s.mu.Unlock()

	if fn != nil {
		fn(snap)
	}
}

// firstKey returns the smallest key of the database, so the post-LoadCache
// selection does not depend on map iteration order.
func firstKey(db types.OhlcvDB) (string, bool) {
	first := ""
	found := false

	for asset := range db {
		if !found || asset < first {
			first = asset
			found = true
		}
	}

	return first, found
}
