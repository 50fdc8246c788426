// Package store owns the on-disk to in-memory load of the local market data
// cache: asset catalogs (JSON) and OHLCV series (CSV), keyed by asset and
// interval.
package store

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"github.com/tradeterm-lab/tradeterm/internal/logger"
	"github.com/tradeterm-lab/tradeterm/internal/types"
	"github.com/tradeterm-lab/tradeterm/pkg/errors"
)

const (
	cryptoCatalogPath = "Binance/crypto_assets.json"
	stockCatalogPath  = "StockUS/stock_us_ticker.json"
)

// LoadResult records the outcome of loading one manifest entry.
type LoadResult struct {
	Entry ManifestEntry
	Rows  int
	Err   error
}

// LocalStore loads and holds the cached reference data for one cache root:
// the two asset catalogs and the asset → interval → series database.
// Load once with Init, read-only afterwards.
type LocalStore struct {
	rootDir  string
	manifest []ManifestEntry
	log      *logger.Logger

	cryptoAssets optional.Option[types.CryptoCatalog]
	stockAssets  optional.Option[types.StockCatalog]
	db           types.OhlcvDB
	report       []LoadResult
}

// NewLocalStore creates a store over the given cache root directory. A nil or
// empty manifest selects DefaultManifest.
func NewLocalStore(rootDir string, manifest []ManifestEntry, log *logger.Logger) *LocalStore {
	if len(manifest) == 0 {
		manifest = DefaultManifest()
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	return &LocalStore{
		rootDir:  rootDir,
		manifest: manifest,
		log:      log,
	}
}

// Init loads the two catalogs and every manifest series into memory.
//
// Catalog failures (missing file, bad JSON) are hard errors that abort the
// load. Series failures are tolerated: the slot stays present but empty, the
// outcome lands in LoadReport, and Init still returns nil. Every manifest
// asset ends up with a slot for each supported interval, loaded or not.
func (s *LocalStore) Init() error {
	var crypto types.CryptoCatalog
	if err := s.loadJSON(cryptoCatalogPath, &crypto); err != nil {
		return errors.Wrap(errors.ErrCodeCatalogLoadFailed, "crypto asset catalog", err)
	}

	var stock types.StockCatalog
	if err := s.loadJSON(stockCatalogPath, &stock); err != nil {
		return errors.Wrap(errors.ErrCodeCatalogLoadFailed, "US stock catalog", err)
	}

	s.cryptoAssets = optional.Some(crypto)
	s.stockAssets = optional.Some(stock)

	s.db = make(types.OhlcvDB)
	for _, entry := range s.manifest {
		if _, ok := s.db[entry.Asset]; ok {
			continue
		}

		slots := make(map[types.Interval][]types.Ohlcv, len(types.Intervals()))
		for _, interval := range types.Intervals() {
			slots[interval] = []types.Ohlcv{}
		}

		s.db[entry.Asset] = slots
	}

	s.report = s.report[:0]

	for _, entry := range s.manifest {
		series := s.db[entry.Asset][entry.Interval]
		err := ParseSeriesFile(filepath.Join(s.rootDir, entry.Path), &series, s.log)
		s.db[entry.Asset][entry.Interval] = series

		s.report = append(s.report, LoadResult{Entry: entry, Rows: len(series), Err: err})
	}

	s.log.Info("local cache loaded",
		zap.Int("assets", len(s.db)),
		zap.Int("files", len(s.manifest)))

	return nil
}

func (s *LocalStore) loadJSON(relPath string, out any) error {
	data, err := os.ReadFile(filepath.Join(s.rootDir, relPath))
	if err != nil {
		return err
	}

	return json.Unmarshal(data, out)
}

// CryptoAssets returns the crypto asset catalog, or None before Init.
func (s *LocalStore) CryptoAssets() optional.Option[types.CryptoCatalog] {
	return s.cryptoAssets
}

// StockUSAssets returns the US stock catalog, or None before Init.
func (s *LocalStore) StockUSAssets() optional.Option[types.StockCatalog] {
	return s.stockAssets
}

// OhlcvDB returns a deep copy of the loaded series database, so callers can
// never mutate the store's view of the cache.
func (s *LocalStore) OhlcvDB() types.OhlcvDB {
	return s.db.Clone()
}

// LoadReport returns the per-file outcome of the last Init, for callers that
// want more signal than Init's permissive nil return.
func (s *LocalStore) LoadReport() []LoadResult {
	out := make([]LoadResult, len(s.report))
	copy(out, s.report)

	return out
}

// Market classifies the asset: present under the crypto catalog's "spot"
// bucket wins, then the stock catalog, otherwise None.
func (s *LocalStore) Market(asset string) optional.Option[types.Market] {
	if s.cryptoAssets.IsSome() {
		if spot, ok := s.cryptoAssets.Unwrap()[types.CryptoMarketSpot]; ok {
			if _, ok := spot[asset]; ok {
				return optional.Some(types.MarketCryptoSpot)
			}
		}
	}

	if s.stockAssets.IsSome() {
		if _, ok := s.stockAssets.Unwrap()[asset]; ok {
			return optional.Some(types.MarketStockUS)
		}
	}

	return optional.None[types.Market]()
}
