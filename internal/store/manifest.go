package store

import "github.com/tradeterm-lab/tradeterm/internal/types"

// ManifestEntry binds one on-disk series file to its cache slot.
// Path is relative to the cache root directory.
type ManifestEntry struct {
	Asset    string         `yaml:"asset" validate:"required"`
	Interval types.Interval `yaml:"interval" validate:"required,oneof=1h 1d 1w 1M"`
	Path     string         `yaml:"path" validate:"required"`
}

// DefaultManifest reproduces the standard cache layout: two assets, four
// intervals each, under their venue subdirectories.
func DefaultManifest() []ManifestEntry {
	return []ManifestEntry{
		{Asset: "btc", Interval: types.IntervalOneHour, Path: "Binance/btc_usdt-1hour.csv"},
		{Asset: "btc", Interval: types.IntervalOneDay, Path: "Binance/btc_usdt-1day.csv"},
		{Asset: "btc", Interval: types.IntervalOneWeek, Path: "Binance/btc_usdt-1week.csv"},
		{Asset: "btc", Interval: types.IntervalOneMonth, Path: "Binance/btc_usdt-1mon.csv"},
		{Asset: "msft", Interval: types.IntervalOneHour, Path: "StockUS/msft-1hour.csv"},
		{Asset: "msft", Interval: types.IntervalOneDay, Path: "StockUS/msft-1day.csv"},
		{Asset: "msft", Interval: types.IntervalOneWeek, Path: "StockUS/msft-1week.csv"},
		{Asset: "msft", Interval: types.IntervalOneMonth, Path: "StockUS/msft-1mon.csv"},
	}
}
