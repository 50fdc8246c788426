package types

// Ohlcv is a single trading-period price/volume summary bar.
// Fields are float64 so that a source cell that fails numeric coercion can be
// represented by the NaN sentinel; well-formed values are whole numbers and
// therefore exact in a float64.
type Ohlcv struct {
	Time  float64 `json:"time"`
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
	Vol   float64 `json:"vol"`
}

// OhlcvDB maps asset name to interval to the ordered series for that pair.
type OhlcvDB map[string]map[Interval][]Ohlcv

// Clone returns a deep copy of the database. Series slices are copied so the
// caller can never mutate the original through the result.
func (db OhlcvDB) Clone() OhlcvDB {
	if db == nil {
		return nil
	}

	out := make(OhlcvDB, len(db))

	for asset, intervals := range db {
		slots := make(map[Interval][]Ohlcv, len(intervals))
		for interval, series := range intervals {
			dup := make([]Ohlcv, len(series))
			copy(dup, series)
			slots[interval] = dup
		}

		out[asset] = slots
	}

	return out
}

// Market classifies the venue an asset trades on.
type Market string

const (
	MarketCryptoSpot Market = "Crypto[Spot]"
	MarketStockUS    Market = "Stock[US]"
)
