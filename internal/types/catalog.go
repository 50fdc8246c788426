package types

// CryptoMarketSpot is the catalog bucket holding spot-market pairs.
const CryptoMarketSpot = "spot"

// CryptoAsset describes one tradable crypto pair.
type CryptoAsset struct {
	Base   string `json:"base"`
	Quote  string `json:"quote"`
	Symbol string `json:"symbol"`
	Type   string `json:"type"`
}

// CryptoCatalog maps market type (e.g. "spot") to symbol to descriptor.
type CryptoCatalog map[string]map[string]CryptoAsset

// StockAsset describes one US-listed ticker.
type StockAsset struct {
	CIK    int64  `json:"cik_str"`
	Ticker string `json:"ticker"`
	Title  string `json:"title"`
}

// StockCatalog maps ticker to descriptor.
type StockCatalog map[string]StockAsset
