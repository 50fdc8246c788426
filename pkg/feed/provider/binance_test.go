package provider

import (
	"math"
	"testing"

	binance "github.com/adshao/go-binance/v2"
	"github.com/stretchr/testify/assert"

	"github.com/tradeterm-lab/tradeterm/internal/types"
)

func TestBinanceSymbol(t *testing.T) {
	tests := []struct {
		name   string
		asset  string
		expect string
	}{
		{
			name:   "bare base currency gains USDT quote",
			asset:  "btc",
			expect: "BTCUSDT",
		},
		{
			name:   "explicit pair drops the underscore",
			asset:  "btc_usdt",
			expect: "BTCUSDT",
		},
		{
			name:   "already uppercase",
			asset:  "ETH",
			expect: "ETHUSDT",
		},
		{
			name:   "non-usdt pair keeps its quote",
			asset:  "eth_btc",
			expect: "ETHBTC",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, binanceSymbol(tt.asset))
		})
	}
}

func TestBinanceInterval(t *testing.T) {
	assert.Equal(t, "1h", binanceInterval(types.IntervalOneHour))
	assert.Equal(t, "1d", binanceInterval(types.IntervalOneDay))
	assert.Equal(t, "1w", binanceInterval(types.IntervalOneWeek))
	assert.Equal(t, "1M", binanceInterval(types.IntervalOneMonth))
}

func TestOhlcvFromKline(t *testing.T) {
	kline := &binance.Kline{
		OpenTime:  1700000000000,
		Open:      "42000.5",
		High:      "43000",
		Low:       "41000",
		Close:     "42500.25",
		Volume:    "1234.5",
		CloseTime: 1700003599999,
	}

	bar := ohlcvFromKline(kline)

	assert.Equal(t, float64(1700000000), bar.Time)
	assert.Equal(t, 42000.5, bar.Open)
	assert.Equal(t, 43000.0, bar.High)
	assert.Equal(t, 41000.0, bar.Low)
	assert.Equal(t, 42500.25, bar.Close)
	assert.Equal(t, 1234.5, bar.Vol)
}

func TestOhlcvFromKlineUnparsablePrice(t *testing.T) {
	kline := &binance.Kline{
		OpenTime: 1700000000000,
		Open:     "not-a-number",
		High:     "1",
		Low:      "1",
		Close:    "1",
		Volume:   "1",
	}

	bar := ohlcvFromKline(kline)

	assert.Equal(t, 0.0, bar.Open)
	assert.False(t, math.IsNaN(bar.Open))
}
