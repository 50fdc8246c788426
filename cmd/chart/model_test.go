package main

import (
	"bytes"
	"math"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/stretchr/testify/assert"

	"github.com/tradeterm-lab/tradeterm/internal/state"
	"github.com/tradeterm-lab/tradeterm/internal/types"
)

func newTestStore() *state.Store {
	s := state.NewStore(nil, nil)
	s.LoadCache(types.OhlcvDB{
		"btc": {
			types.IntervalOneHour: {
				{Time: 1700000000, Open: 42000, High: 43000, Low: 41000, Close: 42500, Vol: 1200},
				{Time: 1700003600, Open: 42500, High: 42900, Low: 42100, Close: 42700, Vol: 900},
			},
		},
		"msft": {
			types.IntervalOneDay: {
				{Time: 1700000000, Open: 310, High: 315, Low: 308, Close: 312, Vol: 98765},
			},
		},
	})

	return s
}

func TestNewModelInitialState(t *testing.T) {
	m := NewModel(newTestStore())

	assert.Equal(t, StateAssetSelect, m.state)
	assert.Equal(t, []string{"btc", "msft"}, m.snap.Assets)
	assert.Equal(t, "btc", m.snap.CurrentAsset)
}

func TestAssetSelection(t *testing.T) {
	m := NewModel(newTestStore())
	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(80, 24))

	// Wait for asset list to render
	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("btc"))
	}, teatest.WithDuration(2*time.Second))

	// Send Enter to select the first asset
	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})

	// Verify state changed to interval selection
	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("Select Interval"))
	}, teatest.WithDuration(2*time.Second))

	err := tm.Quit()
	assert.NoError(t, err)
}

func TestIntervalSelectionShowsChart(t *testing.T) {
	m := NewModel(newTestStore())
	m.state = StateIntervalSelect

	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(80, 24))

	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("Select Interval"))
	}, teatest.WithDuration(2*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})

	// The chart view shows the selection header and the series table.
	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("btc (1h)")) && bytes.Contains(bts, []byte("42500"))
	}, teatest.WithDuration(2*time.Second))

	err := tm.Quit()
	assert.NoError(t, err)
}

func TestStateChangedMsgUpdatesSnapshot(t *testing.T) {
	store := newTestStore()
	m := NewModel(store)

	store.SelectAsset("msft")
	store.SelectInterval(types.IntervalOneDay)

	updated, _ := m.Update(StateChangedMsg{Snapshot: store.Snapshot()})
	model := updated.(Model)

	assert.Equal(t, "msft", model.snap.CurrentAsset)
	assert.Equal(t, types.IntervalOneDay, model.snap.CurrentInterval)
}

func TestFetchErrorMsgSetsError(t *testing.T) {
	m := NewModel(newTestStore())

	updated, _ := m.Update(FetchErrorMsg{Err: assert.AnError})
	model := updated.(Model)

	assert.Equal(t, assert.AnError, model.err)
}

func TestDescribeAsset(t *testing.T) {
	store := newTestStore()
	store.LoadCryptoAssets(types.CryptoCatalog{
		types.CryptoMarketSpot: {
			"btc": {Base: "BTC", Quote: "USDT", Symbol: "BTCUSDT", Type: "spot"},
		},
	})
	store.LoadStockAssets(types.StockCatalog{
		"msft": {CIK: 789019, Ticker: "MSFT", Title: "MICROSOFT CORP"},
	})

	m := NewModel(store)

	assert.Equal(t, "Crypto[Spot] BTC/USDT", m.describeAsset("btc"))
	assert.Equal(t, "Stock[US] MICROSOFT CORP", m.describeAsset("msft"))
	assert.Equal(t, "cached series", m.describeAsset("doge"))
}

func TestFormatCell(t *testing.T) {
	assert.Equal(t, "42000.00", FormatCell(42000))
	assert.Equal(t, "-", FormatCell(math.NaN()))
}

func TestRenderChart(t *testing.T) {
	series := []types.Ohlcv{
		{Time: 1, Open: 10, High: 12, Low: 9, Close: 11, Vol: 1},
		{Time: 2, Open: 11, High: 13, Low: 10, Close: 12, Vol: 1},
		{Time: 3, Open: 12, High: 12, Low: 8, Close: 9, Vol: 1},
	}

	out := RenderChart(series, 40, 5)
	assert.NotEmpty(t, out)
	assert.Contains(t, out, "█")
}

func TestRenderChartEmptySeries(t *testing.T) {
	assert.Equal(t, "No chart data.", RenderChart(nil, 40, 5))

	nanOnly := []types.Ohlcv{{Time: 1, Close: math.NaN()}}
	assert.Equal(t, "No chart data.", RenderChart(nanOnly, 40, 5))
}
