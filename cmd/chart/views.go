package main

import (
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/tradeterm-lab/tradeterm/internal/types"
)

// listItem implements the list.Item interface for asset and interval lists.
type listItem struct {
	name        string
	description string
}

func (i listItem) Title() string       { return i.name }
func (i listItem) Description() string { return i.description }
func (i listItem) FilterValue() string { return i.name }

// NewAssetList creates the asset selection list from a snapshot's assets.
func NewAssetList(assets []string, describe func(asset string) string) list.Model {
	items := make([]list.Item, 0, len(assets))
	for _, asset := range assets {
		items = append(items, listItem{name: asset, description: describe(asset)})
	}

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true

	l := list.New(items, delegate, 0, 0)
	l.Title = "Select Asset"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	return l
}

// AssetListItems rebuilds the item set when a catalog or cache load changes
// the asset universe.
func AssetListItems(assets []string, describe func(asset string) string) []list.Item {
	items := make([]list.Item, 0, len(assets))
	for _, asset := range assets {
		items = append(items, listItem{name: asset, description: describe(asset)})
	}

	return items
}

// NewIntervalList creates the interval selection list.
func NewIntervalList() list.Model {
	descriptions := map[types.Interval]string{
		types.IntervalOneHour:  "1 hour candles",
		types.IntervalOneDay:   "1 day candles",
		types.IntervalOneWeek:  "1 week candles",
		types.IntervalOneMonth: "1 month candles",
	}

	items := make([]list.Item, 0, len(types.Intervals()))
	for _, interval := range types.Intervals() {
		items = append(items, listItem{name: string(interval), description: descriptions[interval]})
	}

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true

	l := list.New(items, delegate, 0, 0)
	l.Title = "Select Interval"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	return l
}

// NewSeriesTable creates the table showing the most recent bars.
func NewSeriesTable() table.Model {
	columns := []table.Column{
		{Title: "Time", Width: 16},
		{Title: "Open", Width: 12},
		{Title: "High", Width: 12},
		{Title: "Low", Width: 12},
		{Title: "Close", Width: 12},
		{Title: "Volume", Width: 14},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)

	t.SetStyles(s)

	return t
}

// UpdateSeriesRows fills the table with the series, newest bar first.
func UpdateSeriesRows(t table.Model, series []types.Ohlcv) table.Model {
	rows := make([]table.Row, 0, len(series))

	for i := len(series) - 1; i >= 0; i-- {
		bar := series[i]

		rows = append(rows, table.Row{
			formatBarTime(bar.Time),
			FormatCell(bar.Open),
			FormatCell(bar.High),
			FormatCell(bar.Low),
			FormatCell(bar.Close),
			FormatCell(bar.Vol),
		})
	}

	t.SetRows(rows)

	return t
}

func formatBarTime(t float64) string {
	if math.IsNaN(t) {
		return "-"
	}

	return time.Unix(int64(t), 0).UTC().Format("2006-01-02 15:04")
}

// RenderChart draws the close-price series as a column chart, one column per
// bar, colored by the bar's close-over-open direction. Bars whose close is
// missing are skipped.
func RenderChart(series []types.Ohlcv, width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}

	bars := make([]types.Ohlcv, 0, width)
	for _, bar := range series {
		if !math.IsNaN(bar.Close) {
			bars = append(bars, bar)
		}
	}

	if len(bars) == 0 {
		return "No chart data."
	}

	if len(bars) > width {
		bars = bars[len(bars)-width:]
	}

	minClose, maxClose := bars[0].Close, bars[0].Close
	for _, bar := range bars[1:] {
		minClose = math.Min(minClose, bar.Close)
		maxClose = math.Max(maxClose, bar.Close)
	}

	span := maxClose - minClose
	if span == 0 {
		span = 1
	}

	levels := make([]int, len(bars))
	for i, bar := range bars {
		levels[i] = 1 + int((bar.Close-minClose)/span*float64(height-1))
	}

	var b strings.Builder
	for row := height; row >= 1; row-- {
		for i, bar := range bars {
			if levels[i] < row {
				b.WriteString(" ")
				continue
			}

			if !math.IsNaN(bar.Open) && bar.Close < bar.Open {
				b.WriteString(DownStyle.Render("█"))
			} else {
				b.WriteString(UpStyle.Render("█"))
			}
		}

		b.WriteString("\n")
	}

	return b.String()
}
