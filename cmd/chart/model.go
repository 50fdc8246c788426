package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tradeterm-lab/tradeterm/internal/state"
	"github.com/tradeterm-lab/tradeterm/internal/types"
)

// Application states.
const (
	StateAssetSelect = iota
	StateIntervalSelect
	StateChartDisplay
)

// Model is the main Bubble Tea model for the chart application.
type Model struct {
	state        int
	store        *state.Store
	snap         state.Snapshot
	assetList    list.Model
	intervalList list.Model
	seriesTable  table.Model
	err          error
	width        int
	height       int
}

// NewModel creates a new Model over the application state store.
func NewModel(store *state.Store) Model {
	snap := store.Snapshot()

	m := Model{
		state:        StateAssetSelect,
		store:        store,
		snap:         snap,
		intervalList: NewIntervalList(),
		seriesTable:  NewSeriesTable(),
	}
	m.assetList = NewAssetList(snap.Assets, m.describeAsset)
	m.seriesTable = UpdateSeriesRows(m.seriesTable, snap.CurrentSeries)

	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "esc":
			return m.handleEsc()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.assetList.SetSize(msg.Width, msg.Height-4)
		m.intervalList.SetSize(msg.Width, msg.Height-4)
		m.seriesTable.SetWidth(msg.Width)

		return m, nil

	case StateChangedMsg:
		m.snap = msg.Snapshot
		m.assetList.SetItems(AssetListItems(m.snap.Assets, m.describeAsset))
		m.seriesTable = UpdateSeriesRows(m.seriesTable, m.snap.CurrentSeries)
		m.err = nil

		return m, nil

	case FetchErrorMsg:
		m.err = msg.Err
		return m, nil
	}

	// Delegate to state-specific update
	switch m.state {
	case StateAssetSelect:
		return m.updateAssetSelect(msg)
	case StateIntervalSelect:
		return m.updateIntervalSelect(msg)
	case StateChartDisplay:
		return m.updateChartDisplay(msg)
	}

	return m, nil
}

func (m Model) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case StateIntervalSelect:
		m.state = StateAssetSelect
	case StateChartDisplay:
		m.state = StateIntervalSelect
		m.err = nil
	}

	return m, nil
}

func (m Model) updateAssetSelect(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		if item, ok := m.assetList.SelectedItem().(listItem); ok {
			m.store.SelectAsset(item.name)
			m.state = StateIntervalSelect

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.assetList, cmd = m.assetList.Update(msg)

	return m, cmd
}

func (m Model) updateIntervalSelect(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		if item, ok := m.intervalList.SelectedItem().(listItem); ok {
			interval, err := types.ParseInterval(item.name)
			if err != nil {
				m.err = err
				return m, nil
			}

			m.store.SelectInterval(interval)
			m.state = StateChartDisplay

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.intervalList, cmd = m.intervalList.Update(msg)

	return m, cmd
}

func (m Model) updateChartDisplay(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		// Number keys switch intervals without leaving the chart.
		intervals := types.Intervals()
		switch key.String() {
		case "1", "2", "3", "4":
			idx := int(key.String()[0] - '1')
			if idx < len(intervals) {
				m.store.SelectInterval(intervals[idx])
			}

			return m, nil
		case "i":
			m.state = StateIntervalSelect
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.seriesTable, cmd = m.seriesTable.Update(msg)

	return m, cmd
}

// describeAsset labels an asset with its catalog entry, when one exists.
func (m Model) describeAsset(asset string) string {
	if m.snap.CryptoAssets.IsSome() {
		if spot, ok := m.snap.CryptoAssets.Unwrap()[types.CryptoMarketSpot]; ok {
			if entry, ok := spot[asset]; ok {
				return fmt.Sprintf("%s %s/%s", types.MarketCryptoSpot, entry.Base, entry.Quote)
			}
		}
	}

	if m.snap.StockAssets.IsSome() {
		if entry, ok := m.snap.StockAssets.Unwrap()[asset]; ok {
			return fmt.Sprintf("%s %s", types.MarketStockUS, entry.Title)
		}
	}

	return "cached series"
}

// View implements tea.Model.
func (m Model) View() string {
	var s strings.Builder

	switch m.state {
	case StateAssetSelect:
		s.WriteString(TitleStyle.Render("TradeTerm"))
		s.WriteString("\n\n")
		s.WriteString(m.assetList.View())
		s.WriteString("\n")
		s.WriteString(HelpStyle.Render("Press Enter to select, q to quit"))

	case StateIntervalSelect:
		s.WriteString(TitleStyle.Render("Select Interval - " + m.snap.CurrentAsset))
		s.WriteString("\n\n")
		s.WriteString(m.intervalList.View())
		s.WriteString("\n")
		s.WriteString(HelpStyle.Render("Press Enter to select, Esc to go back"))

	case StateChartDisplay:
		s.WriteString(TitleStyle.Render(fmt.Sprintf("%s (%s)", m.snap.CurrentAsset, m.snap.CurrentInterval)))
		s.WriteString("\n\n")

		if m.err != nil {
			s.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
			s.WriteString("\n\n")
		}

		if len(m.snap.CurrentSeries) == 0 {
			s.WriteString("Waiting for data...\n")
		} else {
			chartWidth := m.width
			if chartWidth <= 0 {
				chartWidth = 80
			}

			s.WriteString(RenderChart(m.snap.CurrentSeries, chartWidth, 10))
			s.WriteString("\n")
			s.WriteString(m.seriesTable.View())
		}

		s.WriteString("\n")

		if m.snap.Notification != "" {
			s.WriteString(NotificationStyle.Render(m.snap.Notification))
			s.WriteString("\n")
		}

		help := "1-4/i: interval | Esc: back | q: quit"
		if m.snap.ServerLatency > 0 {
			help += fmt.Sprintf(" | latency: %s", m.snap.ServerLatency)
		}

		s.WriteString(HelpStyle.Render(help))
	}

	return s.String()
}
