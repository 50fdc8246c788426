package main

import "github.com/tradeterm-lab/tradeterm/internal/state"

// StateChangedMsg carries a fresh application state snapshot.
type StateChangedMsg struct {
	Snapshot state.Snapshot
}

// FetchErrorMsg indicates a failed live-feed fetch.
type FetchErrorMsg struct {
	Err error
}
