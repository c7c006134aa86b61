package ports

import "context"

// WinRecord summarizes a terminal game win for the activity sink.
type WinRecord struct {
	LobbyID      string
	Tier         string
	Points       int
	Pot          float64
	RoundsPlayed int
}

// ActivityRecorder is a fire-and-forget sink for terminal win events.
// Failures must never affect game state.
type ActivityRecorder interface {
	RecordWin(ctx context.Context, walletID string, record WinRecord) error
}
