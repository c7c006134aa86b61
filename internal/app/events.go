package app

import "ceelo/internal/domain"

// EventKind identifies emitted engine events for transport dispatch.
type EventKind string

const (
	EventLobbyState    EventKind = "lobby_state"
	EventGameStarted   EventKind = "game_started"
	EventRoundStarted  EventKind = "round_started"
	EventRollSubmitted EventKind = "roll_submitted"
	EventRoundEnded    EventKind = "round_ended"
	EventRoundTied     EventKind = "round_tied"
	EventSuddenDeath   EventKind = "sudden_death"
	EventGameEnded     EventKind = "game_ended"
)

// Event is an engine event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // wallet ids; empty means broadcast to the lobby
}

// LobbyStatePayload signals that the lobby snapshot changed; the transport
// layer builds and fans out the full snapshot.
type LobbyStatePayload struct{}

type GameStartedPayload struct {
	TotalRounds int
	Pot         float64
}

type RoundStartedPayload struct {
	Round     int
	TurnIndex int
	// TurnWalletID is the wallet expected to roll first.
	TurnWalletID string
}

type RollSubmittedPayload struct {
	WalletID string
	Dice     [3]int
	Outcome  domain.Outcome
	// NextTurnWalletID is empty when the roll ended the round.
	NextTurnWalletID string
}

type RoundEndedPayload struct {
	Result domain.RoundResult
	// Scoreboard points after the round, keyed by wallet id.
	Points map[string]int
}

type RoundTiedPayload struct {
	Round int
	// NextRound replays with the incremented counter.
	NextRound int
}

type SuddenDeathPayload struct {
	TiedWallets   []string
	OvertimeRound int
}

type GameEndedPayload struct {
	WinnerWalletID string
	Pot            float64
	Scoreboard     map[string]domain.Score
	RoundsPlayed   int
}
