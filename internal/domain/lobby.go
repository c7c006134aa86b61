package domain

// Status is the lifecycle stage of a lobby.
type Status string

const (
	// StatusWaiting indicates the lobby is open for joins.
	StatusWaiting Status = "waiting"
	// StatusPayment indicates the lobby is full and collecting stakes.
	StatusPayment Status = "payment"
	// StatusReady indicates all stakes are in and ready flags are collected.
	StatusReady Status = "ready"
	// StatusInGame indicates rounds are being played.
	StatusInGame Status = "in-game"
	// StatusFinished indicates the game concluded and the pot was settled.
	StatusFinished Status = "finished"
)

// Capacity and round-count clamps applied at lobby creation.
const (
	MinCapacity = 2
	MaxCapacity = 4
	MinRounds   = 1
	MaxRounds   = 10
)

// Participant is one seated wallet identity in a lobby.
type Participant struct {
	WalletID string
	Nickname string
	Ready    bool
	Paid     bool
}

// Lobby holds the authoritative state for one game lobby. It is owned
// exclusively by the match handler driving it; nothing here is safe for
// concurrent use.
type Lobby struct {
	ID          string
	Name        string
	Tier        string
	BetPerRound float64
	Capacity    int
	TotalRounds int
	Status      Status

	// Participants in join order; join order fixes turn order.
	Participants []*Participant

	// Game exists only while Status is in-game or finished.
	Game *GameState
}

// Score is one participant's scoreboard entry.
type Score struct {
	Points     int
	AwardedPot float64
}

// RoundResult records a resolved round. Append-only, never mutated.
type RoundResult struct {
	Round int
	// Dice holds each participant's dice at round end.
	Dice map[string][3]int
	// WinnerID is empty when the round produced no winner.
	WinnerID      string
	PointsAwarded int
}

// SuddenDeath tracks the overtime episode entered on a points tie.
type SuddenDeath struct {
	Active        bool
	OvertimeRound int
	TiedWallets   []string
}

// GameState is the per-game state machine payload.
type GameState struct {
	// CurrentRound is 1-based and may exceed TotalRounds during ties and
	// sudden death.
	CurrentRound int
	// CurrentTurn indexes Lobby.Participants.
	CurrentTurn int
	// RoundRolls maps wallet id -> recorded roll, cleared every round.
	RoundRolls   map[string]Roll
	RoundHistory []RoundResult
	Scoreboard   map[string]*Score
	SuddenDeath  *SuddenDeath

	// Pot is fixed at game start from the full membership; later leaves and
	// sudden-death rounds do not change it.
	Pot float64

	// NextRoundPending is set while the next round waits on the pacing delay.
	NextRoundPending bool
}

// NewGameState initializes round 1 with a zeroed scoreboard.
func NewGameState(participants []*Participant) *GameState {
	scoreboard := make(map[string]*Score, len(participants))
	for _, p := range participants {
		scoreboard[p.WalletID] = &Score{}
	}
	return &GameState{
		CurrentRound: 1,
		RoundRolls:   make(map[string]Roll),
		Scoreboard:   scoreboard,
	}
}

// Participant returns the seated participant for a wallet id, or nil.
func (l *Lobby) Participant(walletID string) *Participant {
	for _, p := range l.Participants {
		if p.WalletID == walletID {
			return p
		}
	}
	return nil
}

// ParticipantIndex returns the seat index for a wallet id, or -1.
func (l *Lobby) ParticipantIndex(walletID string) int {
	for i, p := range l.Participants {
		if p.WalletID == walletID {
			return i
		}
	}
	return -1
}

// Remove drops a participant, preserving join order of the rest.
// Returns true when the wallet was seated.
func (l *Lobby) Remove(walletID string) bool {
	for i, p := range l.Participants {
		if p.WalletID == walletID {
			l.Participants = append(l.Participants[:i], l.Participants[i+1:]...)
			return true
		}
	}
	return false
}

// IsFull reports whether membership reached capacity.
func (l *Lobby) IsFull() bool {
	return len(l.Participants) >= l.Capacity
}

// AllPaid reports whether every participant confirmed payment.
func (l *Lobby) AllPaid() bool {
	for _, p := range l.Participants {
		if !p.Paid {
			return false
		}
	}
	return len(l.Participants) > 0
}

// AllReady reports whether every participant is both paid and ready.
func (l *Lobby) AllReady() bool {
	for _, p := range l.Participants {
		if !p.Paid || !p.Ready {
			return false
		}
	}
	return len(l.Participants) > 0
}

// StakePerParticipant is the up-front amount each participant owes:
// per-round bet times the configured round count.
func (l *Lobby) StakePerParticipant() float64 {
	return l.BetPerRound * float64(l.TotalRounds)
}

// Pot is the total prize paid to the overall winner. Sudden-death rounds
// beyond the configured total do not grow it.
func (l *Lobby) Pot() float64 {
	return l.BetPerRound * float64(len(l.Participants)) * float64(l.TotalRounds)
}

// DetermineRoundWinner picks the top-ranked roll of a completed round.
// Returns the winner's wallet id, or tied=true when every roll is
// indeterminate or the top rank is shared.
func DetermineRoundWinner(rolls map[string]Roll) (winnerID string, tied bool) {
	best := ""
	bestShared := false
	for walletID, roll := range rolls {
		if roll.Outcome.Kind == OutcomeIndeterminate {
			continue
		}
		if best == "" {
			best = walletID
			continue
		}
		switch c := Compare(roll.Outcome, rolls[best].Outcome); {
		case c > 0:
			best = walletID
			bestShared = false
		case c == 0:
			bestShared = true
		}
	}
	if best == "" || bestShared {
		return "", true
	}
	return best, false
}
