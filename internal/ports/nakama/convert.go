package nakama

import (
	"encoding/json"

	"ceelo/internal/app"
	"ceelo/internal/bot"
	"ceelo/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

// matchLabel is the JSON label Nakama indexes for lobby discovery.
type matchLabel struct {
	Game   string `json:"game"`
	Name   string `json:"name"`
	Tier   string `json:"tier"`
	Status string `json:"status"`
	Open   int    `json:"open"`
}

func buildLabel(l *domain.Lobby) (string, error) {
	open := 0
	if l.Status == domain.StatusWaiting {
		open = l.Capacity - len(l.Participants)
	}
	label := matchLabel{
		Game:   "ceelo",
		Name:   l.Name,
		Tier:   l.Tier,
		Status: string(l.Status),
		Open:   open,
	}
	bytes, err := json.Marshal(label)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Wire DTOs sent to clients. Field names are the client contract.

type participantWire struct {
	WalletID    string `json:"wallet_id"`
	Nickname    string `json:"nickname"`
	DisplayName string `json:"display_name"`
	Ready       bool   `json:"ready"`
	Paid        bool   `json:"paid"`
	IsBot       bool   `json:"is_bot"`
}

type gameWire struct {
	CurrentRound     int            `json:"current_round"`
	CurrentTurn      string         `json:"current_turn_wallet_id"`
	Pot              float64        `json:"pot"`
	Points           map[string]int `json:"points"`
	SuddenDeath      bool           `json:"sudden_death"`
	OvertimeRound    int            `json:"overtime_round"`
	NextRoundPending bool           `json:"next_round_pending"`
}

type lobbyStateWire struct {
	LobbyID      string            `json:"lobby_id"`
	Name         string            `json:"name"`
	Tier         string            `json:"tier"`
	BetPerRound  float64           `json:"bet_per_round"`
	Capacity     int               `json:"capacity"`
	TotalRounds  int               `json:"total_rounds"`
	Status       string            `json:"status"`
	Participants []participantWire `json:"participants"`
	Game         *gameWire         `json:"game,omitempty"`
}

type outcomeWire struct {
	Kind   string `json:"kind"`
	Point  int    `json:"point,omitempty"`
	Triple int    `json:"triple,omitempty"`
}

type gameStartedWire struct {
	TotalRounds int     `json:"total_rounds"`
	Pot         float64 `json:"pot"`
}

type roundStartedWire struct {
	Round        int    `json:"round"`
	TurnWalletID string `json:"turn_wallet_id"`
}

type rollSubmittedWire struct {
	WalletID         string      `json:"wallet_id"`
	Dice             [3]int      `json:"dice"`
	Outcome          outcomeWire `json:"outcome"`
	NextTurnWalletID string      `json:"next_turn_wallet_id,omitempty"`
}

type roundEndedWire struct {
	Round         int               `json:"round"`
	Dice          map[string][3]int `json:"dice"`
	WinnerID      string            `json:"winner_wallet_id"`
	PointsAwarded int               `json:"points_awarded"`
	Points        map[string]int    `json:"points"`
}

type roundTiedWire struct {
	Round     int `json:"round"`
	NextRound int `json:"next_round"`
}

type suddenDeathWire struct {
	TiedWallets   []string `json:"tied_wallet_ids"`
	OvertimeRound int      `json:"overtime_round"`
}

type scoreWire struct {
	Points     int     `json:"points"`
	AwardedPot float64 `json:"awarded_pot"`
}

type gameEndedWire struct {
	WinnerWalletID string               `json:"winner_wallet_id"`
	Pot            float64              `json:"pot"`
	Scoreboard     map[string]scoreWire `json:"scoreboard"`
	RoundsPlayed   int                  `json:"rounds_played"`
	PayoutReceipt  string               `json:"payout_receipt,omitempty"`
	PayoutError    string               `json:"payout_error,omitempty"`
}

type errorWire struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func toOutcomeWire(o domain.Outcome) outcomeWire {
	return outcomeWire{Kind: string(o.Kind), Point: o.Point, Triple: o.Triple}
}

// toLobbyStateWire builds the full snapshot clients render from. Display
// names come from connected presences and fall back to bot identities.
func toLobbyStateWire(l *domain.Lobby, presences map[string]runtime.Presence) lobbyStateWire {
	participants := make([]participantWire, 0, len(l.Participants))
	for _, p := range l.Participants {
		displayName := p.Nickname
		if pr, ok := presences[p.WalletID]; ok && pr.GetUsername() != "" {
			displayName = pr.GetUsername()
		} else if name := bot.GetBotDisplayName(p.WalletID); name != "" {
			displayName = name
		}
		participants = append(participants, participantWire{
			WalletID:    p.WalletID,
			Nickname:    p.Nickname,
			DisplayName: displayName,
			Ready:       p.Ready,
			Paid:        p.Paid,
			IsBot:       bot.IsBot(p.WalletID),
		})
	}

	wire := lobbyStateWire{
		LobbyID:      l.ID,
		Name:         l.Name,
		Tier:         l.Tier,
		BetPerRound:  l.BetPerRound,
		Capacity:     l.Capacity,
		TotalRounds:  l.TotalRounds,
		Status:       string(l.Status),
		Participants: participants,
	}
	if g := l.Game; g != nil {
		points := make(map[string]int, len(g.Scoreboard))
		for w, sc := range g.Scoreboard {
			points[w] = sc.Points
		}
		turnWallet := ""
		if !g.NextRoundPending && g.CurrentTurn < len(l.Participants) {
			turnWallet = l.Participants[g.CurrentTurn].WalletID
		}
		gw := &gameWire{
			CurrentRound:     g.CurrentRound,
			CurrentTurn:      turnWallet,
			Pot:              g.Pot,
			Points:           points,
			NextRoundPending: g.NextRoundPending,
		}
		if g.SuddenDeath != nil && g.SuddenDeath.Active {
			gw.SuddenDeath = true
			gw.OvertimeRound = g.SuddenDeath.OvertimeRound
		}
		wire.Game = gw
	}
	return wire
}

func toRoundEndedWire(p app.RoundEndedPayload) roundEndedWire {
	return roundEndedWire{
		Round:         p.Result.Round,
		Dice:          p.Result.Dice,
		WinnerID:      p.Result.WinnerID,
		PointsAwarded: p.Result.PointsAwarded,
		Points:        p.Points,
	}
}

func toGameEndedWire(p app.GameEndedPayload) gameEndedWire {
	scoreboard := make(map[string]scoreWire, len(p.Scoreboard))
	for w, sc := range p.Scoreboard {
		scoreboard[w] = scoreWire{Points: sc.Points, AwardedPot: sc.AwardedPot}
	}
	return gameEndedWire{
		WinnerWalletID: p.WinnerWalletID,
		Pot:            p.Pot,
		Scoreboard:     scoreboard,
		RoundsPlayed:   p.RoundsPlayed,
	}
}
