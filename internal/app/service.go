package app

import (
	"errors"
	"math"
	"math/rand"
	"time"

	"ceelo/internal/domain"
)

// Engine error taxonomy. All are returned synchronously to the caller and
// leave lobby state untouched.
var (
	ErrLobbyNotFound            = errors.New("lobby not found")
	ErrLobbyNotAcceptingPlayers = errors.New("lobby is not accepting players")
	ErrLobbyFull                = errors.New("lobby is full")
	ErrAlreadyJoined            = errors.New("wallet already joined this lobby")
	ErrWrongPhase               = errors.New("operation not allowed in current lobby phase")
	ErrAmountMismatch           = errors.New("paid amount does not match required stake")
	ErrNotYourTurn              = errors.New("not your turn to roll")
	ErrGameNotInProgress        = errors.New("game is not in progress")
	ErrInvalidRoll              = errors.New("invalid roll")
	ErrPayoutFailed             = errors.New("payout failed")
	ErrUnknownParticipant       = errors.New("participant not found in lobby")
	ErrInvalidPayload           = errors.New("invalid message payload")
)

// amountTolerance absorbs floating rounding on stake amounts.
const amountTolerance = 1e-6

// Service contains the Cee-Lo use-cases operating on lobby state. Callers
// must serialize invocations per lobby; the service holds no locks.
type Service struct {
	rng   *rand.Rand
	rules domain.Rules
}

// NewService constructs a Service with the provided rng and classification
// rules. rng may be nil to use a time-seeded default.
func NewService(rng *rand.Rand, rules domain.Rules) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{rng: rng, rules: rules}
}

// NewLobby builds a lobby in the waiting state, clamping capacity and
// round count to their allowed ranges.
func (s *Service) NewLobby(id, name, tier string, betPerRound float64, capacity, totalRounds int) *domain.Lobby {
	return &domain.Lobby{
		ID:          id,
		Name:        name,
		Tier:        tier,
		BetPerRound: betPerRound,
		Capacity:    clamp(capacity, domain.MinCapacity, domain.MaxCapacity),
		TotalRounds: clamp(totalRounds, domain.MinRounds, domain.MaxRounds),
		Status:      domain.StatusWaiting,
	}
}

// Join seats a wallet in the lobby. Reaching capacity advances the lobby
// to the payment phase.
func (s *Service) Join(l *domain.Lobby, walletID, nickname string) ([]Event, error) {
	if l.Status != domain.StatusWaiting {
		return nil, ErrLobbyNotAcceptingPlayers
	}
	if l.IsFull() {
		return nil, ErrLobbyFull
	}
	if l.Participant(walletID) != nil {
		return nil, ErrAlreadyJoined
	}

	l.Participants = append(l.Participants, &domain.Participant{
		WalletID: walletID,
		Nickname: nickname,
	})
	if l.IsFull() {
		l.Status = domain.StatusPayment
	}

	return []Event{{Kind: EventLobbyState, Payload: LobbyStatePayload{}}}, nil
}

// Leave removes a participant. The caller destroys the lobby when the
// membership drops to zero. Leaving during payment/ready rolls the lobby
// back to waiting with the remaining flags intact; leaving mid-game
// forfeits, and a sole remaining participant wins the pot outright.
func (s *Service) Leave(l *domain.Lobby, walletID string) ([]Event, error) {
	idx := l.ParticipantIndex(walletID)
	if idx == -1 {
		return nil, ErrUnknownParticipant
	}
	l.Remove(walletID)

	events := []Event{{Kind: EventLobbyState, Payload: LobbyStatePayload{}}}
	if len(l.Participants) == 0 {
		return events, nil
	}

	switch l.Status {
	case domain.StatusPayment, domain.StatusReady:
		l.Status = domain.StatusWaiting
	case domain.StatusInGame:
		events = append(events, s.removeFromGame(l, walletID, idx)...)
	}

	return events, nil
}

// removeFromGame repairs the turn state after a mid-game departure.
func (s *Service) removeFromGame(l *domain.Lobby, walletID string, seatIdx int) []Event {
	g := l.Game
	delete(g.RoundRolls, walletID)
	delete(g.Scoreboard, walletID)

	if seatIdx < g.CurrentTurn {
		g.CurrentTurn--
	}
	if g.CurrentTurn >= len(l.Participants) {
		g.CurrentTurn = 0
	}

	if len(l.Participants) == 1 {
		return s.finishGame(l, l.Participants[0].WalletID)
	}
	if !g.NextRoundPending && len(g.RoundRolls) >= len(l.Participants) {
		// Everyone still seated has rolled; the departure completed the round.
		return s.resolveRound(l)
	}
	return nil
}

// ConfirmPayment marks a participant's stake as received. The payment
// proof itself is verified by the transport layer before this call; the
// engine only checks phase and amount. Confirming twice is a no-op.
func (s *Service) ConfirmPayment(l *domain.Lobby, walletID string, amount float64) ([]Event, error) {
	if l.Status != domain.StatusPayment {
		return nil, ErrWrongPhase
	}
	p := l.Participant(walletID)
	if p == nil {
		return nil, ErrUnknownParticipant
	}
	if p.Paid {
		return nil, nil
	}
	if math.Abs(amount-l.StakePerParticipant()) > amountTolerance {
		return nil, ErrAmountMismatch
	}

	p.Paid = true
	if l.AllPaid() {
		l.Status = domain.StatusReady
	}

	return []Event{{Kind: EventLobbyState, Payload: LobbyStatePayload{}}}, nil
}

// SetReady toggles a participant's ready flag. Unpaid participants are
// ignored. When everyone is paid and ready the game starts.
func (s *Service) SetReady(l *domain.Lobby, walletID string, ready bool) ([]Event, error) {
	if l.Status != domain.StatusReady {
		return nil, ErrWrongPhase
	}
	p := l.Participant(walletID)
	if p == nil {
		return nil, ErrUnknownParticipant
	}
	if !p.Paid {
		return nil, nil
	}

	p.Ready = ready
	events := []Event{{Kind: EventLobbyState, Payload: LobbyStatePayload{}}}
	if ready && l.AllReady() {
		events = append(events, s.startGame(l)...)
	}
	return events, nil
}

// startGame initializes round 1 with a zeroed scoreboard.
func (s *Service) startGame(l *domain.Lobby) []Event {
	l.Status = domain.StatusInGame
	g := domain.NewGameState(l.Participants)
	g.Pot = l.Pot()
	l.Game = g

	return []Event{
		{Kind: EventGameStarted, Payload: GameStartedPayload{
			TotalRounds: l.TotalRounds,
			Pot:         g.Pot,
		}},
		{Kind: EventRoundStarted, Payload: RoundStartedPayload{
			Round:        1,
			TurnIndex:    0,
			TurnWalletID: l.Participants[0].WalletID,
		}},
	}
}

// SubmitRoll records the current participant's throw and drives the round
// state machine. Rejections mutate nothing.
func (s *Service) SubmitRoll(l *domain.Lobby, walletID string, dice []int) ([]Event, error) {
	if l.Status != domain.StatusInGame || l.Game == nil {
		return nil, ErrGameNotInProgress
	}
	g := l.Game
	idx := l.ParticipantIndex(walletID)
	if idx == -1 {
		return nil, ErrUnknownParticipant
	}
	if g.NextRoundPending || idx != g.CurrentTurn {
		return nil, ErrNotYourTurn
	}
	if _, already := g.RoundRolls[walletID]; already {
		return nil, ErrInvalidRoll
	}
	outcome, err := s.rules.Classify(dice)
	if err != nil {
		return nil, ErrInvalidRoll
	}

	roll := domain.Roll{
		Dice:     [3]int{dice[0], dice[1], dice[2]},
		Outcome:  outcome,
		RolledAt: time.Now().UTC(),
	}
	g.RoundRolls[walletID] = roll

	payload := RollSubmittedPayload{
		WalletID: walletID,
		Dice:     roll.Dice,
		Outcome:  outcome,
	}

	switch outcome.Kind {
	case domain.OutcomeWin:
		// Instant outcome: the round ends without waiting on the rest.
		events := []Event{{Kind: EventRollSubmitted, Payload: payload}}
		return append(events, s.endRound(l, walletID)...), nil
	case domain.OutcomeLose:
		// Instant termination with no winner and no points.
		events := []Event{{Kind: EventRollSubmitted, Payload: payload}}
		return append(events, s.endRound(l, "")...), nil
	}

	g.CurrentTurn = (g.CurrentTurn + 1) % len(l.Participants)
	if len(g.RoundRolls) >= len(l.Participants) {
		events := []Event{{Kind: EventRollSubmitted, Payload: payload}}
		return append(events, s.resolveRound(l)...), nil
	}

	payload.NextTurnWalletID = l.Participants[g.CurrentTurn].WalletID
	return []Event{{Kind: EventRollSubmitted, Payload: payload}}, nil
}

// resolveRound compares the completed round's rolls and either declares a
// tied round or awards the top-ranked participant.
func (s *Service) resolveRound(l *domain.Lobby) []Event {
	g := l.Game
	winner, tied := domain.DetermineRoundWinner(g.RoundRolls)
	if tied {
		events := []Event{{Kind: EventRoundTied, Payload: RoundTiedPayload{
			Round:     g.CurrentRound,
			NextRound: g.CurrentRound + 1,
		}}}
		g.CurrentRound++
		g.NextRoundPending = true
		return events
	}
	return s.endRound(l, winner)
}

// endRound records the round result, awards points, and either schedules
// the next round or moves to end-of-game evaluation.
func (s *Service) endRound(l *domain.Lobby, winnerID string) []Event {
	g := l.Game

	points := 0
	if winnerID != "" {
		points = 1
		if g.RoundRolls[winnerID].Outcome.Jackpot() {
			points = 3
		}
		if sc := g.Scoreboard[winnerID]; sc != nil {
			sc.Points += points
		}
	}

	dice := make(map[string][3]int, len(g.RoundRolls))
	for w, roll := range g.RoundRolls {
		dice[w] = roll.Dice
	}
	result := domain.RoundResult{
		Round:         g.CurrentRound,
		Dice:          dice,
		WinnerID:      winnerID,
		PointsAwarded: points,
	}
	g.RoundHistory = append(g.RoundHistory, result)

	scores := make(map[string]int, len(g.Scoreboard))
	for w, sc := range g.Scoreboard {
		scores[w] = sc.Points
	}
	events := []Event{{Kind: EventRoundEnded, Payload: RoundEndedPayload{
		Result: result,
		Points: scores,
	}}}

	if g.CurrentRound >= l.TotalRounds || (g.SuddenDeath != nil && g.SuddenDeath.Active) {
		return append(events, s.evaluateGame(l)...)
	}

	g.CurrentRound++
	g.NextRoundPending = true
	return events
}

// evaluateGame ranks total points. A unique maximum finishes the game;
// a shared maximum enters or continues sudden death.
func (s *Service) evaluateGame(l *domain.Lobby) []Event {
	g := l.Game

	max := -1
	for _, sc := range g.Scoreboard {
		if sc.Points > max {
			max = sc.Points
		}
	}
	var leaders []string
	for _, p := range l.Participants {
		if sc := g.Scoreboard[p.WalletID]; sc != nil && sc.Points == max {
			leaders = append(leaders, p.WalletID)
		}
	}

	if len(leaders) == 1 {
		return s.finishGame(l, leaders[0])
	}

	if g.SuddenDeath == nil {
		g.SuddenDeath = &domain.SuddenDeath{Active: true}
	}
	g.SuddenDeath.OvertimeRound++
	g.SuddenDeath.TiedWallets = leaders
	g.CurrentRound++
	g.NextRoundPending = true

	return []Event{{Kind: EventSuddenDeath, Payload: SuddenDeathPayload{
		TiedWallets:   leaders,
		OvertimeRound: g.SuddenDeath.OvertimeRound,
	}}}
}

// finishGame marks the lobby finished and emits the terminal event. The
// transport layer performs the payout and attaches its receipt or failure
// before fan-out.
func (s *Service) finishGame(l *domain.Lobby, winnerID string) []Event {
	g := l.Game
	g.NextRoundPending = false
	l.Status = domain.StatusFinished

	if sc := g.Scoreboard[winnerID]; sc != nil {
		sc.AwardedPot = g.Pot
	}

	scoreboard := make(map[string]domain.Score, len(g.Scoreboard))
	for w, sc := range g.Scoreboard {
		scoreboard[w] = *sc
	}

	return []Event{{Kind: EventGameEnded, Payload: GameEndedPayload{
		WinnerWalletID: winnerID,
		Pot:            g.Pot,
		Scoreboard:     scoreboard,
		RoundsPlayed:   len(g.RoundHistory),
	}}}
}

// BeginNextRound starts the scheduled round once the pacing delay elapsed.
func (s *Service) BeginNextRound(l *domain.Lobby) ([]Event, error) {
	if l.Status != domain.StatusInGame || l.Game == nil || !l.Game.NextRoundPending {
		return nil, ErrGameNotInProgress
	}
	g := l.Game
	g.NextRoundPending = false
	g.RoundRolls = make(map[string]domain.Roll)
	g.CurrentTurn = 0

	return []Event{{Kind: EventRoundStarted, Payload: RoundStartedPayload{
		Round:        g.CurrentRound,
		TurnIndex:    0,
		TurnWalletID: l.Participants[0].WalletID,
	}}}, nil
}

// RandomDice produces a server-generated throw for bots and stalled-turn
// auto-rolls.
func (s *Service) RandomDice() []int {
	return []int{s.rng.Intn(6) + 1, s.rng.Intn(6) + 1, s.rng.Intn(6) + 1}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
