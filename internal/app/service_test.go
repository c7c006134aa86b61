package app

import (
	"math/rand"
	"testing"

	"ceelo/internal/domain"
)

func newTestService() *Service {
	return NewService(rand.New(rand.NewSource(42)), domain.DefaultRules)
}

// startedLobby builds a lobby with the given wallets paid, ready, and
// in-game.
func startedLobby(t *testing.T, svc *Service, rounds int, wallets ...string) *domain.Lobby {
	t.Helper()

	l := svc.NewLobby("match-1", "back alley", "low", 0.1, len(wallets), rounds)
	for _, w := range wallets {
		if _, err := svc.Join(l, w, ""); err != nil {
			t.Fatalf("join %s error: %v", w, err)
		}
	}
	if l.Status != domain.StatusPayment {
		t.Fatalf("status = %s after filling, want payment", l.Status)
	}
	stake := l.StakePerParticipant()
	for _, w := range wallets {
		if _, err := svc.ConfirmPayment(l, w, stake); err != nil {
			t.Fatalf("confirm payment %s error: %v", w, err)
		}
	}
	if l.Status != domain.StatusReady {
		t.Fatalf("status = %s after payments, want ready", l.Status)
	}
	for _, w := range wallets {
		if _, err := svc.SetReady(l, w, true); err != nil {
			t.Fatalf("set ready %s error: %v", w, err)
		}
	}
	if l.Status != domain.StatusInGame {
		t.Fatalf("status = %s after readiness, want in-game", l.Status)
	}
	return l
}

func beginPendingRound(t *testing.T, svc *Service, l *domain.Lobby) {
	t.Helper()
	if !l.Game.NextRoundPending {
		t.Fatalf("expected a pending round before round %d", l.Game.CurrentRound)
	}
	if _, err := svc.BeginNextRound(l); err != nil {
		t.Fatalf("begin next round error: %v", err)
	}
}

func hasEvent(events []Event, kind EventKind) bool {
	for _, ev := range events {
		if ev.Kind == kind {
			return true
		}
	}
	return false
}

func TestNewLobbyClampsConfig(t *testing.T) {
	svc := newTestService()

	tests := []struct {
		name         string
		capacity     int
		rounds       int
		wantCapacity int
		wantRounds   int
	}{
		{name: "InRange", capacity: 3, rounds: 5, wantCapacity: 3, wantRounds: 5},
		{name: "BelowMin", capacity: 1, rounds: 0, wantCapacity: 2, wantRounds: 1},
		{name: "AboveMax", capacity: 9, rounds: 50, wantCapacity: 4, wantRounds: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := svc.NewLobby("m", "n", "low", 0.1, tt.capacity, tt.rounds)
			if l.Capacity != tt.wantCapacity {
				t.Fatalf("capacity = %d, want %d", l.Capacity, tt.wantCapacity)
			}
			if l.TotalRounds != tt.wantRounds {
				t.Fatalf("rounds = %d, want %d", l.TotalRounds, tt.wantRounds)
			}
			if l.Status != domain.StatusWaiting {
				t.Fatalf("status = %s, want waiting", l.Status)
			}
		})
	}
}

func TestJoinRules(t *testing.T) {
	svc := newTestService()
	l := svc.NewLobby("m", "n", "low", 0.1, 4, 3)

	for _, w := range []string{"w1", "w2", "w3", "w4"} {
		if _, err := svc.Join(l, w, ""); err != nil {
			t.Fatalf("join %s error: %v", w, err)
		}
	}
	if l.Status != domain.StatusPayment {
		t.Fatalf("status = %s at capacity, want payment", l.Status)
	}

	// A fifth join never succeeds. The lobby already left waiting, and even
	// against a waiting lobby the capacity check rejects it.
	if _, err := svc.Join(l, "w5", ""); err != ErrLobbyNotAcceptingPlayers {
		t.Fatalf("join after capacity err = %v, want ErrLobbyNotAcceptingPlayers", err)
	}
	l.Status = domain.StatusWaiting
	if _, err := svc.Join(l, "w5", ""); err != ErrLobbyFull {
		t.Fatalf("join full waiting lobby err = %v, want ErrLobbyFull", err)
	}

	l2 := svc.NewLobby("m2", "n", "low", 0.1, 4, 3)
	if _, err := svc.Join(l2, "w1", ""); err != nil {
		t.Fatalf("join error: %v", err)
	}
	if _, err := svc.Join(l2, "w1", ""); err != ErrAlreadyJoined {
		t.Fatalf("duplicate join err = %v, want ErrAlreadyJoined", err)
	}
}

func TestConfirmPaymentRules(t *testing.T) {
	svc := newTestService()
	l := svc.NewLobby("m", "n", "low", 0.1, 2, 3)
	svc.Join(l, "w1", "")

	if _, err := svc.ConfirmPayment(l, "w1", 0.3); err != ErrWrongPhase {
		t.Fatalf("confirm in waiting err = %v, want ErrWrongPhase", err)
	}

	svc.Join(l, "w2", "")

	if _, err := svc.ConfirmPayment(l, "w1", 0.2); err != ErrAmountMismatch {
		t.Fatalf("wrong amount err = %v, want ErrAmountMismatch", err)
	}
	if l.Participant("w1").Paid {
		t.Fatal("rejected payment must not mutate the paid flag")
	}

	// Exact stake is bet 0.1 x 3 rounds; float noise within tolerance passes.
	if _, err := svc.ConfirmPayment(l, "w1", 0.1+0.1+0.1); err != nil {
		t.Fatalf("confirm with rounding noise error: %v", err)
	}
	if _, err := svc.ConfirmPayment(l, "w1", 0.3); err != nil {
		t.Fatalf("repeat confirm should be a no-op, got: %v", err)
	}
	if l.Status != domain.StatusPayment {
		t.Fatalf("status = %s with one unpaid, want payment", l.Status)
	}

	svc.ConfirmPayment(l, "w2", 0.3)
	if l.Status != domain.StatusReady {
		t.Fatalf("status = %s with all paid, want ready", l.Status)
	}
}

func TestSetReadyRules(t *testing.T) {
	svc := newTestService()
	l := svc.NewLobby("m", "n", "low", 0.1, 2, 3)
	svc.Join(l, "w1", "")

	if _, err := svc.SetReady(l, "w1", true); err != ErrWrongPhase {
		t.Fatalf("ready in waiting err = %v, want ErrWrongPhase", err)
	}

	svc.Join(l, "w2", "")
	svc.ConfirmPayment(l, "w1", 0.3)
	svc.ConfirmPayment(l, "w2", 0.3)

	// Unpaid participants cannot exist in ready phase, but the no-op path
	// still guards the flag.
	l.Participant("w2").Paid = false
	if _, err := svc.SetReady(l, "w2", true); err != nil {
		t.Fatalf("unpaid ready should be a silent no-op, got: %v", err)
	}
	if l.Participant("w2").Ready {
		t.Fatal("unpaid participant must not become ready")
	}
	l.Participant("w2").Paid = true

	svc.SetReady(l, "w1", true)
	if l.Status != domain.StatusReady {
		t.Fatalf("status = %s with one unready, want ready", l.Status)
	}

	events, err := svc.SetReady(l, "w2", true)
	if err != nil {
		t.Fatalf("final ready error: %v", err)
	}
	if l.Status != domain.StatusInGame {
		t.Fatalf("status = %s, want in-game", l.Status)
	}
	if !hasEvent(events, EventGameStarted) || !hasEvent(events, EventRoundStarted) {
		t.Fatal("expected game-started and round-started events")
	}
	if l.Game == nil || l.Game.CurrentRound != 1 || l.Game.CurrentTurn != 0 {
		t.Fatalf("game state = %+v, want round 1 turn 0", l.Game)
	}
	if l.Game.Pot != 0.1*2*3 {
		t.Fatalf("pot = %v, want 0.6", l.Game.Pot)
	}
}

func TestSubmitRollPreconditions(t *testing.T) {
	svc := newTestService()
	l := svc.NewLobby("m", "n", "low", 0.1, 2, 3)
	svc.Join(l, "a", "")

	if _, err := svc.SubmitRoll(l, "a", []int{1, 2, 4}); err != ErrGameNotInProgress {
		t.Fatalf("roll before game err = %v, want ErrGameNotInProgress", err)
	}

	l = startedLobby(t, svc, 3, "a", "b")

	if _, err := svc.SubmitRoll(l, "b", []int{1, 2, 4}); err != ErrNotYourTurn {
		t.Fatalf("out-of-turn roll err = %v, want ErrNotYourTurn", err)
	}
	if _, err := svc.SubmitRoll(l, "missing", []int{1, 2, 4}); err != ErrUnknownParticipant {
		t.Fatalf("unknown roller err = %v, want ErrUnknownParticipant", err)
	}
	if _, err := svc.SubmitRoll(l, "a", []int{0, 2, 4}); err != ErrInvalidRoll {
		t.Fatalf("bad dice err = %v, want ErrInvalidRoll", err)
	}
	if len(l.Game.RoundRolls) != 0 || l.Game.CurrentTurn != 0 {
		t.Fatal("rejected rolls must not mutate round state")
	}
}

// Worked scenario: lobby A/B, low tier (0.1/round), 3 rounds.
func TestFullGameScenario(t *testing.T) {
	svc := newTestService()
	l := startedLobby(t, svc, 3, "a", "b")
	g := l.Game

	// Round 1: A rolls 4-5-6, an instant standard win. B never rolls.
	events, err := svc.SubmitRoll(l, "a", []int{4, 5, 6})
	if err != nil {
		t.Fatalf("round 1 roll error: %v", err)
	}
	if !hasEvent(events, EventRoundEnded) {
		t.Fatal("expected round-ended after instant win")
	}
	if got := g.Scoreboard["a"].Points; got != 1 {
		t.Fatalf("a's points after round 1 = %d, want 1", got)
	}
	if g.CurrentRound != 2 {
		t.Fatalf("round counter = %d, want 2", g.CurrentRound)
	}
	if len(g.RoundHistory) != 1 || g.RoundHistory[0].WinnerID != "a" {
		t.Fatalf("round history = %+v, want round 1 won by a", g.RoundHistory)
	}

	// Round 2: both roll point 5 — tied round, no points, counter to 3.
	beginPendingRound(t, svc, l)
	if _, err := svc.SubmitRoll(l, "a", []int{2, 2, 5}); err != nil {
		t.Fatalf("round 2 a roll error: %v", err)
	}
	events, err = svc.SubmitRoll(l, "b", []int{3, 3, 5})
	if err != nil {
		t.Fatalf("round 2 b roll error: %v", err)
	}
	if !hasEvent(events, EventRoundTied) {
		t.Fatal("expected round-tied event")
	}
	if g.CurrentRound != 3 {
		t.Fatalf("round counter after tie = %d, want 3", g.CurrentRound)
	}
	if len(g.RoundHistory) != 1 {
		t.Fatalf("tied round must not append history, got %d entries", len(g.RoundHistory))
	}
	if g.Scoreboard["a"].Points != 1 || g.Scoreboard["b"].Points != 0 {
		t.Fatal("tied round must not change points")
	}

	// Round 3 replay: A rolls triple ones — jackpot, +3, short-circuit.
	beginPendingRound(t, svc, l)
	events, err = svc.SubmitRoll(l, "a", []int{1, 1, 1})
	if err != nil {
		t.Fatalf("round 3 roll error: %v", err)
	}
	if got := g.Scoreboard["a"].Points; got != 4 {
		t.Fatalf("a's total = %d, want 4", got)
	}
	if !hasEvent(events, EventGameEnded) {
		t.Fatal("expected game-ended after final round")
	}
	if l.Status != domain.StatusFinished {
		t.Fatalf("status = %s, want finished", l.Status)
	}

	var ended GameEndedPayload
	for _, ev := range events {
		if ev.Kind == EventGameEnded {
			ended = ev.Payload.(GameEndedPayload)
		}
	}
	if ended.WinnerWalletID != "a" {
		t.Fatalf("winner = %s, want a", ended.WinnerWalletID)
	}
	if ended.Pot != 0.1*2*3 {
		t.Fatalf("pot = %v, want 0.6", ended.Pot)
	}
	if ended.Scoreboard["a"].AwardedPot != ended.Pot {
		t.Fatalf("awarded pot = %v, want %v", ended.Scoreboard["a"].AwardedPot, ended.Pot)
	}
}

func TestAllIndeterminateRoundIsTied(t *testing.T) {
	svc := newTestService()
	l := startedLobby(t, svc, 3, "a", "b")
	g := l.Game

	if _, err := svc.SubmitRoll(l, "a", []int{1, 3, 5}); err != nil {
		t.Fatalf("a roll error: %v", err)
	}
	events, err := svc.SubmitRoll(l, "b", []int{2, 4, 6})
	if err != nil {
		t.Fatalf("b roll error: %v", err)
	}

	if !hasEvent(events, EventRoundTied) {
		t.Fatal("expected round-tied event")
	}
	if g.CurrentRound != 2 {
		t.Fatalf("round counter = %d, want exactly +1", g.CurrentRound)
	}
	for w, sc := range g.Scoreboard {
		if sc.Points != 0 {
			t.Fatalf("points[%s] = %d, want 0", w, sc.Points)
		}
	}

	beginPendingRound(t, svc, l)
	if len(g.RoundRolls) != 0 {
		t.Fatal("round rolls must be cleared for the replay")
	}
	if g.CurrentTurn != 0 {
		t.Fatalf("replay turn = %d, want 0", g.CurrentTurn)
	}
}

func TestLoseEndsRoundWithNoPoints(t *testing.T) {
	svc := newTestService()
	l := startedLobby(t, svc, 2, "a", "b")
	g := l.Game

	events, err := svc.SubmitRoll(l, "a", []int{1, 2, 3})
	if err != nil {
		t.Fatalf("roll error: %v", err)
	}

	if !hasEvent(events, EventRoundEnded) {
		t.Fatal("lose must end the round immediately")
	}
	if g.Scoreboard["a"].Points != 0 {
		t.Fatalf("losing roller points = %d, want 0", g.Scoreboard["a"].Points)
	}
	if len(g.RoundHistory) != 1 {
		t.Fatalf("history = %d entries, want 1", len(g.RoundHistory))
	}
	result := g.RoundHistory[0]
	if result.WinnerID != "" || result.PointsAwarded != 0 {
		t.Fatalf("result = %+v, want no winner and zero points", result)
	}
	if g.CurrentRound != 2 {
		t.Fatalf("round counter = %d, want 2", g.CurrentRound)
	}
}

func TestSuddenDeathUntilUniqueMaximum(t *testing.T) {
	svc := newTestService()
	l := startedLobby(t, svc, 2, "a", "b")
	g := l.Game

	// Round 1: a wins with point 5 over point 2.
	svc.SubmitRoll(l, "a", []int{2, 2, 5})
	svc.SubmitRoll(l, "b", []int{6, 6, 2})
	beginPendingRound(t, svc, l)

	// Round 2 (final): b wins, leveling the score 1-1.
	svc.SubmitRoll(l, "a", []int{6, 6, 2})
	events, err := svc.SubmitRoll(l, "b", []int{2, 2, 5})
	if err != nil {
		t.Fatalf("round 2 roll error: %v", err)
	}

	if !hasEvent(events, EventSuddenDeath) {
		t.Fatal("expected sudden-death event on a points tie")
	}
	if g.SuddenDeath == nil || !g.SuddenDeath.Active {
		t.Fatal("sudden death must be active")
	}
	if got := g.SuddenDeath.TiedWallets; len(got) != 2 {
		t.Fatalf("tied wallets = %v, want both", got)
	}
	if g.CurrentRound != 3 {
		t.Fatalf("round counter = %d, want 3 (overtime)", g.CurrentRound)
	}
	if l.Status != domain.StatusInGame {
		t.Fatalf("status = %s during sudden death, want in-game", l.Status)
	}

	// Overtime round ties again (all indeterminate) — keep playing.
	beginPendingRound(t, svc, l)
	svc.SubmitRoll(l, "a", []int{1, 3, 5})
	events, _ = svc.SubmitRoll(l, "b", []int{2, 4, 6})
	if !hasEvent(events, EventRoundTied) {
		t.Fatal("expected tied overtime round")
	}
	if g.CurrentRound != 4 {
		t.Fatalf("round counter = %d, want 4", g.CurrentRound)
	}

	// Next overtime round produces a unique maximum and ends the game.
	beginPendingRound(t, svc, l)
	svc.SubmitRoll(l, "a", []int{3, 3, 4})
	events, err = svc.SubmitRoll(l, "b", []int{4, 4, 3})
	if err != nil {
		t.Fatalf("overtime roll error: %v", err)
	}
	if !hasEvent(events, EventGameEnded) {
		t.Fatal("expected game end once the tie broke")
	}
	if l.Status != domain.StatusFinished {
		t.Fatalf("status = %s, want finished", l.Status)
	}

	var ended GameEndedPayload
	for _, ev := range events {
		if ev.Kind == EventGameEnded {
			ended = ev.Payload.(GameEndedPayload)
		}
	}
	if ended.WinnerWalletID != "a" {
		t.Fatalf("winner = %s, want a (point 4 beats point 3)", ended.WinnerWalletID)
	}
	// Overtime rounds never grow the pot.
	if ended.Pot != 0.1*2*2 {
		t.Fatalf("pot = %v, want 0.4", ended.Pot)
	}
}

func TestLeaveRollsBackToWaiting(t *testing.T) {
	svc := newTestService()
	l := svc.NewLobby("m", "n", "low", 0.1, 2, 3)
	svc.Join(l, "w1", "")
	svc.Join(l, "w2", "")
	svc.ConfirmPayment(l, "w1", 0.3)

	if _, err := svc.Leave(l, "w2"); err != nil {
		t.Fatalf("leave error: %v", err)
	}
	if l.Status != domain.StatusWaiting {
		t.Fatalf("status = %s, want waiting after membership loss", l.Status)
	}
	if !l.Participant("w1").Paid {
		t.Fatal("remaining member's paid flag must survive the rollback")
	}

	// The reopened seat accepts a new join.
	if _, err := svc.Join(l, "w3", ""); err != nil {
		t.Fatalf("rejoin error: %v", err)
	}
	if l.Status != domain.StatusPayment {
		t.Fatalf("status = %s after refilling, want payment", l.Status)
	}
}

func TestLeaveLastParticipantEmptiesLobby(t *testing.T) {
	svc := newTestService()
	l := svc.NewLobby("m", "n", "low", 0.1, 2, 3)
	svc.Join(l, "w1", "")

	if _, err := svc.Leave(l, "w1"); err != nil {
		t.Fatalf("leave error: %v", err)
	}
	if len(l.Participants) != 0 {
		t.Fatalf("participants = %d, want 0 (caller deletes the lobby)", len(l.Participants))
	}
	if _, err := svc.Leave(l, "w1"); err != ErrUnknownParticipant {
		t.Fatalf("second leave err = %v, want ErrUnknownParticipant", err)
	}
}

func TestLeaveMidGameForfeitsToRemaining(t *testing.T) {
	svc := newTestService()
	l := startedLobby(t, svc, 3, "a", "b")

	events, err := svc.Leave(l, "a")
	if err != nil {
		t.Fatalf("leave error: %v", err)
	}
	if !hasEvent(events, EventGameEnded) {
		t.Fatal("expected forfeit to end the game")
	}
	if l.Status != domain.StatusFinished {
		t.Fatalf("status = %s, want finished", l.Status)
	}

	var ended GameEndedPayload
	for _, ev := range events {
		if ev.Kind == EventGameEnded {
			ended = ev.Payload.(GameEndedPayload)
		}
	}
	if ended.WinnerWalletID != "b" {
		t.Fatalf("winner = %s, want the remaining participant", ended.WinnerWalletID)
	}
	// The pot was fixed at game start and includes the leaver's stake.
	if ended.Pot != 0.1*2*3 {
		t.Fatalf("pot = %v, want 0.6", ended.Pot)
	}
}

func TestLeaveMidRoundCompletesRound(t *testing.T) {
	svc := newTestService()
	l := startedLobby(t, svc, 3, "a", "b", "c")
	g := l.Game

	svc.SubmitRoll(l, "a", []int{2, 2, 5})
	svc.SubmitRoll(l, "b", []int{1, 3, 5})

	// c leaves while holding the turn; a and b have both rolled, so the
	// departure completes the round and a's point 5 wins it.
	events, err := svc.Leave(l, "c")
	if err != nil {
		t.Fatalf("leave error: %v", err)
	}
	if !hasEvent(events, EventRoundEnded) {
		t.Fatal("expected the round to resolve after the departure")
	}
	if g.Scoreboard["a"].Points != 1 {
		t.Fatalf("a's points = %d, want 1", g.Scoreboard["a"].Points)
	}
	if _, stillScored := g.Scoreboard["c"]; stillScored {
		t.Fatal("departed participant must leave the scoreboard")
	}
}

func TestRollDuringPacingDelayIsRejected(t *testing.T) {
	svc := newTestService()
	l := startedLobby(t, svc, 3, "a", "b")

	svc.SubmitRoll(l, "a", []int{4, 5, 6})
	if !l.Game.NextRoundPending {
		t.Fatal("expected pending round after resolution")
	}
	if _, err := svc.SubmitRoll(l, "a", []int{2, 2, 5}); err != ErrNotYourTurn {
		t.Fatalf("roll during pacing delay err = %v, want ErrNotYourTurn", err)
	}
}
