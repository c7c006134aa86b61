package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"math"
	"strconv"

	"ceelo/internal/app"
	"ceelo/internal/bot"
	"ceelo/internal/config"
	"ceelo/internal/domain"
	"ceelo/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// finishedLingerTicks keeps a finished match alive long enough for clients
// to render the result before the handler shuts down.
const finishedLingerTicks = 10

// MatchState holds the authoritative runtime state for one lobby. Nakama
// serializes all handler callbacks per match, so no locking is needed.
type MatchState struct {
	Lobby     *domain.Lobby               `json:"-"`
	Presences map[string]runtime.Presence `json:"-"`
	App       *app.Service                `json:"-"`
	Tick      int64                       `json:"tick"`

	// NextRoundTick schedules the start of a pending round; 0 when idle.
	NextRoundTick int64 `json:"next_round_tick"`
	// TurnDeadlineTick auto-rolls a stalled turn; 0 when the timeout is off.
	TurnDeadlineTick int64 `json:"turn_deadline_tick"`
	// FinishedTick records when the game ended so the match can linger.
	FinishedTick int64 `json:"finished_tick"`

	BotsEnabled       bool                  `json:"bots_enabled"`
	BotMinDelay       int                   `json:"bot_min_delay"`
	BotMaxDelay       int                   `json:"bot_max_delay"`
	BotAutoFillDelay  int                   `json:"bot_auto_fill_delay"`
	BotWaitUntil      int64                 `json:"bot_wait_until"`
	LastSoloHumanTick int64                 `json:"last_solo_human_tick"`
	Bots              map[string]*bot.Agent `json:"-"`

	Payments ports.PaymentVerifier  `json:"-"`
	Payouts  ports.PayoutService    `json:"-"`
	Activity ports.ActivityRecorder `json:"-"`
}

func (ms *MatchState) humanCount() int {
	count := 0
	for _, p := range ms.Lobby.Participants {
		if !bot.IsBot(p.WalletID) {
			count++
		}
	}
	return count
}

func (ms *MatchState) botParticipant() *domain.Participant {
	for _, p := range ms.Lobby.Participants {
		if bot.IsBot(p.WalletID) {
			return p
		}
	}
	return nil
}

// Client message payloads.

type confirmPaymentRequest struct {
	Proof  string  `json:"proof"`
	Amount float64 `json:"amount"`
}

type setReadyRequest struct {
	Ready bool `json:"ready"`
}

func newMatchHandler() *matchHandler {
	return &matchHandler{}
}

type matchHandler struct{}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	if err := bot.LoadIdentities("data/bot_identities.json"); err != nil {
		logger.Warn("MatchInit: Could not load bot identities: %v", err)
	}
	if err := config.LoadGameConfig("data/game_config.json"); err != nil {
		logger.Warn("MatchInit: Could not load game config: %v", err)
	}

	matchID, _ := ctx.Value(runtime.RUNTIME_CTX_MATCH_ID).(string)
	name := paramString(params, "name", "Cee-Lo")
	tier := paramString(params, "tier", "")
	if !config.KnownTier(tier) {
		tier = "low"
	}
	capacity := paramInt(params, "capacity", domain.MaxCapacity)
	rounds := paramInt(params, "rounds", 3)

	svc := app.NewService(nil, config.GetRules())
	state := &MatchState{
		Lobby:     svc.NewLobby(matchID, name, tier, config.GetBetPerRound(tier), capacity, rounds),
		Presences: make(map[string]runtime.Presence),
		App:       svc,
		Bots:      make(map[string]*bot.Agent),
		Payments:  NewNakamaWalletAdapter(nk),
		Payouts:   NewNakamaWalletAdapter(nk),
		Activity:  NewNakamaActivityAdapter(nk),
	}

	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	if val, ok := env["ceelo_bots_enabled"]; ok {
		state.BotsEnabled = val == "true"
	}
	if val, ok := env["ceelo_bot_min_delay_sec"]; ok {
		if i, err := strconv.Atoi(val); err == nil {
			state.BotMinDelay = i
		}
	}
	if val, ok := env["ceelo_bot_max_delay_sec"]; ok {
		if i, err := strconv.Atoi(val); err == nil {
			state.BotMaxDelay = i
		}
	}

	if state.BotMinDelay == 0 {
		state.BotMinDelay = 1
	}
	if state.BotMaxDelay == 0 {
		state.BotMaxDelay = 3
	}
	state.BotAutoFillDelay = 5
	if c := config.GetGameConfig(); c != nil && c.BotAutoFillDelaySeconds > 0 {
		state.BotAutoFillDelay = c.BotAutoFillDelaySeconds
	}

	label, err := buildLabel(state.Lobby)
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	tickRate := 1
	return state, tickRate, label
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}
	l := matchState.Lobby

	// Reconnects are always allowed.
	if l.Participant(presence.GetUserId()) != nil {
		return state, true, ""
	}
	// A full lobby sits in the payment phase; a seated bot there yields
	// its seat to the arriving human in MatchJoin.
	if l.Status == domain.StatusPayment && matchState.botParticipant() != nil {
		return state, true, ""
	}
	if l.Status != domain.StatusWaiting {
		return state, false, app.ErrLobbyNotAcceptingPlayers.Error()
	}

	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}
	l := matchState.Lobby

	for _, p := range presences {
		matchState.Presences[p.GetUserId()] = p

		if l.Participant(p.GetUserId()) != nil {
			// Reconnect: resend the snapshot to the returning client only.
			mh.broadcastEvent(ctx, matchState, dispatcher, logger, app.Event{
				Kind:       app.EventLobbyState,
				Payload:    app.LobbyStatePayload{},
				Recipients: []string{p.GetUserId()},
			})
			continue
		}

		// A seated bot yields to an arriving human while stakes are being
		// collected. Eviction rolls the lobby back to waiting, reopening
		// the seat; bot stakes never touched a wallet, so nothing refunds.
		if l.Status == domain.StatusPayment {
			if b := matchState.botParticipant(); b != nil {
				logger.Info("MatchJoin: Replacing bot %s with human %s", b.WalletID, p.GetUserId())
				delete(matchState.Bots, b.WalletID)
				events, err := matchState.App.Leave(l, b.WalletID)
				if err != nil {
					logger.Error("MatchJoin: Failed to evict bot %s: %v", b.WalletID, err)
				} else {
					mh.dispatchAll(ctx, matchState, dispatcher, logger, events)
				}
			}
		}

		events, err := matchState.App.Join(l, p.GetUserId(), p.GetUsername())
		if err != nil {
			logger.Warn("MatchJoin: User %s could not be seated: %v", p.GetUserId(), err)
			continue
		}
		mh.dispatchAll(ctx, matchState, dispatcher, logger, events)
	}

	return matchState
}

// MatchLeave is called when one or more players leave or disconnect.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}
	l := matchState.Lobby

	for _, p := range presences {
		delete(matchState.Presences, p.GetUserId())

		if l.Participant(p.GetUserId()) == nil {
			continue
		}
		events, err := matchState.App.Leave(l, p.GetUserId())
		if err != nil {
			logger.Warn("MatchLeave: User %s could not be removed: %v", p.GetUserId(), err)
			continue
		}
		mh.dispatchAll(ctx, matchState, dispatcher, logger, events)
	}

	if len(l.Participants) == 0 {
		logger.Info("MatchLeave: Lobby %s is empty, terminating.", l.ID)
		return nil
	}
	if matchState.humanCount() == 0 {
		logger.Info("MatchLeave: Lobby %s has no humans left, terminating.", l.ID)
		return nil
	}

	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}
	matchState.Tick = tick

	if matchState.Lobby.Status == domain.StatusFinished {
		if matchState.FinishedTick > 0 && tick-matchState.FinishedTick >= finishedLingerTicks {
			return nil
		}
	}

	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpConfirmPayment:
			mh.handleConfirmPayment(ctx, matchState, dispatcher, logger, msg)
		case OpSetReady:
			mh.handleSetReady(ctx, matchState, dispatcher, logger, msg)
		case OpSubmitRoll:
			mh.handleSubmitRoll(ctx, matchState, dispatcher, logger, msg)
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	// Begin a scheduled round once the pacing delay elapsed.
	if matchState.NextRoundTick > 0 && tick >= matchState.NextRoundTick {
		matchState.NextRoundTick = 0
		events, err := matchState.App.BeginNextRound(matchState.Lobby)
		if err != nil {
			logger.Warn("MatchLoop: Could not begin scheduled round: %v", err)
		} else {
			mh.dispatchAll(ctx, matchState, dispatcher, logger, events)
		}
	}

	mh.processTurnTimeout(ctx, matchState, dispatcher, logger)

	if matchState.BotsEnabled {
		mh.processBots(ctx, matchState, dispatcher, logger)
	}

	return matchState
}

// processTurnTimeout force-rolls the current participant when the
// configured turn duration runs out.
func (mh *matchHandler) processTurnTimeout(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	l := state.Lobby
	if l.Status != domain.StatusInGame || l.Game == nil || l.Game.NextRoundPending {
		return
	}
	if state.TurnDeadlineTick == 0 || state.Tick < state.TurnDeadlineTick {
		return
	}

	state.TurnDeadlineTick = 0
	walletID := l.Participants[l.Game.CurrentTurn].WalletID
	logger.Info("MatchLoop: Turn timeout, auto-rolling for %s", walletID)

	events, err := state.App.SubmitRoll(l, walletID, state.App.RandomDice())
	if err != nil {
		logger.Warn("MatchLoop: Auto-roll for %s failed: %v", walletID, err)
		return
	}
	mh.dispatchAll(ctx, state, dispatcher, logger, events)
}

func (mh *matchHandler) handleConfirmPayment(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	l := state.Lobby

	var req confirmPaymentRequest
	if err := json.Unmarshal(msg.GetData(), &req); err != nil {
		logger.Warn("handleConfirmPayment: Invalid payload from %s: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, app.ErrInvalidPayload)
		return
	}

	// Cheap pre-checks before touching the wallet, so a rejected request
	// never needs a refund.
	if l.Status != domain.StatusPayment {
		mh.sendError(state, dispatcher, logger, senderID, app.ErrWrongPhase)
		return
	}
	p := l.Participant(senderID)
	if p == nil {
		mh.sendError(state, dispatcher, logger, senderID, app.ErrUnknownParticipant)
		return
	}
	if p.Paid {
		return
	}
	if math.Abs(req.Amount-l.StakePerParticipant()) > 1e-6 {
		mh.sendError(state, dispatcher, logger, senderID, app.ErrAmountMismatch)
		return
	}

	accepted, err := state.Payments.Accept(ctx, senderID, req.Proof, req.Amount)
	if err != nil {
		logger.Error("handleConfirmPayment: Verifier error for %s: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, app.ErrAmountMismatch)
		return
	}
	if !accepted {
		logger.Warn("handleConfirmPayment: Payment rejected for %s", senderID)
		mh.sendError(state, dispatcher, logger, senderID, app.ErrAmountMismatch)
		return
	}

	events, err := state.App.ConfirmPayment(l, senderID, req.Amount)
	if err != nil {
		// The stake was already escrowed; return it before reporting.
		if _, refundErr := state.Payouts.Transfer(ctx, senderID, req.Amount, map[string]interface{}{
			"reason":   "stake_refund",
			"match_id": l.ID,
		}); refundErr != nil {
			logger.Error("handleConfirmPayment: Refund for %s failed: %v", senderID, refundErr)
		}
		mh.sendError(state, dispatcher, logger, senderID, err)
		return
	}
	mh.dispatchAll(ctx, state, dispatcher, logger, events)
}

func (mh *matchHandler) handleSetReady(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()

	var req setReadyRequest
	if err := json.Unmarshal(msg.GetData(), &req); err != nil {
		logger.Warn("handleSetReady: Invalid payload from %s: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, app.ErrInvalidPayload)
		return
	}

	events, err := state.App.SetReady(state.Lobby, senderID, req.Ready)
	if err != nil {
		mh.sendError(state, dispatcher, logger, senderID, err)
		return
	}
	mh.dispatchAll(ctx, state, dispatcher, logger, events)
}

func (mh *matchHandler) handleSubmitRoll(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()

	// The roll itself is server-generated; the client only requests it.
	events, err := state.App.SubmitRoll(state.Lobby, senderID, state.App.RandomDice())
	if err != nil {
		mh.sendError(state, dispatcher, logger, senderID, err)
		return
	}
	mh.dispatchAll(ctx, state, dispatcher, logger, events)
}

func (mh *matchHandler) processBots(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	l := state.Lobby

	// 1. Auto-fill the lobby when a solo human has been waiting.
	if l.Status == domain.StatusWaiting {
		if state.humanCount() == 1 && !l.IsFull() {
			if state.LastSoloHumanTick == 0 {
				state.LastSoloHumanTick = state.Tick
				logger.Debug("processBots: Solo human detected, starting auto-fill timer.")
			}
			if state.Tick-state.LastSoloHumanTick >= int64(state.BotAutoFillDelay) {
				state.LastSoloHumanTick = 0
				for i := len(l.Participants); i < l.Capacity; i++ {
					identity := bot.GetBotIdentity(i)
					agent, err := bot.NewAgent(identity.UserID)
					if err != nil {
						logger.Error("processBots: Failed to create agent for %s: %v", identity.UserID, err)
						continue
					}
					events, err := state.App.Join(l, identity.UserID, identity.Username)
					if err != nil {
						logger.Warn("processBots: Bot %s could not be seated: %v", identity.UserID, err)
						continue
					}
					state.Bots[identity.UserID] = agent
					logger.Info("processBots: Added bot %s (%s)", identity.Username, identity.UserID)
					mh.dispatchAll(ctx, state, dispatcher, logger, events)
				}
			}
		} else {
			state.LastSoloHumanTick = 0
		}
	}

	// 2. Bots pay and ready up without delay.
	if l.Status == domain.StatusPayment {
		stake := l.StakePerParticipant()
		for _, p := range l.Participants {
			if bot.IsBot(p.WalletID) && !p.Paid {
				events, err := state.App.ConfirmPayment(l, p.WalletID, stake)
				if err != nil {
					logger.Warn("processBots: Bot %s payment failed: %v", p.WalletID, err)
					continue
				}
				mh.dispatchAll(ctx, state, dispatcher, logger, events)
			}
		}
	}
	if l.Status == domain.StatusReady {
		for _, p := range l.Participants {
			if bot.IsBot(p.WalletID) && !p.Ready {
				events, err := state.App.SetReady(l, p.WalletID, true)
				if err != nil {
					logger.Warn("processBots: Bot %s ready failed: %v", p.WalletID, err)
					continue
				}
				mh.dispatchAll(ctx, state, dispatcher, logger, events)
			}
		}
	}

	// 3. Bot turns roll after a human-ish delay.
	if l.Status == domain.StatusInGame && l.Game != nil && !l.Game.NextRoundPending {
		current := l.Participants[l.Game.CurrentTurn].WalletID
		if !bot.IsBot(current) {
			state.BotWaitUntil = 0
			return
		}

		agent, exists := state.Bots[current]
		if !exists {
			var err error
			agent, err = bot.NewAgent(current)
			if err != nil {
				logger.Error("processBots: Failed to create fallback agent: %v", err)
				return
			}
			state.Bots[current] = agent
		}

		if state.BotWaitUntil == 0 {
			delay := agent.ActDelay(state.BotMinDelay, state.BotMaxDelay)
			state.BotWaitUntil = state.Tick + int64(delay)
			logger.Debug("processBots: Bot %s will roll at tick %d (current %d)", current, state.BotWaitUntil, state.Tick)
			return
		}
		if state.Tick < state.BotWaitUntil {
			return
		}
		state.BotWaitUntil = 0

		events, err := state.App.SubmitRoll(l, current, agent.Roll())
		if err != nil {
			logger.Warn("processBots: Bot %s roll failed: %v", current, err)
			return
		}
		mh.dispatchAll(ctx, state, dispatcher, logger, events)
	}
}

// dispatchAll broadcasts engine events and keeps the tick timers in sync
// with the resulting state.
func (mh *matchHandler) dispatchAll(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, events []app.Event) {
	for _, ev := range events {
		mh.broadcastEvent(ctx, state, dispatcher, logger, ev)

		switch ev.Kind {
		case app.EventRoundStarted:
			state.resetTurnDeadline()
		case app.EventRollSubmitted:
			state.resetTurnDeadline()
		case app.EventRoundEnded, app.EventRoundTied, app.EventSuddenDeath:
			state.TurnDeadlineTick = 0
			if g := state.Lobby.Game; g != nil && g.NextRoundPending {
				state.NextRoundTick = state.Tick + int64(config.GetRoundDelaySeconds())
			}
		case app.EventGameEnded:
			state.NextRoundTick = 0
			state.TurnDeadlineTick = 0
			state.FinishedTick = state.Tick
		}
	}
}

func (ms *MatchState) resetTurnDeadline() {
	duration := config.GetTurnDurationSeconds()
	if duration <= 0 {
		ms.TurnDeadlineTick = 0
		return
	}
	ms.TurnDeadlineTick = ms.Tick + int64(duration)
}

// broadcastEvent converts an engine event to its wire form and fans it out.
// The terminal event also settles the pot and records the win.
func (mh *matchHandler) broadcastEvent(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev app.Event) {
	var opCode int64
	var payload interface{}
	updateLabel := false

	switch ev.Kind {
	case app.EventLobbyState:
		opCode = OpLobbyState
		payload = toLobbyStateWire(state.Lobby, state.Presences)
		updateLabel = true
	case app.EventGameStarted:
		opCode = OpGameStarted
		p := ev.Payload.(app.GameStartedPayload)
		payload = gameStartedWire{TotalRounds: p.TotalRounds, Pot: p.Pot}
		updateLabel = true
	case app.EventRoundStarted:
		opCode = OpRoundStarted
		p := ev.Payload.(app.RoundStartedPayload)
		payload = roundStartedWire{Round: p.Round, TurnWalletID: p.TurnWalletID}
	case app.EventRollSubmitted:
		opCode = OpRollSubmitted
		p := ev.Payload.(app.RollSubmittedPayload)
		payload = rollSubmittedWire{
			WalletID:         p.WalletID,
			Dice:             p.Dice,
			Outcome:          toOutcomeWire(p.Outcome),
			NextTurnWalletID: p.NextTurnWalletID,
		}
	case app.EventRoundEnded:
		opCode = OpRoundEnded
		payload = toRoundEndedWire(ev.Payload.(app.RoundEndedPayload))
	case app.EventRoundTied:
		opCode = OpRoundTied
		p := ev.Payload.(app.RoundTiedPayload)
		payload = roundTiedWire{Round: p.Round, NextRound: p.NextRound}
	case app.EventSuddenDeath:
		opCode = OpSuddenDeath
		p := ev.Payload.(app.SuddenDeathPayload)
		payload = suddenDeathWire{TiedWallets: p.TiedWallets, OvertimeRound: p.OvertimeRound}
	case app.EventGameEnded:
		opCode = OpGameEnded
		p := ev.Payload.(app.GameEndedPayload)
		wire := toGameEndedWire(p)
		mh.settlePot(ctx, state, logger, p, &wire)
		payload = wire
		updateLabel = true
	default:
		logger.Warn("Unknown event kind: %v", ev.Kind)
		return
	}

	bytes, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to marshal event %v: %v", ev.Kind, err)
		return
	}

	// Default to broadcast; targeted events with no connected recipient
	// (e.g. bots) must not leak to the rest of the lobby.
	var recipients []runtime.Presence
	if len(ev.Recipients) > 0 {
		for _, uid := range ev.Recipients {
			if p, ok := state.Presences[uid]; ok {
				recipients = append(recipients, p)
			}
		}
		if len(recipients) == 0 {
			return
		}
	}

	dispatcher.BroadcastMessage(opCode, bytes, recipients, nil, true)

	if updateLabel {
		mh.updateLabel(state, dispatcher, logger)
	}
}

// settlePot pays the pot to a human winner and records the win. Neither
// failure rolls back the finished game; the outcome rides on the event.
func (mh *matchHandler) settlePot(ctx context.Context, state *MatchState, logger runtime.Logger, p app.GameEndedPayload, wire *gameEndedWire) {
	winner := p.WinnerWalletID
	if winner == "" || bot.IsBot(winner) {
		return
	}

	if state.Payouts != nil {
		receipt, err := state.Payouts.Transfer(ctx, winner, p.Pot, map[string]interface{}{
			"reason":   "pot_payout",
			"match_id": state.Lobby.ID,
		})
		if err != nil {
			logger.Error("settlePot: Payout to %s failed: %v", winner, err)
			wire.PayoutError = app.ErrPayoutFailed.Error()
		} else {
			wire.PayoutReceipt = receipt
		}
	}

	if state.Activity != nil {
		record := ports.WinRecord{
			LobbyID:      state.Lobby.ID,
			Tier:         state.Lobby.Tier,
			Points:       p.Scoreboard[winner].Points,
			Pot:          p.Pot,
			RoundsPlayed: p.RoundsPlayed,
		}
		if err := state.Activity.RecordWin(ctx, winner, record); err != nil {
			logger.Warn("settlePot: Could not record win for %s: %v", winner, err)
		}
	}
}

// sendError delivers an engine rejection to the initiator only.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, err error) {
	bytes, marshalErr := json.Marshal(errorWire{Code: errorCode(err), Message: err.Error()})
	if marshalErr != nil {
		logger.Error("Failed to marshal error event: %v", marshalErr)
		return
	}

	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("Cannot send error to %s: Presence not found", userID)
		return
	}
	dispatcher.BroadcastMessage(OpError, bytes, []runtime.Presence{presence}, nil, true)
}

func errorCode(err error) int {
	switch err {
	case app.ErrLobbyNotFound:
		return 1
	case app.ErrLobbyNotAcceptingPlayers:
		return 2
	case app.ErrLobbyFull:
		return 3
	case app.ErrAlreadyJoined:
		return 4
	case app.ErrWrongPhase:
		return 5
	case app.ErrAmountMismatch:
		return 6
	case app.ErrNotYourTurn:
		return 7
	case app.ErrGameNotInProgress:
		return 8
	case app.ErrInvalidRoll:
		return 9
	case app.ErrPayoutFailed:
		return 10
	case app.ErrUnknownParticipant:
		return 11
	case app.ErrInvalidPayload:
		return 12
	default:
		return 0
	}
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	label, err := buildLabel(state.Lobby)
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(label); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, reason int) interface{} {
	logger.Debug("MatchTerminate: Match terminated for reason %d", reason)
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}

func paramString(params map[string]interface{}, key, fallback string) string {
	if v, ok := params[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func paramInt(params map[string]interface{}, key string, fallback int) int {
	switch v := params[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
