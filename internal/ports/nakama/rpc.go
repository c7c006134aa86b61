package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"ceelo/internal/config"

	"github.com/heroiclabs/nakama-common/runtime"
)

type createLobbyRequest struct {
	Name     string `json:"name"`
	Tier     string `json:"tier"`
	Capacity int    `json:"capacity"`
	Rounds   int    `json:"rounds"`
}

type createLobbyResponse struct {
	MatchID string `json:"match_id"`
}

// rpcCreateLobby creates a named lobby match on the requested stake tier.
func rpcCreateLobby(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)

	var req createLobbyRequest
	if payload != "" {
		if err := json.Unmarshal([]byte(payload), &req); err != nil {
			return "", runtime.NewError("Invalid payload", 3) // INVALID_ARGUMENT
		}
	}
	if req.Tier != "" && !config.KnownTier(req.Tier) {
		return "", runtime.NewError("Unknown stake tier", 3)
	}

	params := map[string]interface{}{
		"name":     req.Name,
		"tier":     req.Tier,
		"capacity": req.Capacity,
		"rounds":   req.Rounds,
	}
	matchID, err := nk.MatchCreate(ctx, MatchNameCeeLo, params)
	if err != nil {
		logger.Error("rpcCreateLobby [User:%s]: Failed to create match: %v", userID, err)
		return "", runtime.NewError("Could not create lobby", 13) // INTERNAL
	}

	logger.Info("rpcCreateLobby [User:%s]: Created lobby %s", userID, matchID)
	b, _ := json.Marshal(createLobbyResponse{MatchID: matchID})
	return string(b), nil
}

type listLobbiesRequest struct {
	Tier string `json:"tier"`
}

type lobbyListEntry struct {
	MatchID string `json:"match_id"`
	Name    string `json:"name"`
	Tier    string `json:"tier"`
	Status  string `json:"status"`
	Open    int    `json:"open"`
}

// rpcListLobbies lists joinable lobbies, newest first per Nakama's index,
// optionally filtered by stake tier.
func rpcListLobbies(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	var req listLobbiesRequest
	if payload != "" {
		if err := json.Unmarshal([]byte(payload), &req); err != nil {
			return "", runtime.NewError("Invalid payload", 3)
		}
	}

	query := "+label.game:ceelo +label.status:waiting +label.open:>=1"
	if req.Tier != "" {
		query += fmt.Sprintf(" +label.tier:%s", req.Tier)
	}

	limit := 20
	authoritative := true
	minSize := 0
	maxSize := 4
	matches, err := nk.MatchList(ctx, limit, authoritative, "", &minSize, &maxSize, query)
	if err != nil {
		logger.Error("rpcListLobbies: Failed to list matches: %v", err)
		return "", runtime.NewError("Could not list lobbies", 13)
	}

	entries := make([]lobbyListEntry, 0, len(matches))
	for _, m := range matches {
		var label matchLabel
		if err := json.Unmarshal([]byte(m.GetLabel().GetValue()), &label); err != nil {
			continue
		}
		entries = append(entries, lobbyListEntry{
			MatchID: m.MatchId,
			Name:    label.Name,
			Tier:    label.Tier,
			Status:  label.Status,
			Open:    label.Open,
		})
	}

	b, _ := json.Marshal(entries)
	return string(b), nil
}

// QuickMatchResponse is the payload returned to clients asking for any
// joinable lobby.
type QuickMatchResponse struct {
	MatchID string `json:"match_id"`
	IsNew   bool   `json:"is_new"`
}

func rpcQuickMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	query := "+label.game:ceelo +label.status:waiting +label.open:>=1"

	limit := 1
	authoritative := true
	minSize := 0
	maxSize := 4
	matches, err := nk.MatchList(ctx, limit, authoritative, "", &minSize, &maxSize, query)
	if err != nil {
		logger.Error("rpcQuickMatch: MatchList error: %v", err)
		return "", runtime.NewError("Could not find a lobby", 13)
	}

	if len(matches) > 0 {
		b, _ := json.Marshal(QuickMatchResponse{MatchID: matches[0].MatchId, IsNew: false})
		return string(b), nil
	}

	matchID, err := nk.MatchCreate(ctx, MatchNameCeeLo, map[string]interface{}{})
	if err != nil {
		logger.Error("rpcQuickMatch: MatchCreate error: %v", err)
		return "", runtime.NewError("Could not create a lobby", 13)
	}

	b, _ := json.Marshal(QuickMatchResponse{MatchID: matchID, IsNew: true})
	return string(b), nil
}

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer) error {
	if err := initializer.RegisterRpc(RpcCreateLobby, rpcCreateLobby); err != nil {
		return err
	}
	if err := initializer.RegisterRpc(RpcListLobbies, rpcListLobbies); err != nil {
		return err
	}
	if err := initializer.RegisterRpc(RpcQuickMatch, rpcQuickMatch); err != nil {
		return err
	}
	return initializer.RegisterRpc(RpcVoiceToken, RpcGenerateVoiceToken)
}
