package nakama

import (
	"context"
	"database/sql"
	"encoding/json"

	"ceelo/internal/app"

	"github.com/heroiclabs/nakama-common/runtime"
)

// RpcGenerateVoiceToken handles the RPC call from the client to mint a
// lobby voice-channel token.
// Payload: {"action": "login" | "join", "channel": "..."}
func RpcGenerateVoiceToken(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userID == "" {
		return "", runtime.NewError("User required", 16) // UNAUTHENTICATED
	}

	var req struct {
		Action  string `json:"action"`
		Channel string `json:"channel"`
	}
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", runtime.NewError("Invalid payload", 3) // INVALID_ARGUMENT
	}

	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	secret := env["ceelo_voice_secret"]
	issuer := env["ceelo_voice_issuer"]
	domain := env["ceelo_voice_domain"]
	if secret == "" || issuer == "" || domain == "" {
		secret = "test-secret"
		issuer = "test-issuer"
		domain = "voice.example.com"
		logger.Warn("Voice credentials missing from env, using test defaults.")
	}

	token, err := app.NewVoiceService(secret, issuer, domain).GenerateToken(userID, req.Action, req.Channel)
	if err != nil {
		logger.Error("Failed to generate voice token: %v", err)
		return "", runtime.NewError("Invalid voice token request", 3)
	}

	resBytes, _ := json.Marshal(map[string]string{"token": token})
	return string(resBytes), nil
}
