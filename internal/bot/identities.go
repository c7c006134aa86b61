package bot

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
)

// botIDPrefix marks bot wallet ids so they never receive payouts.
const botIDPrefix = "bot-"

type BotIdentity struct {
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarIndex int    `json:"avatar_index"`
}

var (
	botIdentities     []BotIdentity
	botUsernameMap    map[string]string
	botDisplayNameMap map[string]string
	loadOnce          sync.Once
	loadErr           error
)

// defaultIdentities backs the loader when no identities file ships with
// the deployment.
var defaultIdentities = []BotIdentity{
	{UserID: "bot-7c1d", Username: "alleycat", DisplayName: "Alley Cat"},
	{UserID: "bot-9a42", Username: "luckylou", DisplayName: "Lucky Lou"},
	{UserID: "bot-e305", Username: "snakeeyes", DisplayName: "Snake Eyes"},
	{UserID: "bot-14f8", Username: "trips", DisplayName: "Trips"},
}

// LoadIdentities loads the bot profiles from the given path, falling back
// to the built-in set when the file is missing.
func LoadIdentities(path string) error {
	loadOnce.Do(func() {
		identities := defaultIdentities
		data, err := os.ReadFile(path)
		if err == nil {
			if err := json.Unmarshal(data, &identities); err != nil {
				loadErr = fmt.Errorf("failed to unmarshal bot identities: %w", err)
				return
			}
		}

		botIdentities = identities
		botUsernameMap = make(map[string]string)
		botDisplayNameMap = make(map[string]string)
		for _, identity := range botIdentities {
			if identity.UserID != "" {
				botUsernameMap[identity.UserID] = identity.Username
				botDisplayNameMap[identity.UserID] = identity.DisplayName
			}
		}
	})
	return loadErr
}

// GetBotIdentity returns the identity for the given seat-ish index,
// wrapping around the available set.
func GetBotIdentity(i int) BotIdentity {
	ensureLoaded()
	return botIdentities[i%len(botIdentities)]
}

// GetBotUsername returns the bot's username or "" for non-bot ids.
func GetBotUsername(userID string) string {
	ensureLoaded()
	return botUsernameMap[userID]
}

// GetBotDisplayName returns the bot's display name or "" for non-bot ids.
func GetBotDisplayName(userID string) string {
	ensureLoaded()
	return botDisplayNameMap[userID]
}

// IsBot reports whether the given user id represents a bot seat.
func IsBot(userID string) bool {
	return strings.HasPrefix(userID, botIDPrefix)
}

func ensureLoaded() {
	_ = LoadIdentities("")
}
