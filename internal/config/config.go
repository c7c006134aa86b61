package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"ceelo/internal/domain"
)

// StakeTier fixes the per-round wager for one discrete tier.
type StakeTier struct {
	ID          string  `json:"id"`
	BetPerRound float64 `json:"bet_per_round"`
}

type GameConfig struct {
	DefaultTier string      `json:"default_tier"`
	Tiers       []StakeTier `json:"tiers"`

	// ValidPointMin/Max bound the unmatched die values accepted as a point.
	ValidPointMin int `json:"valid_point_min"`
	ValidPointMax int `json:"valid_point_max"`

	// RoundDelaySeconds paces the gap between rounds. Cosmetic only.
	RoundDelaySeconds int `json:"round_delay_seconds"`
	// TurnDurationSeconds auto-rolls a stalled turn when > 0. 0 disables
	// the timeout entirely.
	TurnDurationSeconds int `json:"turn_duration_seconds"`
	// BotAutoFillDelaySeconds configures how many seconds a solo human waits
	// before open seats are filled with bots.
	BotAutoFillDelaySeconds int `json:"bot_auto_fill_delay_seconds"`
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the game configuration from the given path.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}

		var c GameConfig
		if err := json.Unmarshal(data, &c); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal game config: %w", err)
			return
		}
		cfg = &c
	})
	return loadErr
}

// GetGameConfig returns the global game configuration.
func GetGameConfig() *GameConfig {
	return cfg
}

// GetBetPerRound returns the per-round bet for a tier ID, or the default
// tier's bet if not found.
func GetBetPerRound(tierID string) float64 {
	if cfg == nil {
		return 0.1 // Safe default
	}

	target := tierID
	if target == "" {
		target = cfg.DefaultTier
	}

	for _, tier := range cfg.Tiers {
		if tier.ID == target {
			return tier.BetPerRound
		}
	}

	for _, tier := range cfg.Tiers {
		if tier.ID == cfg.DefaultTier {
			return tier.BetPerRound
		}
	}

	return 0.1
}

// KnownTier reports whether the tier ID exists in the configuration.
func KnownTier(tierID string) bool {
	if cfg == nil {
		return tierID == "low" || tierID == "high"
	}
	for _, tier := range cfg.Tiers {
		if tier.ID == tierID {
			return true
		}
	}
	return false
}

// GetRules returns the classification rules derived from the configured
// point range.
func GetRules() domain.Rules {
	if cfg == nil || cfg.ValidPointMin == 0 || cfg.ValidPointMax == 0 {
		return domain.DefaultRules
	}
	return domain.Rules{PointMin: cfg.ValidPointMin, PointMax: cfg.ValidPointMax}
}

// GetRoundDelaySeconds returns the inter-round pacing delay.
func GetRoundDelaySeconds() int {
	if cfg == nil || cfg.RoundDelaySeconds <= 0 {
		return 3
	}
	return cfg.RoundDelaySeconds
}

// GetTurnDurationSeconds returns the stalled-turn timeout, 0 when disabled.
func GetTurnDurationSeconds() int {
	if cfg == nil {
		return 0
	}
	return cfg.TurnDurationSeconds
}
