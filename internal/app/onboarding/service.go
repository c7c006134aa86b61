package onboarding

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"ceelo/internal/ports"
)

// defaultWelcomeStake seeds new wallets with enough to cover a few
// low-tier games.
const defaultWelcomeStake = 5.0

// Result captures non-fatal onboarding outcomes.
type Result struct {
	// ProfileUpdateErr is set when the profile update failed but onboarding
	// continued.
	ProfileUpdateErr error
	// WelcomeStakeGranted is false when the grant was skipped or failed.
	WelcomeStakeGranted bool
}

// Service handles post-auth onboarding for new wallet accounts.
type Service struct {
	accounts ports.AccountPort
	payouts  ports.PayoutService
	rng      *rand.Rand
}

// NewService constructs an onboarding service with required ports.
// accounts/payouts must be non-nil; rng may be nil to use a time-seeded
// default.
func NewService(accounts ports.AccountPort, payouts ports.PayoutService, rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{
		accounts: accounts,
		payouts:  payouts,
		rng:      rng,
	}
}

// OnboardNewUser assigns a friendly nickname and seeds the wallet for a
// newly created account. userID is the wallet identity of the new account.
func (s *Service) OnboardNewUser(ctx context.Context, userID string) (Result, error) {
	if s.accounts == nil || s.payouts == nil {
		return Result{}, fmt.Errorf("onboarding service not configured")
	}

	result := Result{}
	nickname := s.generateFriendlyName()
	if err := s.accounts.UpdateProfile(ctx, userID, nickname, nickname); err != nil {
		// Profile updates are best-effort; the wallet grant matters more.
		result.ProfileUpdateErr = err
	}

	if _, err := s.payouts.Transfer(ctx, userID, defaultWelcomeStake, map[string]interface{}{
		"reason": "welcome_stake",
	}); err != nil {
		return result, fmt.Errorf("failed to grant welcome stake: %w", err)
	}
	result.WelcomeStakeGranted = true

	return result, nil
}

func (s *Service) generateFriendlyName() string {
	adjectives := []string{"Lucky", "Shiny", "Brave", "Clever", "Swift", "Calm", "Mighty", "Witty", "Sly", "Wild"}
	nouns := []string{"Roller", "Tiger", "Eagle", "Dolphin", "Wolf", "Otter", "Falcon", "Bear", "Fox", "Lion"}

	adj := adjectives[s.rng.Intn(len(adjectives))]
	noun := nouns[s.rng.Intn(len(nouns))]
	num := s.rng.Intn(9000) + 1000

	return fmt.Sprintf("%s%s%d", adj, noun, num)
}
