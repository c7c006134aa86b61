package nakama

import (
	"context"
	"fmt"
	"math"

	"ceelo/internal/ports"

	"github.com/google/uuid"
	"github.com/heroiclabs/nakama-common/runtime"
)

const (
	// walletCurrency is the Nakama wallet key holding the stake currency.
	walletCurrency = "chips"
	// microPerUnit converts fractional stake amounts to integer wallet units.
	microPerUnit = 1_000_000
)

// NakamaWalletAdapter implements stake escrow and pot payout on top of
// Nakama's ledgered wallet.
type NakamaWalletAdapter struct {
	nk runtime.NakamaModule
}

// NewNakamaWalletAdapter creates a new wallet adapter.
func NewNakamaWalletAdapter(nk runtime.NakamaModule) *NakamaWalletAdapter {
	return &NakamaWalletAdapter{nk: nk}
}

// Accept debits the stake from the wallet. A failed debit (typically an
// insufficient balance) is a clean rejection, not an infrastructure error.
func (a *NakamaWalletAdapter) Accept(ctx context.Context, walletID, proof string, amount float64) (bool, error) {
	if amount <= 0 {
		return false, nil
	}

	changes := map[string]int64{walletCurrency: -toMicro(amount)}
	metadata := map[string]interface{}{
		"reason": "stake_escrow",
		"proof":  proof,
	}
	if _, _, err := a.nk.WalletUpdate(ctx, walletID, changes, metadata, true); err != nil {
		return false, nil
	}
	return true, nil
}

// Transfer credits the amount to the wallet and returns a receipt id.
func (a *NakamaWalletAdapter) Transfer(ctx context.Context, walletID string, amount float64, metadata map[string]interface{}) (string, error) {
	if amount <= 0 {
		return "", fmt.Errorf("transfer amount must be positive")
	}

	receipt := uuid.NewString()
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	metadata["receipt"] = receipt

	changes := map[string]int64{walletCurrency: toMicro(amount)}
	if _, _, err := a.nk.WalletUpdate(ctx, walletID, changes, metadata, true); err != nil {
		return "", fmt.Errorf("failed to credit wallet for user %s: %w", walletID, err)
	}
	return receipt, nil
}

func toMicro(amount float64) int64 {
	return int64(math.Round(amount * microPerUnit))
}

var (
	_ ports.PaymentVerifier = (*NakamaWalletAdapter)(nil)
	_ ports.PayoutService   = (*NakamaWalletAdapter)(nil)
)
