package ports

import "context"

// PaymentVerifier evaluates a stake payment proof before the engine marks
// a participant as paid. The engine never inspects proofs itself.
type PaymentVerifier interface {
	// Accept reports whether the proof covers the claimed amount for the
	// given wallet. A false return with nil error is a clean rejection.
	Accept(ctx context.Context, walletID, proof string, amount float64) (bool, error)
}

// PayoutService transfers the pot to the overall winner at game end.
type PayoutService interface {
	// Transfer credits amount (in stake units) to the wallet and returns a
	// settlement signature/receipt id.
	Transfer(ctx context.Context, walletID string, amount float64, metadata map[string]interface{}) (string, error)
}
