package nakama

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ceelo/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

const (
	activityCollection = "activity"
	activityWinKey     = "last_win"
)

// NakamaActivityAdapter records terminal wins in Nakama storage.
type NakamaActivityAdapter struct {
	nk runtime.NakamaModule
}

// NewNakamaActivityAdapter creates a new activity adapter.
func NewNakamaActivityAdapter(nk runtime.NakamaModule) *NakamaActivityAdapter {
	return &NakamaActivityAdapter{nk: nk}
}

// RecordWin writes the win summary under the winner's user id.
func (a *NakamaActivityAdapter) RecordWin(ctx context.Context, walletID string, record ports.WinRecord) error {
	value, err := json.Marshal(map[string]interface{}{
		"lobby_id":      record.LobbyID,
		"tier":          record.Tier,
		"points":        record.Points,
		"pot":           record.Pot,
		"rounds_played": record.RoundsPlayed,
		"won_at":        time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal win record: %w", err)
	}

	writes := []*runtime.StorageWrite{
		{
			Collection:      activityCollection,
			Key:             activityWinKey,
			UserID:          walletID,
			Value:           string(value),
			PermissionRead:  runtime.STORAGE_PERMISSION_OWNER_READ,
			PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
		},
	}
	if _, err := a.nk.StorageWrite(ctx, writes); err != nil {
		return fmt.Errorf("failed to record win for user %s: %w", walletID, err)
	}
	return nil
}

var _ ports.ActivityRecorder = (*NakamaActivityAdapter)(nil)
