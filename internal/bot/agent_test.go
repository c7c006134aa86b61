package bot

import (
	"testing"
)

func TestIsBot(t *testing.T) {
	tests := []struct {
		name   string
		userID string
		want   bool
	}{
		{name: "BotPrefix", userID: "bot-7c1d", want: true},
		{name: "Wallet", userID: "8f3Kp2vQ", want: false},
		{name: "Empty", userID: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsBot(tt.userID); got != tt.want {
				t.Fatalf("IsBot(%q) = %t, want %t", tt.userID, got, tt.want)
			}
		})
	}
}

func TestNewAgentRejectsHumans(t *testing.T) {
	if _, err := NewAgent("wallet-1"); err == nil {
		t.Fatal("expected error for non-bot user id")
	}
}

func TestAgentRollBounds(t *testing.T) {
	agent, err := NewAgent(GetBotIdentity(0).UserID)
	if err != nil {
		t.Fatalf("new agent error: %v", err)
	}

	for i := 0; i < 100; i++ {
		dice := agent.Roll()
		if len(dice) != 3 {
			t.Fatalf("roll size = %d, want 3", len(dice))
		}
		for _, d := range dice {
			if d < 1 || d > 6 {
				t.Fatalf("die value %d out of range", d)
			}
		}
	}
}

func TestAgentActDelay(t *testing.T) {
	agent, err := NewAgent(GetBotIdentity(1).UserID)
	if err != nil {
		t.Fatalf("new agent error: %v", err)
	}

	for i := 0; i < 50; i++ {
		d := agent.ActDelay(1, 3)
		if d < 1 || d > 3 {
			t.Fatalf("delay %d outside [1,3]", d)
		}
	}
	if d := agent.ActDelay(2, 2); d != 2 {
		t.Fatalf("degenerate range delay = %d, want 2", d)
	}
}
