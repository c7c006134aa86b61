package nakama

const (
	// RpcCreateLobby creates a named lobby match for a stake tier.
	RpcCreateLobby = "create_lobby"

	// RpcListLobbies lists joinable lobby matches, optionally by tier.
	RpcListLobbies = "list_lobbies"

	// RpcQuickMatch finds an open lobby or creates one on the default tier.
	RpcQuickMatch = "quick_match"

	// RpcVoiceToken issues a lobby voice-channel access token.
	RpcVoiceToken = "voice_token"

	// MatchNameCeeLo is the authoritative match handler name registered with Nakama.
	MatchNameCeeLo = "ceelo_match"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpConfirmPayment int64 = 1
	OpSetReady       int64 = 2
	OpSubmitRoll     int64 = 3

	// Server -> Client events
	OpLobbyState    int64 = 101
	OpGameStarted   int64 = 102
	OpRoundStarted  int64 = 103
	OpRollSubmitted int64 = 104
	OpRoundEnded    int64 = 105
	OpRoundTied     int64 = 106
	OpSuddenDeath   int64 = 107
	OpGameEnded     int64 = 108
	OpError         int64 = 109
)
