package domain

// GameState mirrors the host client's connection state
type GameState string

const (
	GameStateLoginScreen GameState = "LOGIN_SCREEN"
	GameStateLoggingIn   GameState = "LOGGING_IN"
	GameStateLoading     GameState = "LOADING"
	GameStateLoggedIn    GameState = "LOGGED_IN"
	GameStateHopping     GameState = "HOPPING"
)

// GameStateChanged is delivered by the host on every state transition
type GameStateChanged struct {
	State GameState `json:"state"`
}

// ItemSpawned is delivered by the host when an item appears on a tile.
// ItemName may be empty; the item resolver fills it from ItemID.
type ItemSpawned struct {
	ItemID   int    `json:"item_id"`
	ItemName string `json:"item_name,omitempty"`
	Quantity int    `json:"quantity"`
}

// ChatChannel selects where a status line is shown
type ChatChannel string

const (
	ChannelGameMessage ChatChannel = "GAMEMESSAGE"
	ChannelConsole     ChatChannel = "CONSOLE"
)
