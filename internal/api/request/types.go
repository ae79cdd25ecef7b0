package request

// CreateGuestRequest is the request body for creating a guest player
type CreateGuestRequest struct {
	DisplayName string `json:"display_name"`
}

// RegisterRequest is the request body for registering a player
type RegisterRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RenameRequest is the request body for changing the display name
type RenameRequest struct {
	DisplayName string `json:"display_name"`
}

// FuseRequest is the request body for fusing three cards
type FuseRequest struct {
	CardIDs []string `json:"card_ids"`
}

// PlaceFactionRequest puts a faction into a slot. Slot 0 means the first empty slot.
type PlaceFactionRequest struct {
	FactionID string `json:"faction_id"`
	Slot      int    `json:"slot,omitempty"`
}

// SearchRequest is the request body for starting a PvP search
type SearchRequest struct {
	CardIDs []string `json:"card_ids"`
	Mode    string   `json:"mode"`
	Genre   string   `json:"genre"`
	Live    bool     `json:"live"`
}
