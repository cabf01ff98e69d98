package domain

import "encoding/json"

// WallConfig is the static wall geometry exposed to control clients.
type WallConfig struct {
	GridCount int `json:"gridCount"`
	Width     int `json:"width"`
	Height    int `json:"height"`
}

// ViewState is the read-model projection of one grid cell. StreamID, Width
// and Height are derived from the shared layout document; DisplayState is the
// opaque per-view status reported by the display layer and transported
// verbatim.
type ViewState struct {
	Idx          int             `json:"idx"`
	StreamID     string          `json:"streamId"`
	Width        int             `json:"width"`
	Height       int             `json:"height"`
	DisplayState json.RawMessage `json:"state,omitempty"`
}

// DelayStatus mirrors the status of the external streamdelay service.
type DelayStatus struct {
	IsConnected     bool            `json:"isConnected"`
	IsCensored      bool            `json:"isCensored"`
	IsStreamRunning bool            `json:"isStreamRunning"`
	DelaySeconds    int             `json:"delaySeconds"`
	StartTime       *int64          `json:"startTime,omitempty"`
	State           json.RawMessage `json:"state,omitempty"`
}

// AuthState lists outstanding tokens, redacted to TokenInfo. Only roles
// holding edit-tokens ever see it.
type AuthState struct {
	Invites  []TokenInfo `json:"invites"`
	Sessions []TokenInfo `json:"sessions"`
}

// Snapshot is the aggregate application state pushed to control clients.
type Snapshot struct {
	Config      WallConfig   `json:"config"`
	Streams     []Stream     `json:"streams"`
	Views       []ViewState  `json:"views"`
	Streamdelay *DelayStatus `json:"streamdelay,omitempty"`
	Auth        *AuthState   `json:"auth,omitempty"`
}

// View projects the snapshot for a role, redacting fields the role is not
// permitted to see.
func (s Snapshot) View(role Role) Snapshot {
	out := s
	if !RoleCan(role, CapEditTokens) {
		out.Auth = nil
	}
	return out
}
