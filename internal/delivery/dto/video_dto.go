package dto

import "time"

// CreateRoomRequest keeps the camelCase wire format the web client sends.
type CreateRoomRequest struct {
	RoomName  string `json:"roomName"`
	UserName  string `json:"userName" validate:"omitempty,max=100"`
	UserEmail string `json:"userEmail" validate:"omitempty,email"`
	IsDoctor  bool   `json:"isDoctor"`
}

type RoomResponse struct {
	Provider    string     `json:"provider"`
	RoomName    string     `json:"roomName"`
	JoinURL     string     `json:"joinUrl"`
	RoomURL     string     `json:"roomUrl"`
	RoomID      string     `json:"roomId,omitempty"`
	HostURL     string     `json:"hostUrl,omitempty"`
	ViewerURL   string     `json:"viewerUrl,omitempty"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	Created     bool       `json:"created"`
	Synthesized bool       `json:"synthesized"`
}

type ProviderStatusResponse struct {
	Provider        string          `json:"provider"`
	Default         bool            `json:"default"`
	Configured      bool            `json:"configured"`
	Domain          string          `json:"domain"`
	Env             map[string]bool `json:"env"`
	Recommendations []string        `json:"recommendations"`
}

type VideoDebugResponse struct {
	DefaultProvider string                   `json:"defaultProvider"`
	Providers       []ProviderStatusResponse `json:"providers"`
	Timestamp       time.Time                `json:"timestamp"`
}
