package video

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"telehealth-portal/config"
	"telehealth-portal/pkg/roomname"
)

// Jitsi uses the public Jitsi Meet deployment, where any room name is
// created on first join.
type Jitsi struct {
	domain string
}

func NewJitsi(cfg config.JitsiConfig) *Jitsi {
	return &Jitsi{domain: cfg.Domain}
}

func (j *Jitsi) Name() string { return ProviderJitsi }

func (j *Jitsi) Rules() roomname.Rules { return roomname.Jitsi }

func (j *Jitsi) EnsureRoom(_ context.Context, slug string, _ RoomMetadata) (*Room, error) {
	if err := checkSlug(ProviderJitsi, slug, j.Rules()); err != nil {
		return nil, err
	}
	return &Room{
		Provider: ProviderJitsi,
		Name:     slug,
		URL:      fmt.Sprintf("https://%s/%s", j.domain, slug),
	}, nil
}

func (j *Jitsi) BuildJoinURL(room *Room, p Participant) (string, error) {
	u, err := url.Parse(room.URL)
	if err != nil {
		return "", fmt.Errorf("parse room url: %w", err)
	}
	if p.Name != "" {
		// Jitsi reads fragment config values as JSON.
		name, err := json.Marshal(p.Name)
		if err != nil {
			return "", fmt.Errorf("encode display name: %w", err)
		}
		u.Fragment = "userInfo.displayName=" + string(name)
		u.RawFragment = ""
	}
	return u.String(), nil
}

func (j *Jitsi) Status() Status {
	return envStatus(ProviderJitsi, j.domain, map[string]bool{})
}
