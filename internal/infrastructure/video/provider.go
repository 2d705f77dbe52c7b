// Package video provisions rooms on third-party video-conferencing vendors.
// Every vendor implements Provider; callers pick one through a Registry built
// from configuration.
package video

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"telehealth-portal/pkg/roomname"
)

const (
	ProviderWhereby      = "whereby"
	ProviderDaily        = "daily"
	ProviderEightByEight = "8x8"
	ProviderJitsi        = "jitsi"
)

var (
	ErrNotConfigured   = errors.New("video provider not configured")
	ErrUnknownProvider = errors.New("unknown video provider")
	ErrInvalidRoomName = errors.New("invalid room name")
)

// Room is a provisioned room. URL is the single address every participant
// uses; HostURL and ViewerURL are informational only.
type Room struct {
	Provider    string     `json:"provider"`
	Name        string     `json:"roomName"`
	URL         string     `json:"roomUrl"`
	ID          string     `json:"roomId,omitempty"`
	HostURL     string     `json:"hostUrl,omitempty"`
	ViewerURL   string     `json:"viewerUrl,omitempty"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	Created     bool       `json:"created"`
	Synthesized bool       `json:"synthesized"`
}

// RoomMetadata is display information passed along on room creation.
type RoomMetadata struct {
	Title string
}

// Participant identifies who is about to join a room.
type Participant struct {
	Name        string
	Email       string
	IsModerator bool
}

// Status reports whether a provider has what it needs, without exposing any
// secret value.
type Status struct {
	Provider        string          `json:"provider"`
	Configured      bool            `json:"configured"`
	Domain          string          `json:"domain"`
	Env             map[string]bool `json:"env"`
	Recommendations []string        `json:"recommendations"`
}

type Provider interface {
	Name() string
	Rules() roomname.Rules
	// EnsureRoom returns the room named slug, creating it when absent.
	EnsureRoom(ctx context.Context, slug string, meta RoomMetadata) (*Room, error)
	// BuildJoinURL decorates room.URL for one participant. The decorated URL
	// always resolves to the same room.
	BuildJoinURL(room *Room, p Participant) (string, error)
	Status() Status
}

// ConfigError is returned when a provider lacks required credentials.
type ConfigError struct {
	Provider string
	Missing  []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: missing required environment variables %v", e.Provider, e.Missing)
}

func (e *ConfigError) Unwrap() error {
	return ErrNotConfigured
}

// Troubleshooting lists the steps an operator takes to fix the configuration.
func (e *ConfigError) Troubleshooting() []string {
	steps := make([]string, 0, len(e.Missing)+2)
	for _, name := range e.Missing {
		steps = append(steps, fmt.Sprintf("Set the %s environment variable for this deployment target", name))
	}
	steps = append(steps,
		"Restart or redeploy the service after changing environment variables",
		"Check GET /api/v1/video/debug to confirm the variables are visible to the server",
	)
	return steps
}

// ProviderError wraps a failed vendor call. Body holds the raw vendor
// response when one was received.
type ProviderError struct {
	Provider        string
	Op              string
	StatusCode      int
	Body            string
	Err             error
	Troubleshooting []string
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Provider, e.Op, e.StatusCode, e.Body)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Registry holds the providers built from configuration and the default one.
type Registry struct {
	providers   map[string]Provider
	defaultName string
}

func NewRegistry(defaultName string, providers ...Provider) (*Registry, error) {
	r := &Registry{providers: make(map[string]Provider, len(providers)), defaultName: defaultName}
	for _, p := range providers {
		r.providers[p.Name()] = p
	}
	if _, ok := r.providers[defaultName]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, defaultName)
	}
	return r, nil
}

func (r *Registry) Get(name string) (Provider, error) {
	if name == "" {
		name = r.defaultName
	}
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	return p, nil
}

func (r *Registry) Default() Provider {
	return r.providers[r.defaultName]
}

func (r *Registry) DefaultName() string {
	return r.defaultName
}

// Statuses returns every provider's status ordered by name.
func (r *Registry) Statuses() []Status {
	out := make([]Status, 0, len(r.providers))
	for _, p := range r.providers {
		out = append(out, p.Status())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Provider < out[j].Provider })
	return out
}

func checkSlug(provider, slug string, rules roomname.Rules) error {
	if err := roomname.Validate(slug, rules); err != nil {
		return fmt.Errorf("%w for %s: %v", ErrInvalidRoomName, provider, err)
	}
	return nil
}

func envStatus(provider, domain string, env map[string]bool) Status {
	configured := true
	var recs []string
	names := make([]string, 0, len(env))
	for name := range env {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if env[name] {
			recs = append(recs, name+" is set")
			continue
		}
		configured = false
		recs = append(recs, name+" is NOT set; add it to the server environment and redeploy")
	}
	return Status{
		Provider:        provider,
		Configured:      configured,
		Domain:          domain,
		Env:             env,
		Recommendations: recs,
	}
}
