package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"telehealth-portal/internal/domain/entity"
	"telehealth-portal/internal/infrastructure/video"
	"telehealth-portal/pkg/roomname"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var ErrRoomNameRequired = errors.New("room name is required")

// RoomURLStore persists an appointment's room URL exactly once.
type RoomURLStore interface {
	// ClaimRoomURL stores url unless the appointment already has one, and
	// returns whichever provider and URL ended up stored.
	ClaimRoomURL(ctx context.Context, appointmentID uuid.UUID, provider, url string) (string, string, error)
}

// RoomCache remembers provisioned rooms per provider and slug.
type RoomCache interface {
	Get(ctx context.Context, provider, slug string) (*video.Room, error)
	// SetIfAbsent stores room unless an entry exists and returns the entry
	// that is stored afterwards.
	SetIfAbsent(ctx context.Context, room *video.Room, ttl time.Duration) (*video.Room, error)
}

// JoinResult is a room plus the URL one participant should open.
type JoinResult struct {
	Room    *video.Room
	JoinURL string
}

type RoomProvisioner struct {
	registry *video.Registry
	cache    RoomCache
	store    RoomURLStore
	cacheTTL time.Duration
	log      *logrus.Logger
	now      func() time.Time
}

func NewRoomProvisioner(registry *video.Registry, cache RoomCache, store RoomURLStore, cacheTTL time.Duration, log *logrus.Logger) *RoomProvisioner {
	return &RoomProvisioner{
		registry: registry,
		cache:    cache,
		store:    store,
		cacheTTL: cacheTTL,
		log:      log,
		now:      time.Now,
	}
}

func (p *RoomProvisioner) Registry() *video.Registry {
	return p.registry
}

// EnsureRoom normalizes rawName for the provider and returns the room, using
// the cache before calling the vendor. providerName "" selects the default.
func (p *RoomProvisioner) EnsureRoom(ctx context.Context, providerName, rawName string, meta video.RoomMetadata) (*video.Room, video.Provider, error) {
	if strings.TrimSpace(rawName) == "" {
		return nil, nil, ErrRoomNameRequired
	}

	provider, err := p.registry.Get(providerName)
	if err != nil {
		return nil, nil, err
	}
	slug := roomname.Normalize(rawName, provider.Rules())

	cached, err := p.cache.Get(ctx, provider.Name(), slug)
	if err != nil {
		p.log.Warnf("Failed to read room cache for %s/%s: %+v", provider.Name(), slug, err)
	}
	if cached != nil {
		return reused(cached), provider, nil
	}

	room, err := provider.EnsureRoom(ctx, slug, meta)
	if err != nil {
		return nil, provider, err
	}

	stored, err := p.cache.SetIfAbsent(ctx, room, p.ttlFor(room))
	if err != nil {
		p.log.Warnf("Failed to cache room %s/%s: %+v", provider.Name(), slug, err)
		return room, provider, nil
	}
	if stored.URL != room.URL {
		return reused(stored), provider, nil
	}
	return stored, provider, nil
}

// reused copies a room another request created so Created reports false.
func reused(room *video.Room) *video.Room {
	r := *room
	r.Created = false
	return &r
}

// JoinRoom provisions a room and builds the participant's join URL.
func (p *RoomProvisioner) JoinRoom(ctx context.Context, providerName, rawName string, participant video.Participant) (*JoinResult, error) {
	room, provider, err := p.EnsureRoom(ctx, providerName, rawName, video.RoomMetadata{Title: rawName})
	if err != nil {
		return nil, err
	}
	joinURL, err := provider.BuildJoinURL(room, participant)
	if err != nil {
		return nil, err
	}
	return &JoinResult{Room: room, JoinURL: joinURL}, nil
}

// EnsureAppointmentRoom returns the appointment's room, provisioning it on the
// default provider when none is stored. Concurrent callers converge on the
// first stored URL.
func (p *RoomProvisioner) EnsureAppointmentRoom(ctx context.Context, appt *entity.Appointment, participant video.Participant) (*JoinResult, error) {
	if appt.HasRoom() {
		return p.storedRoom(appt, participant)
	}

	room, _, err := p.EnsureRoom(ctx, "", appt.RoomName, video.RoomMetadata{Title: "Appointment " + appt.ID.String()})
	if err != nil {
		return nil, err
	}

	winnerProvider, winnerURL, err := p.store.ClaimRoomURL(ctx, appt.ID, room.Provider, room.URL)
	if err != nil {
		return nil, err
	}
	appt.RoomProvider = winnerProvider
	appt.RoomURL = winnerURL

	if winnerURL != room.URL {
		p.log.Infof("Appointment %s already had room %s; discarding %s", appt.ID, winnerURL, room.URL)
		return p.storedRoom(appt, participant)
	}

	provider, err := p.registry.Get(room.Provider)
	if err != nil {
		return nil, err
	}
	joinURL, err := provider.BuildJoinURL(room, participant)
	if err != nil {
		return nil, err
	}
	return &JoinResult{Room: room, JoinURL: joinURL}, nil
}

// storedRoom builds the join URL for an appointment's persisted room. When the
// provider that created it is no longer available the raw URL is returned.
func (p *RoomProvisioner) storedRoom(appt *entity.Appointment, participant video.Participant) (*JoinResult, error) {
	room := &video.Room{
		Provider: appt.RoomProvider,
		Name:     appt.RoomName,
		URL:      appt.RoomURL,
	}

	provider, err := p.registry.Get(appt.RoomProvider)
	if err != nil {
		return &JoinResult{Room: room, JoinURL: room.URL}, nil
	}
	joinURL, err := provider.BuildJoinURL(room, participant)
	if err != nil {
		var cfgErr *video.ConfigError
		if errors.As(err, &cfgErr) {
			p.log.Warnf("Provider %s cannot decorate stored room: %+v", appt.RoomProvider, err)
			return &JoinResult{Room: room, JoinURL: room.URL}, nil
		}
		return nil, err
	}
	return &JoinResult{Room: room, JoinURL: joinURL}, nil
}

func (p *RoomProvisioner) ttlFor(room *video.Room) time.Duration {
	ttl := p.cacheTTL
	if room.ExpiresAt != nil {
		if left := room.ExpiresAt.Sub(p.now()); left < ttl {
			ttl = left
		}
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return ttl
}
