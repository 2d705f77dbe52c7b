package video

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"telehealth-portal/config"
	"telehealth-portal/pkg/roomname"
)

type Daily struct {
	apiKey  string
	domain  string
	baseURL string
	ttl     time.Duration
	client  *http.Client
	log     *logrus.Logger
	now     func() time.Time
}

func NewDaily(cfg config.DailyConfig, ttl, timeout time.Duration, log *logrus.Logger) *Daily {
	return &Daily{
		apiKey:  cfg.APIKey,
		domain:  cfg.Domain,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		ttl:     ttl,
		client:  newHTTPClient(timeout),
		log:     log,
		now:     time.Now,
	}
}

type dailyRoom struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	URL    string `json:"url"`
	Config struct {
		Exp int64 `json:"exp"`
	} `json:"config"`
}

type dailyRoomProperties struct {
	Exp               int64 `json:"exp"`
	EnableScreenshare bool  `json:"enable_screenshare"`
	EnableChat        bool  `json:"enable_chat"`
	EnableKnocking    bool  `json:"enable_knocking"`
	EnablePrejoinUI   bool  `json:"enable_prejoin_ui"`
}

type dailyCreateRequest struct {
	Name       string              `json:"name"`
	Privacy    string              `json:"privacy"`
	Properties dailyRoomProperties `json:"properties"`
}

var dailyTroubleshooting = []string{
	"Verify DAILY_API_KEY in the Daily dashboard under Developers",
	"Check that the Daily domain matches DAILY_DOMAIN",
	"Room names must be 3-128 characters of letters, digits or hyphens",
}

func (d *Daily) Name() string { return ProviderDaily }

func (d *Daily) Rules() roomname.Rules { return roomname.Daily }

func (d *Daily) EnsureRoom(ctx context.Context, slug string, meta RoomMetadata) (*Room, error) {
	if d.apiKey == "" {
		return nil, &ConfigError{Provider: ProviderDaily, Missing: []string{"DAILY_API_KEY"}}
	}
	if err := checkSlug(ProviderDaily, slug, d.Rules()); err != nil {
		return nil, err
	}

	resp, err := doJSON(ctx, d.client, http.MethodGet, d.baseURL+"/rooms/"+url.PathEscape(slug), d.apiKey, nil)
	if err != nil {
		return nil, &ProviderError{Provider: ProviderDaily, Op: "get room", Err: err, Troubleshooting: dailyTroubleshooting}
	}
	switch {
	case resp.ok():
		var existing dailyRoom
		if err := resp.decode(&existing); err != nil {
			return nil, &ProviderError{Provider: ProviderDaily, Op: "get room", StatusCode: resp.StatusCode, Body: string(resp.Body), Err: err}
		}
		d.log.Debugf("Reusing Daily room %s", slug)
		return d.toRoom(slug, &existing, false), nil
	case resp.StatusCode != http.StatusNotFound:
		return nil, &ProviderError{
			Provider:        ProviderDaily,
			Op:              "get room",
			StatusCode:      resp.StatusCode,
			Body:            string(resp.Body),
			Troubleshooting: dailyTroubleshooting,
		}
	}

	payload := dailyCreateRequest{
		Name:    slug,
		Privacy: "public",
		Properties: dailyRoomProperties{
			Exp:               d.now().Add(d.ttl).Unix(),
			EnableScreenshare: true,
			EnableChat:        true,
		},
	}
	resp, err = doJSON(ctx, d.client, http.MethodPost, d.baseURL+"/rooms", d.apiKey, payload)
	if err != nil {
		return nil, &ProviderError{Provider: ProviderDaily, Op: "create room", Err: err, Troubleshooting: dailyTroubleshooting}
	}
	if !resp.ok() {
		return nil, &ProviderError{
			Provider:        ProviderDaily,
			Op:              "create room",
			StatusCode:      resp.StatusCode,
			Body:            string(resp.Body),
			Troubleshooting: dailyTroubleshooting,
		}
	}

	var created dailyRoom
	if err := resp.decode(&created); err != nil {
		return nil, &ProviderError{Provider: ProviderDaily, Op: "create room", StatusCode: resp.StatusCode, Body: string(resp.Body), Err: err}
	}
	if created.Config.Exp == 0 {
		created.Config.Exp = payload.Properties.Exp
	}
	return d.toRoom(slug, &created, true), nil
}

func (d *Daily) toRoom(slug string, r *dailyRoom, created bool) *Room {
	name := r.Name
	if name == "" {
		name = slug
	}
	room := &Room{
		Provider: ProviderDaily,
		Name:     name,
		ID:       r.ID,
		URL:      r.URL,
		Created:  created,
	}
	if room.URL == "" {
		room.URL = fmt.Sprintf("https://%s/%s", d.domain, name)
		room.Synthesized = true
	}
	if r.Config.Exp > 0 {
		t := time.Unix(r.Config.Exp, 0).UTC()
		room.ExpiresAt = &t
	}
	return room
}

// BuildJoinURL returns the room URL unchanged; Daily's prebuilt UI asks for
// the display name itself.
func (d *Daily) BuildJoinURL(room *Room, _ Participant) (string, error) {
	if _, err := url.Parse(room.URL); err != nil {
		return "", fmt.Errorf("parse room url: %w", err)
	}
	return room.URL, nil
}

func (d *Daily) Status() Status {
	return envStatus(ProviderDaily, d.domain, map[string]bool{
		"DAILY_API_KEY": d.apiKey != "",
	})
}
