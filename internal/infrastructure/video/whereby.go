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

type Whereby struct {
	apiKey  string
	domain  string
	baseURL string
	ttl     time.Duration
	client  *http.Client
	log     *logrus.Logger
	now     func() time.Time
}

func NewWhereby(cfg config.WherebyConfig, ttl, timeout time.Duration, log *logrus.Logger) *Whereby {
	return &Whereby{
		apiKey:  cfg.APIKey,
		domain:  cfg.Domain,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		ttl:     ttl,
		client:  newHTTPClient(timeout),
		log:     log,
		now:     time.Now,
	}
}

type wherebyMeeting struct {
	MeetingID     string `json:"meetingId"`
	RoomName      string `json:"roomName"`
	RoomURL       string `json:"roomUrl"`
	HostRoomURL   string `json:"hostRoomUrl"`
	ViewerRoomURL string `json:"viewerRoomUrl"`
	EndDate       string `json:"endDate"`
}

type wherebyListResponse struct {
	Results []wherebyMeeting `json:"results"`
}

type wherebyCreateRequest struct {
	EndDate  string   `json:"endDate"`
	RoomMode string   `json:"roomMode"`
	RoomName string   `json:"roomName"`
	Fields   []string `json:"fields"`
}

var wherebyTroubleshooting = []string{
	"Verify WHEREBY_API_KEY is a valid API key from the Whereby dashboard",
	"Check that the Whereby subscription allows creating meetings through the API",
	"Make sure the room name is 3-30 lowercase letters or digits",
}

func (w *Whereby) Name() string { return ProviderWhereby }

func (w *Whereby) Rules() roomname.Rules { return roomname.Whereby }

func (w *Whereby) EnsureRoom(ctx context.Context, slug string, meta RoomMetadata) (*Room, error) {
	if w.apiKey == "" {
		return nil, &ConfigError{Provider: ProviderWhereby, Missing: []string{"WHEREBY_API_KEY"}}
	}
	if err := checkSlug(ProviderWhereby, slug, w.Rules()); err != nil {
		return nil, err
	}

	existing, err := w.findMeeting(ctx, slug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		w.log.Debugf("Reusing Whereby meeting %s for room %s", existing.MeetingID, slug)
		return w.toRoom(slug, existing, false), nil
	}

	created, err := w.createMeeting(ctx, slug)
	if err != nil {
		return nil, err
	}

	if created.MeetingID != "" {
		verified, err := w.getMeeting(ctx, created.MeetingID)
		if err != nil {
			w.log.Warnf("Failed to verify Whereby meeting %s: %+v", created.MeetingID, err)
		} else {
			mergeWherebyURLs(created, verified)
		}
	}

	return w.toRoom(slug, created, true), nil
}

func (w *Whereby) findMeeting(ctx context.Context, slug string) (*wherebyMeeting, error) {
	resp, err := doJSON(ctx, w.client, http.MethodGet, w.baseURL+"/meetings", w.apiKey, nil)
	if err != nil {
		return nil, &ProviderError{Provider: ProviderWhereby, Op: "list meetings", Err: err, Troubleshooting: wherebyTroubleshooting}
	}
	if !resp.ok() {
		return nil, &ProviderError{
			Provider:        ProviderWhereby,
			Op:              "list meetings",
			StatusCode:      resp.StatusCode,
			Body:            string(resp.Body),
			Troubleshooting: wherebyTroubleshooting,
		}
	}

	var list wherebyListResponse
	if err := resp.decode(&list); err != nil {
		return nil, &ProviderError{Provider: ProviderWhereby, Op: "list meetings", StatusCode: resp.StatusCode, Body: string(resp.Body), Err: err}
	}
	for i := range list.Results {
		if strings.TrimPrefix(list.Results[i].RoomName, "/") == slug {
			return &list.Results[i], nil
		}
	}
	return nil, nil
}

func (w *Whereby) createMeeting(ctx context.Context, slug string) (*wherebyMeeting, error) {
	payload := wherebyCreateRequest{
		EndDate:  w.now().Add(w.ttl).UTC().Format(time.RFC3339),
		RoomMode: "normal",
		RoomName: slug,
		Fields:   []string{"hostRoomUrl", "viewerRoomUrl", "roomName", "meetingId", "roomUrl"},
	}

	resp, err := doJSON(ctx, w.client, http.MethodPost, w.baseURL+"/meetings", w.apiKey, payload)
	if err != nil {
		return nil, &ProviderError{Provider: ProviderWhereby, Op: "create meeting", Err: err, Troubleshooting: wherebyTroubleshooting}
	}
	if !resp.ok() {
		return nil, &ProviderError{
			Provider:        ProviderWhereby,
			Op:              "create meeting",
			StatusCode:      resp.StatusCode,
			Body:            string(resp.Body),
			Troubleshooting: wherebyTroubleshooting,
		}
	}

	var m wherebyMeeting
	if err := resp.decode(&m); err != nil {
		return nil, &ProviderError{Provider: ProviderWhereby, Op: "create meeting", StatusCode: resp.StatusCode, Body: string(resp.Body), Err: err}
	}
	return &m, nil
}

func (w *Whereby) getMeeting(ctx context.Context, id string) (*wherebyMeeting, error) {
	resp, err := doJSON(ctx, w.client, http.MethodGet, w.baseURL+"/meetings/"+url.PathEscape(id), w.apiKey, nil)
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	var m wherebyMeeting
	if err := resp.decode(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

func mergeWherebyURLs(dst, src *wherebyMeeting) {
	if dst.RoomURL == "" {
		dst.RoomURL = src.RoomURL
	}
	if dst.HostRoomURL == "" {
		dst.HostRoomURL = src.HostRoomURL
	}
	if dst.ViewerRoomURL == "" {
		dst.ViewerRoomURL = src.ViewerRoomURL
	}
	if dst.EndDate == "" {
		dst.EndDate = src.EndDate
	}
}

func (w *Whereby) toRoom(slug string, m *wherebyMeeting, created bool) *Room {
	room := &Room{
		Provider:  ProviderWhereby,
		Name:      slug,
		ID:        m.MeetingID,
		HostURL:   m.HostRoomURL,
		ViewerURL: m.ViewerRoomURL,
		Created:   created,
	}

	switch {
	case m.RoomURL != "":
		room.URL = m.RoomURL
	case m.HostRoomURL != "":
		room.URL = m.HostRoomURL
	case m.ViewerRoomURL != "":
		room.URL = m.ViewerRoomURL
	default:
		room.URL = fmt.Sprintf("https://%s/%s", w.domain, slug)
		room.Synthesized = true
	}

	if t, err := time.Parse(time.RFC3339, m.EndDate); err == nil {
		room.ExpiresAt = &t
	}
	return room
}

func (w *Whereby) BuildJoinURL(room *Room, p Participant) (string, error) {
	u, err := url.Parse(room.URL)
	if err != nil {
		return "", fmt.Errorf("parse room url: %w", err)
	}
	q := u.Query()
	q.Set("embed", "true")
	if p.Name != "" {
		q.Set("displayName", p.Name)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (w *Whereby) Status() Status {
	return envStatus(ProviderWhereby, w.domain, map[string]bool{
		"WHEREBY_API_KEY": w.apiKey != "",
	})
}
