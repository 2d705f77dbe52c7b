package video

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"telehealth-portal/config"
)

func TestEightByEight_MissingCredentials(t *testing.T) {
	e := NewEightByEight(config.EightByEightConfig{Domain: "8x8.vc"})

	_, err := e.EnsureRoom(context.Background(), "room42", RoomMetadata{})
	var cerr *ConfigError
	if !errors.As(err, &cerr) {
		t.Fatalf("err = %v, want *ConfigError", err)
	}
	if len(cerr.Missing) != 2 {
		t.Errorf("Missing = %v, want app id and api key", cerr.Missing)
	}
	if e.Status().Configured {
		t.Error("status reports configured without credentials")
	}
}

func TestEightByEight_JoinURLCarriesSignedToken(t *testing.T) {
	e := NewEightByEight(config.EightByEightConfig{
		AppID:  "vpaas-magic-cookie-1",
		APIKey: "signing-secret",
		KeyID:  "key-1",
		Domain: "8x8.vc",
	})
	e.now = time.Now

	room, err := e.EnsureRoom(context.Background(), "room42", RoomMetadata{})
	if err != nil {
		t.Fatalf("EnsureRoom: %v", err)
	}
	if room.URL != "https://8x8.vc/vpaas-magic-cookie-1/room42" {
		t.Errorf("URL = %q", room.URL)
	}

	joinURL, err := e.BuildJoinURL(room, Participant{Name: "Dr Ada", Email: "ada@example.com", IsModerator: true})
	if err != nil {
		t.Fatalf("BuildJoinURL: %v", err)
	}
	u, err := url.Parse(joinURL)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if u.Path != "/vpaas-magic-cookie-1/room42" {
		t.Errorf("path = %q", u.Path)
	}

	claims := &jaasClaims{}
	token, err := jwt.ParseWithClaims(u.Query().Get("jwt"), claims, func(tok *jwt.Token) (interface{}, error) {
		return []byte("signing-secret"), nil
	}, jwt.WithAudience("jitsi"), jwt.WithIssuer("chat"))
	if err != nil {
		t.Fatalf("token does not verify: %v", err)
	}
	if token.Header["kid"] != "key-1" {
		t.Errorf("kid = %v", token.Header["kid"])
	}
	if claims.Room != "room42" || claims.Subject != "vpaas-magic-cookie-1" {
		t.Errorf("claims = %+v", claims)
	}
	if !claims.Context.User.Moderator || claims.Context.User.Name != "Dr Ada" {
		t.Errorf("user = %+v", claims.Context.User)
	}
}
