package video

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"telehealth-portal/config"
)

func newTestWhereby(baseURL, apiKey string) *Whereby {
	w := NewWhereby(config.WherebyConfig{
		APIKey:  apiKey,
		Domain:  "medianalytica.whereby.com",
		BaseURL: baseURL,
	}, 24*time.Hour, 2*time.Second, testLogger())
	w.now = fixedClock
	return w
}

func TestWhereby_ReusesExistingMeeting(t *testing.T) {
	var creates int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /meetings", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
		}
		_, _ = w.Write([]byte(`{"results":[
			{"meetingId":"1","roomName":"/other","roomUrl":"https://medianalytica.whereby.com/other"},
			{"meetingId":"2","roomName":"/room42","roomUrl":"https://medianalytica.whereby.com/room42"}
		]}`))
	})
	mux.HandleFunc("POST /meetings", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&creates, 1)
		w.WriteHeader(http.StatusCreated)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	room, err := newTestWhereby(srv.URL, "secret").EnsureRoom(context.Background(), "room42", RoomMetadata{})
	if err != nil {
		t.Fatalf("EnsureRoom: %v", err)
	}
	if room.Created {
		t.Error("existing meeting reported as created")
	}
	if room.URL != "https://medianalytica.whereby.com/room42" || room.ID != "2" {
		t.Errorf("room = %+v", room)
	}
	if atomic.LoadInt32(&creates) != 0 {
		t.Errorf("create called %d times, want 0", creates)
	}
}

func TestWhereby_CreatesMeetingWithExpiry(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /meetings", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[]}`))
	})
	mux.HandleFunc("POST /meetings", func(w http.ResponseWriter, r *http.Request) {
		var req wherebyCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode create body: %v", err)
			return
		}
		if req.RoomName != "room42" || req.RoomMode != "normal" {
			t.Errorf("create request = %+v", req)
		}
		end, err := time.Parse(time.RFC3339, req.EndDate)
		if err != nil {
			t.Errorf("endDate %q: %v", req.EndDate, err)
		}
		if !end.Equal(fixedNow.Add(24 * time.Hour)) {
			t.Errorf("endDate = %v, want %v", end, fixedNow.Add(24*time.Hour))
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"meetingId":"m-1","hostRoomUrl":"https://medianalytica.whereby.com/room42?roomKey=abc"}`))
	})
	mux.HandleFunc("GET /meetings/m-1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"meetingId":"m-1","roomUrl":"https://medianalytica.whereby.com/room42"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	room, err := newTestWhereby(srv.URL, "secret").EnsureRoom(context.Background(), "room42", RoomMetadata{})
	if err != nil {
		t.Fatalf("EnsureRoom: %v", err)
	}
	if !room.Created {
		t.Error("expected Created")
	}
	if room.URL != "https://medianalytica.whereby.com/room42" {
		t.Errorf("URL = %q, want roomUrl from verification", room.URL)
	}
	if room.HostURL == "" {
		t.Error("host URL dropped")
	}
}

func TestWhereby_SynthesizesURLWhenVendorOmitsIt(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /meetings", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[]}`))
	})
	mux.HandleFunc("POST /meetings", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	room, err := newTestWhereby(srv.URL, "secret").EnsureRoom(context.Background(), "room42", RoomMetadata{})
	if err != nil {
		t.Fatalf("EnsureRoom: %v", err)
	}
	if room.URL != "https://medianalytica.whereby.com/room42" || !room.Synthesized {
		t.Errorf("room = %+v, want synthesized domain URL", room)
	}
}

func TestWhereby_VendorErrors(t *testing.T) {
	tests := []struct {
		name       string
		listStatus int
		createBody string
		wantOp     string
		wantStatus int
	}{
		{name: "list fails", listStatus: http.StatusInternalServerError, wantOp: "list meetings", wantStatus: http.StatusInternalServerError},
		{name: "create rejected", listStatus: http.StatusOK, createBody: `{"error":"Forbidden"}`, wantOp: "create meeting", wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("GET /meetings", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.listStatus)
				_, _ = w.Write([]byte(`{"results":[]}`))
			})
			mux.HandleFunc("POST /meetings", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(tt.createBody))
			})
			srv := httptest.NewServer(mux)
			defer srv.Close()

			_, err := newTestWhereby(srv.URL, "secret").EnsureRoom(context.Background(), "room42", RoomMetadata{})
			var perr *ProviderError
			if !errors.As(err, &perr) {
				t.Fatalf("err = %v, want *ProviderError", err)
			}
			if perr.Op != tt.wantOp || perr.StatusCode != tt.wantStatus {
				t.Errorf("ProviderError = %+v", perr)
			}
			if tt.createBody != "" && perr.Body != tt.createBody {
				t.Errorf("Body = %q, want raw vendor body", perr.Body)
			}
			if len(perr.Troubleshooting) == 0 {
				t.Error("expected troubleshooting steps")
			}
		})
	}
}

func TestWhereby_MissingKeyNeverCallsVendor(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	room, err := newTestWhereby(srv.URL, "").EnsureRoom(context.Background(), "room42", RoomMetadata{})
	if room != nil {
		t.Errorf("room = %+v, want nil", room)
	}
	var cerr *ConfigError
	if !errors.As(err, &cerr) || !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err = %v, want *ConfigError", err)
	}
	if !strings.Contains(err.Error(), "API_KEY") {
		t.Errorf("err = %q, want the missing variable name", err.Error())
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Errorf("vendor called %d times", calls)
	}
}

func TestWhereby_RejectsInvalidSlug(t *testing.T) {
	_, err := newTestWhereby("http://unused", "secret").EnsureRoom(context.Background(), "Room-42", RoomMetadata{})
	if !errors.Is(err, ErrInvalidRoomName) {
		t.Fatalf("err = %v, want ErrInvalidRoomName", err)
	}
}

func TestWhereby_BuildJoinURLKeepsRoom(t *testing.T) {
	w := newTestWhereby("http://unused", "secret")
	room := &Room{Name: "room42", URL: "https://medianalytica.whereby.com/room42"}

	doctor, err := w.BuildJoinURL(room, Participant{Name: "Dr Ada", IsModerator: true})
	if err != nil {
		t.Fatalf("BuildJoinURL: %v", err)
	}
	patient, err := w.BuildJoinURL(room, Participant{Name: "Bob"})
	if err != nil {
		t.Fatalf("BuildJoinURL: %v", err)
	}

	du, _ := url.Parse(doctor)
	pu, _ := url.Parse(patient)
	if du.Host != pu.Host || du.Path != pu.Path || du.Path != "/room42" {
		t.Errorf("participants land in different rooms: %q vs %q", doctor, patient)
	}
	if du.Query().Get("embed") != "true" || du.Query().Get("displayName") != "Dr Ada" {
		t.Errorf("doctor URL = %q", doctor)
	}
}
