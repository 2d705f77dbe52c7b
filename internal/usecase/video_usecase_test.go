package usecase

import (
	"context"
	"io"
	"testing"
	"time"

	"telehealth-portal/internal/delivery/dto"
	"telehealth-portal/internal/domain/entity"
	"telehealth-portal/internal/infrastructure/video"
	"telehealth-portal/internal/service"
	"telehealth-portal/pkg/roomname"

	"github.com/sirupsen/logrus"
)

type stubProvider struct {
	name        string
	configured  bool
	participant video.Participant
}

func (s *stubProvider) Name() string          { return s.name }
func (s *stubProvider) Rules() roomname.Rules { return roomname.Jitsi }

func (s *stubProvider) EnsureRoom(_ context.Context, slug string, _ video.RoomMetadata) (*video.Room, error) {
	return &video.Room{Provider: s.name, Name: slug, URL: "https://" + s.name + ".example/" + slug, Created: true}, nil
}

func (s *stubProvider) BuildJoinURL(room *video.Room, p video.Participant) (string, error) {
	s.participant = p
	return room.URL + "?as=" + p.Name, nil
}

func (s *stubProvider) Status() video.Status {
	return video.Status{Provider: s.name, Configured: s.configured, Domain: s.name + ".example", Env: map[string]bool{"KEY": s.configured}}
}

type noopRoomCache struct{}

func (noopRoomCache) Get(context.Context, string, string) (*video.Room, error) { return nil, nil }

func (noopRoomCache) SetIfAbsent(_ context.Context, room *video.Room, _ time.Duration) (*video.Room, error) {
	return room, nil
}

func newTestVideoUsecase(t *testing.T, providers ...video.Provider) VideoUsecase {
	t.Helper()
	registry, err := video.NewRegistry(providers[0].Name(), providers...)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	log := logrus.New()
	log.SetOutput(io.Discard)
	provisioner := service.NewRoomProvisioner(registry, noopRoomCache{}, nil, time.Hour, log)
	now := func() time.Time { return time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC) }
	return NewVideoUsecase(log, provisioner, now)
}

func TestVideoUsecase_CreateRoom(t *testing.T) {
	tests := []struct {
		name          string
		roleID        int
		req           dto.CreateRoomRequest
		wantModerator bool
		wantName      string
	}{
		{
			name:     "patient with no name joins as guest",
			roleID:   entity.RoleIDPatient,
			req:      dto.CreateRoomRequest{RoomName: "Consult-7"},
			wantName: "Guest",
		},
		{
			name:     "patient cannot claim moderator",
			roleID:   entity.RoleIDPatient,
			req:      dto.CreateRoomRequest{RoomName: "Consult-7", UserName: "Ann", IsDoctor: true},
			wantName: "Ann",
		},
		{
			name:          "doctor joins as moderator",
			roleID:        entity.RoleIDDoctor,
			req:           dto.CreateRoomRequest{RoomName: "Consult-7", UserName: "Dr Bob", IsDoctor: true},
			wantModerator: true,
			wantName:      "Dr Bob",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &stubProvider{name: "jitsi", configured: true}
			uc := newTestVideoUsecase(t, provider)

			got, err := uc.CreateRoom(context.Background(), "", tt.roleID, &tt.req)
			if err != nil {
				t.Fatalf("CreateRoom() error = %v", err)
			}
			if got.Provider != "jitsi" || got.RoomName != "consult-7" {
				t.Errorf("room = %s/%s, want jitsi/consult-7", got.Provider, got.RoomName)
			}
			if got.RoomURL != "https://jitsi.example/consult-7" {
				t.Errorf("RoomURL = %q", got.RoomURL)
			}
			if got.JoinURL != got.RoomURL+"?as="+tt.wantName {
				t.Errorf("JoinURL = %q", got.JoinURL)
			}
			if provider.participant.IsModerator != tt.wantModerator {
				t.Errorf("IsModerator = %v, want %v", provider.participant.IsModerator, tt.wantModerator)
			}
		})
	}
}

func TestVideoUsecase_CreateRoom_RequiresName(t *testing.T) {
	uc := newTestVideoUsecase(t, &stubProvider{name: "jitsi", configured: true})

	_, err := uc.CreateRoom(context.Background(), "", entity.RoleIDPatient, &dto.CreateRoomRequest{RoomName: "  "})
	if err != service.ErrRoomNameRequired {
		t.Errorf("CreateRoom() error = %v, want ErrRoomNameRequired", err)
	}
}

func TestVideoUsecase_Debug(t *testing.T) {
	uc := newTestVideoUsecase(t,
		&stubProvider{name: "whereby", configured: false},
		&stubProvider{name: "jitsi", configured: true},
	)

	got := uc.Debug(context.Background())
	if got.DefaultProvider != "whereby" {
		t.Errorf("DefaultProvider = %q, want whereby", got.DefaultProvider)
	}
	if len(got.Providers) != 2 {
		t.Fatalf("len(Providers) = %d, want 2", len(got.Providers))
	}
	// sorted by name
	if got.Providers[0].Provider != "jitsi" || got.Providers[1].Provider != "whereby" {
		t.Errorf("providers = %s, %s", got.Providers[0].Provider, got.Providers[1].Provider)
	}
	if got.Providers[0].Default || !got.Providers[1].Default {
		t.Error("only whereby should be marked default")
	}
	if got.Providers[1].Env["KEY"] {
		t.Error("whereby env should report KEY as missing")
	}
}
