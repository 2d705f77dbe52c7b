package usecase

import (
	"context"
	"strings"
	"time"

	"telehealth-portal/internal/delivery/dto"
	"telehealth-portal/internal/domain/entity"
	"telehealth-portal/internal/infrastructure/video"
	"telehealth-portal/internal/service"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

const defaultParticipantName = "Guest"

type VideoUsecase interface {
	CreateRoom(ctx context.Context, providerName string, roleID int, req *dto.CreateRoomRequest) (*dto.RoomResponse, error)
	Debug(ctx context.Context) *dto.VideoDebugResponse
}

type videoUsecase struct {
	log         *logrus.Logger
	provisioner *service.RoomProvisioner
	now         func() time.Time
}

func NewVideoUsecase(log *logrus.Logger, provisioner *service.RoomProvisioner, now func() time.Time) VideoUsecase {
	return &videoUsecase{
		log:         log,
		provisioner: provisioner,
		now:         now,
	}
}

// CreateRoom provisions the named room and returns a join URL for the caller.
// Only doctors and admins may join as moderator.
func (u *videoUsecase) CreateRoom(ctx context.Context, providerName string, roleID int, req *dto.CreateRoomRequest) (*dto.RoomResponse, error) {
	name := strings.TrimSpace(req.UserName)
	if name == "" {
		name = defaultParticipantName
	}
	participant := video.Participant{
		Name:        name,
		Email:       req.UserEmail,
		IsModerator: req.IsDoctor && (roleID == entity.RoleIDDoctor || roleID == entity.RoleIDAdmin),
	}

	result, err := u.provisioner.JoinRoom(ctx, providerName, req.RoomName, participant)
	if err != nil {
		u.log.Warnf("Failed to create room %q on %q: %+v", req.RoomName, providerName, err)
		return nil, err
	}

	room := result.Room
	return &dto.RoomResponse{
		Provider:    room.Provider,
		RoomName:    room.Name,
		JoinURL:     result.JoinURL,
		RoomURL:     room.URL,
		RoomID:      room.ID,
		HostURL:     room.HostURL,
		ViewerURL:   room.ViewerURL,
		ExpiresAt:   room.ExpiresAt,
		Created:     room.Created,
		Synthesized: room.Synthesized,
	}, nil
}

func (u *videoUsecase) Debug(ctx context.Context) *dto.VideoDebugResponse {
	registry := u.provisioner.Registry()
	defaultName := registry.DefaultName()

	return &dto.VideoDebugResponse{
		DefaultProvider: defaultName,
		Providers: lo.Map(registry.Statuses(), func(s video.Status, _ int) dto.ProviderStatusResponse {
			return dto.ProviderStatusResponse{
				Provider:        s.Provider,
				Default:         s.Provider == defaultName,
				Configured:      s.Configured,
				Domain:          s.Domain,
				Env:             s.Env,
				Recommendations: s.Recommendations,
			}
		}),
		Timestamp: u.now(),
	}
}
