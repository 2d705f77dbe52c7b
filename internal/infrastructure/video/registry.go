package video

import (
	"github.com/sirupsen/logrus"

	"telehealth-portal/config"
)

// NewRegistryFromConfig builds every supported provider and selects the one
// named by VIDEO_PROVIDER as the default.
func NewRegistryFromConfig(cfg config.VideoConfig, log *logrus.Logger) (*Registry, error) {
	return NewRegistry(cfg.Provider,
		NewWhereby(cfg.Whereby, cfg.RoomTTL, cfg.RequestTimeout, log),
		NewDaily(cfg.Daily, cfg.RoomTTL, cfg.RequestTimeout, log),
		NewEightByEight(cfg.EightByEight),
		NewJitsi(cfg.Jitsi),
	)
}
