package api

import (
	"context"

	"photolog/internal/auth"
	"photolog/internal/config"
	"photolog/internal/models"
	"photolog/internal/photos"
	"photolog/internal/websocket"

	"go.uber.org/zap"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// EventReader replays journaled gallery events.
type EventReader interface {
	GetEventsSince(ctx context.Context, sinceID int64, limit int) ([]models.Event, error)
}

type Server struct {
	config      *config.Config
	credentials *auth.Credentials
	codec       *auth.Codec
	guard       *auth.Guard
	photos      *photos.Service
	db          Pinger
	journal     EventReader
	wsHub       *websocket.Hub
	log         *zap.Logger
}

type Deps struct {
	Users   auth.UserFinder
	Codec   *auth.Codec
	Photos  *photos.Service
	DB      Pinger
	Journal EventReader
	Hub     *websocket.Hub
	Logger  *zap.Logger
}

func NewServer(cfg *config.Config, deps Deps) *Server {
	return &Server{
		config:      cfg,
		credentials: auth.NewCredentials(deps.Users),
		codec:       deps.Codec,
		guard:       auth.NewGuard(deps.Codec, deps.Users),
		photos:      deps.Photos,
		db:          deps.DB,
		journal:     deps.Journal,
		wsHub:       deps.Hub,
		log:         deps.Logger,
	}
}
