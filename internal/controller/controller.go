package controller

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sharetube/playerctl/internal/player"
	"github.com/sharetube/playerctl/internal/service/control"
	"github.com/sharetube/playerctl/pkg/validator"
	"github.com/sharetube/playerctl/pkg/wsrouter"
)

type iControlService interface {
	Connect(context.Context, *control.ConnectParams) (control.ConnectResponse, error)
	Disconnect(context.Context, string) error
	Authorize(token, sessionID string) error
	ConnectController(*control.ConnectControllerParams) error
	DisconnectController(*wsrouter.Conn) error
	Execute(context.Context, *control.ExecuteParams) (control.ExecuteResponse, error)
	WaitForVideo(ctx context.Context, sessionID string, timeout time.Duration) error
	GetState(context.Context, string) (player.State, error)
	GetStoredState(context.Context, string) (player.State, int64, error)
}

type Config struct {
	// BridgeCallTimeout bounds each call made to an agent's page.
	BridgeCallTimeout time.Duration
}

type controller struct {
	controlService    iControlService
	upgrader          websocket.Upgrader
	validate          *validator.Validator
	logger            *slog.Logger
	bridgeCallTimeout time.Duration
	wsmux             *wsrouter.WSRouter
}

func NewController(controlService iControlService, logger *slog.Logger, cfg *Config) *controller {
	c := &controller{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		controlService:    controlService,
		validate:          validator.NewValidator(),
		logger:            logger,
		bridgeCallTimeout: cfg.BridgeCallTimeout,
	}
	c.wsmux = c.getWSRouter()

	return c
}
