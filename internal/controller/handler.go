package controller

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sharetube/playerctl/internal/bridge"
	"github.com/sharetube/playerctl/internal/service/control"
	"github.com/sharetube/playerctl/pkg/ctxlogger"
	"github.com/sharetube/playerctl/pkg/rest"
	"github.com/sharetube/playerctl/pkg/wsrouter"
)

// connectAgent turns the request into a session whose page is served by the
// agent on the other end of the socket. The session lives as long as the
// socket does.
func (c controller) connectAgent(w http.ResponseWriter, r *http.Request) {
	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to upgrade to websocket", "error", err)
		return
	}
	defer conn.Close()

	page := bridge.NewPage(conn, c.bridgeCallTimeout, c.logger)

	connectResp, err := c.controlService.Connect(r.Context(), &control.ConnectParams{
		Page:      page,
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to connect session", "error", err)
		return
	}

	ctx := ctxlogger.AppendCtx(r.Context(), slog.String("session_id", connectResp.SessionID))
	defer func() {
		if err := c.controlService.Disconnect(context.WithoutCancel(ctx), connectResp.SessionID); err != nil {
			c.logger.WarnContext(ctx, "failed to disconnect session", "error", err)
		}
	}()

	if err := page.Notify("SESSION_CREATED", connectResp); err != nil {
		c.logger.WarnContext(ctx, "failed to write session created", "error", err)
		return
	}

	if err := page.Run(ctx); err != nil {
		c.logger.InfoContext(ctx, "agent disconnected", "error", err)
	}
}

func (c controller) connectControl(w http.ResponseWriter, r *http.Request) {
	sessionId := chi.URLParam(r, "session-id")
	token := r.URL.Query().Get("token")

	if err := c.controlService.Authorize(token, sessionId); err != nil {
		c.logger.InfoContext(r.Context(), "failed to authorize controller", "error", err)
		rest.WriteJSON(w, authStatus(err), rest.Envelope{"error": err.Error()})
		return
	}

	ws, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to upgrade to websocket", "error", err)
		return
	}
	conn := wsrouter.NewConn(ws)
	defer conn.Close()

	if err := c.controlService.ConnectController(&control.ConnectControllerParams{
		Conn:      conn,
		SessionID: sessionId,
		Token:     token,
	}); err != nil {
		c.logger.WarnContext(r.Context(), "failed to connect controller", "error", err)
		return
	}
	defer c.controlService.DisconnectController(conn)

	ctx := context.WithValue(r.Context(), sessionIdCtxKey, sessionId)
	ctx = ctxlogger.AppendCtx(ctx, slog.String("session_id", sessionId))

	if err := c.wsmux.ServeConn(ctx, conn); err != nil {
		c.logger.InfoContext(ctx, "controller disconnected", "error", err)
	}
}
