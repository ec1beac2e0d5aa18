package controller

import (
	"context"
	"fmt"
	"time"

	"github.com/sharetube/playerctl/internal/discovery"
	"github.com/sharetube/playerctl/internal/player"
	"github.com/sharetube/playerctl/internal/service/control"
	"github.com/sharetube/playerctl/pkg/wsrouter"
)

type EmptyInput struct{}

func (c controller) handleAlive(_ context.Context, _ *wsrouter.Conn, _ EmptyInput) error {
	return nil
}

// AmountInput carries the optional magnitude of seek, speed and volume
// commands.
type AmountInput struct {
	Amount *float64 `json:"amount" validate:"omitempty,gt=0"`
}

type SetSpeedInput struct {
	Rate float64 `json:"rate" validate:"gt=0"`
}

type FullscreenInput struct {
	Resume *bool `json:"resume"`
}

type WaitForVideoInput struct {
	TimeoutMs *int `json:"timeout_ms" validate:"omitempty,min=0,max=60000"`
}

func (c controller) execute(ctx context.Context, conn *wsrouter.Conn, params *control.ExecuteParams) error {
	params.SessionID = c.getSessionIdFromCtx(ctx)
	params.Sender = conn

	executeResp, err := c.controlService.Execute(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to execute %s: %w", params.Command, err)
	}

	if err := c.writeToConn(ctx, conn, &Output{
		Type:    "COMMAND_RESULT",
		Payload: executeResp.Result,
	}); err != nil {
		return fmt.Errorf("failed to write command result: %w", err)
	}

	if executeResp.Result.State == nil || len(executeResp.Conns) == 0 {
		return nil
	}

	if err := c.broadcast(ctx, executeResp.Conns, &Output{
		Type: "PLAYER_UPDATED",
		Payload: map[string]any{
			"command": executeResp.Result.Command,
			"state":   executeResp.Result.State,
		},
	}); err != nil {
		return fmt.Errorf("failed to broadcast player updated: %w", err)
	}

	return nil
}

func (c controller) handleAmountCommand(command control.Command) wsrouter.HandlerFunc[AmountInput] {
	return func(ctx context.Context, conn *wsrouter.Conn, input AmountInput) error {
		return c.execute(ctx, conn, &control.ExecuteParams{
			Command: command,
			Amount:  player.AmountFrom(input.Amount),
		})
	}
}

func (c controller) handleCommand(command control.Command) wsrouter.HandlerFunc[EmptyInput] {
	return func(ctx context.Context, conn *wsrouter.Conn, _ EmptyInput) error {
		return c.execute(ctx, conn, &control.ExecuteParams{Command: command})
	}
}

func (c controller) handleSetSpeed(ctx context.Context, conn *wsrouter.Conn, input SetSpeedInput) error {
	return c.execute(ctx, conn, &control.ExecuteParams{
		Command: control.CommandSetSpeed,
		Rate:    input.Rate,
	})
}

func (c controller) handleFullscreen(ctx context.Context, conn *wsrouter.Conn, input FullscreenInput) error {
	return c.execute(ctx, conn, &control.ExecuteParams{
		Command: control.CommandFullscreen,
		Resume:  input.Resume,
	})
}

// handleWaitForVideo answers from its own goroutine so the connection keeps
// serving other messages while the page loads.
func (c controller) handleWaitForVideo(ctx context.Context, conn *wsrouter.Conn, input WaitForVideoInput) error {
	timeout := discovery.DefaultTimeout
	if input.TimeoutMs != nil {
		timeout = time.Duration(*input.TimeoutMs) * time.Millisecond
	}

	sessionId := c.getSessionIdFromCtx(ctx)
	go func() {
		if err := c.controlService.WaitForVideo(ctx, sessionId, timeout); err != nil {
			c.handleError(ctx, conn, fmt.Errorf("failed to wait for video: %w", err))
			return
		}

		if err := c.writeToConn(ctx, conn, &Output{
			Type:    "VIDEO_READY",
			Payload: nil,
		}); err != nil {
			c.logger.DebugContext(ctx, "failed to write video ready", "error", err)
		}
	}()

	return nil
}

func (c controller) handleGetState(ctx context.Context, conn *wsrouter.Conn, _ EmptyInput) error {
	state, err := c.controlService.GetState(ctx, c.getSessionIdFromCtx(ctx))
	if err != nil {
		return fmt.Errorf("failed to get state: %w", err)
	}

	return c.writeToConn(ctx, conn, &Output{
		Type: "PLAYER_STATE",
		Payload: map[string]any{
			"state": state,
		},
	})
}

func (c controller) handleError(ctx context.Context, conn *wsrouter.Conn, err error) {
	c.logger.InfoContext(ctx, "websocket message failed", "error", err)

	if err := c.writeToConn(ctx, conn, &Output{
		Type: "ERROR",
		Payload: map[string]any{
			"message": err.Error(),
			"type":    wsrouter.GetMessageTypeFromCtx(ctx),
		},
	}); err != nil {
		c.logger.DebugContext(ctx, "failed to write error", "error", err)
	}
}
