package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sharetube/playerctl/internal/repository/state"
)

type repo struct {
	rc             *redis.Client
	expireDuration time.Duration
}

func NewRepo(rc *redis.Client, expireDuration time.Duration) *repo {
	return &repo{
		rc:             rc,
		expireDuration: expireDuration,
	}
}

func (r repo) getPlayerKey(sessionID string) string {
	return "session:" + sessionID + ":player"
}

func (r repo) executePipe(ctx context.Context, pipe redis.Pipeliner) error {
	cmds, err := pipe.Exec(ctx)
	if err != nil {
		for _, cmd := range cmds {
			if err := cmd.Err(); err != nil {
				return err
			}
		}

		return err
	}

	return nil
}

func (r repo) SetPlayer(ctx context.Context, params *state.SetPlayerParams) error {
	funcName := "state.redis.SetPlayer"
	slog.DebugContext(ctx, funcName, "session_id", params.SessionID)

	playerKey := r.getPlayerKey(params.SessionID)
	pipe := r.rc.TxPipeline()
	pipe.HSet(ctx, playerKey, params.Player)
	pipe.Expire(ctx, playerKey, r.expireDuration)

	if err := r.executePipe(ctx, pipe); err != nil {
		return fmt.Errorf("failed to set player: %w", err)
	}

	return nil
}

func (r repo) GetPlayer(ctx context.Context, sessionID string) (state.Player, error) {
	funcName := "state.redis.GetPlayer"
	slog.DebugContext(ctx, funcName, "session_id", sessionID)

	playerKey := r.getPlayerKey(sessionID)
	res := r.rc.HGetAll(ctx, playerKey)
	if err := res.Err(); err != nil {
		return state.Player{}, fmt.Errorf("failed to get player: %w", err)
	}

	if len(res.Val()) == 0 {
		return state.Player{}, state.ErrStateNotFound
	}

	var player state.Player
	if err := res.Scan(&player); err != nil {
		return state.Player{}, fmt.Errorf("failed to scan player: %w", err)
	}

	r.rc.Expire(ctx, playerKey, r.expireDuration)

	return player, nil
}

func (r repo) RemovePlayer(ctx context.Context, sessionID string) error {
	funcName := "state.redis.RemovePlayer"
	slog.DebugContext(ctx, funcName, "session_id", sessionID)

	res, err := r.rc.Del(ctx, r.getPlayerKey(sessionID)).Result()
	if err != nil {
		return fmt.Errorf("failed to remove player: %w", err)
	}

	if res == 0 {
		return state.ErrStateNotFound
	}

	return nil
}
