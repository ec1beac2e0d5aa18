package controller

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/sharetube/playerctl/internal/service/control"
	"github.com/sharetube/playerctl/pkg/wsrouter"
	"github.com/sourcegraph/conc/pool"
)

var ErrValidationError = errors.New("validation error")

type Output struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

func (c controller) generateTimeBasedId() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return id.String()
}

func (c controller) writeToConn(_ context.Context, conn *wsrouter.Conn, output *Output) error {
	return conn.WriteJSON(output)
}

// broadcast writes output to every conn concurrently and returns the joined
// write errors.
func (c controller) broadcast(ctx context.Context, conns []*wsrouter.Conn, output *Output) error {
	p := pool.New().WithErrors().WithMaxGoroutines(8)
	for _, conn := range conns {
		conn := conn
		p.Go(func() error {
			return c.writeToConn(ctx, conn, output)
		})
	}

	return p.Wait()
}

func bearerToken(r *http.Request) string {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return ""
	}

	return token
}

func authStatus(err error) int {
	switch {
	case errors.Is(err, control.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, control.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, control.ErrInvalidToken):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
