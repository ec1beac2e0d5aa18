package inmemory

import (
	"log/slog"
	"sync"

	"github.com/sharetube/playerctl/internal/repository/connection"
	"github.com/sharetube/playerctl/pkg/wsrouter"
)

// repo tracks controller connections and the session each one controls.
type repo struct {
	connList map[*wsrouter.Conn]string
	idList   map[string]map[*wsrouter.Conn]struct{}
	mu       sync.RWMutex
}

func NewRepo() *repo {
	return &repo{
		connList: make(map[*wsrouter.Conn]string),
		idList:   make(map[string]map[*wsrouter.Conn]struct{}),
	}
}

func (r *repo) Add(conn *wsrouter.Conn, sessionID string) error {
	funcName := "connection.inmemory.Add"
	r.mu.Lock()
	defer r.mu.Unlock()

	slog.Debug(funcName, "session_id", sessionID)
	if _, ok := r.connList[conn]; ok {
		slog.Info(funcName, "error", connection.ErrAlreadyExists)
		return connection.ErrAlreadyExists
	}

	r.connList[conn] = sessionID
	if r.idList[sessionID] == nil {
		r.idList[sessionID] = make(map[*wsrouter.Conn]struct{})
	}
	r.idList[sessionID][conn] = struct{}{}

	return nil
}

func (r *repo) RemoveByConn(conn *wsrouter.Conn) error {
	funcName := "connection.inmemory.RemoveByConn"
	r.mu.Lock()
	defer r.mu.Unlock()

	sessionID, ok := r.connList[conn]
	if !ok {
		slog.Info(funcName, "error", connection.ErrNotFound)
		return connection.ErrNotFound
	}

	delete(r.connList, conn)
	delete(r.idList[sessionID], conn)
	if len(r.idList[sessionID]) == 0 {
		delete(r.idList, sessionID)
	}

	slog.Debug(funcName, "session_id", sessionID)
	return nil
}

// RemoveBySessionID closes and forgets every connection of the session.
func (r *repo) RemoveBySessionID(sessionID string) int {
	funcName := "connection.inmemory.RemoveBySessionID"
	r.mu.Lock()
	defer r.mu.Unlock()

	conns := r.idList[sessionID]
	for conn := range conns {
		conn.Close()
		delete(r.connList, conn)
	}
	delete(r.idList, sessionID)

	slog.Debug(funcName, "session_id", sessionID, "closed", len(conns))
	return len(conns)
}

func (r *repo) GetSessionID(conn *wsrouter.Conn) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sessionID, ok := r.connList[conn]
	if !ok {
		return "", connection.ErrNotFound
	}

	return sessionID, nil
}

// GetConns returns the connections of the session, or nil when it has none.
func (r *repo) GetConns(sessionID string) []*wsrouter.Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := make([]*wsrouter.Conn, 0, len(r.idList[sessionID]))
	for conn := range r.idList[sessionID] {
		conns = append(conns, conn)
	}

	return conns
}
