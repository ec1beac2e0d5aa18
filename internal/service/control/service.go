package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mssola/useragent"
	"github.com/sharetube/playerctl/internal/chrome"
	"github.com/sharetube/playerctl/internal/discovery"
	"github.com/sharetube/playerctl/internal/page"
	"github.com/sharetube/playerctl/internal/player"
	"github.com/sharetube/playerctl/internal/repository/session"
	"github.com/sharetube/playerctl/internal/repository/state"
	"github.com/sharetube/playerctl/pkg/wsrouter"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrUnknownCommand   = errors.New("unknown command")
	ErrPermissionDenied = errors.New("permission denied")
)

type iStateRepo interface {
	SetPlayer(context.Context, *state.SetPlayerParams) error
	GetPlayer(context.Context, string) (state.Player, error)
	RemovePlayer(context.Context, string) error
}

type iSessionRepo interface {
	Add(string, *Session) error
	Get(string) (*Session, error)
	Remove(string) (*Session, error)
	Len() int
}

type iConnRepo interface {
	Add(*wsrouter.Conn, string) error
	RemoveByConn(*wsrouter.Conn) error
	RemoveBySessionID(string) int
	GetConns(string) []*wsrouter.Conn
}

// Session is one connected page and the player driving it.
type Session struct {
	ID          string
	Agent       string
	ConnectedAt time.Time

	mu     sync.Mutex
	doc    page.Document
	player *player.Player
	waiter *discovery.Waiter
}

type Config struct {
	Secret    string
	Player    player.Config
	Selectors chrome.Selectors
	// PollInterval overrides the video wait poll interval when positive.
	PollInterval time.Duration
}

type service struct {
	stateRepo   iStateRepo
	sessionRepo iSessionRepo
	connRepo    iConnRepo
	secret      string
	playerCfg   player.Config
	selectors   chrome.Selectors
	waiter      *discovery.Waiter
	commands    map[Command]commandFunc
}

func NewService(stateRepo iStateRepo, sessionRepo iSessionRepo, connRepo iConnRepo, cfg *Config) *service {
	waiter := discovery.NewWaiter()
	if cfg.PollInterval > 0 {
		waiter.Interval = cfg.PollInterval
	}

	s := service{
		stateRepo:   stateRepo,
		sessionRepo: sessionRepo,
		connRepo:    connRepo,
		secret:      cfg.Secret,
		playerCfg:   cfg.Player,
		selectors:   cfg.Selectors,
		waiter:      waiter,
	}
	s.commands = s.commandTable()

	return &s
}

func describeAgent(userAgent string) string {
	if userAgent == "" {
		return "unknown"
	}

	ua := useragent.New(userAgent)
	name, version := ua.Browser()
	desc := name + " " + version
	if os := ua.OS(); os != "" {
		desc += " (" + os + ")"
	}
	if ua.Mobile() {
		desc += " mobile"
	}

	return desc
}

// Connect registers a page and returns the id and control token of its new
// session.
func (s service) Connect(ctx context.Context, params *ConnectParams) (ConnectResponse, error) {
	funcName := "control.Connect"

	doc := params.Page
	sess := &Session{
		ID:          uuid.NewString(),
		Agent:       describeAgent(params.UserAgent),
		ConnectedAt: time.Now(),
		doc:         doc,
		waiter:      s.waiter,
	}
	sess.player = player.New(
		player.Resolver(func(ctx context.Context) (page.Video, error) {
			return discovery.FindActiveVideo(ctx, doc)
		}),
		doc,
		chrome.NewLocator(doc, s.selectors),
		s.playerCfg,
	)

	token, err := s.generateJWT(sess.ID)
	if err != nil {
		return ConnectResponse{}, fmt.Errorf("failed to generate control token: %w", err)
	}

	if err := s.sessionRepo.Add(sess.ID, sess); err != nil {
		return ConnectResponse{}, fmt.Errorf("failed to add session: %w", err)
	}

	slog.InfoContext(ctx, funcName, "session_id", sess.ID, "agent", sess.Agent, "sessions", s.sessionRepo.Len())

	return ConnectResponse{
		SessionID:    sess.ID,
		ControlToken: token,
	}, nil
}

// Disconnect forgets the session, closes its controllers and drops its
// stored state.
func (s service) Disconnect(ctx context.Context, sessionID string) error {
	funcName := "control.Disconnect"

	if _, err := s.sessionRepo.Remove(sessionID); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return ErrSessionNotFound
		}
		return err
	}

	closed := s.connRepo.RemoveBySessionID(sessionID)

	if err := s.stateRepo.RemovePlayer(ctx, sessionID); err != nil && !errors.Is(err, state.ErrStateNotFound) {
		slog.WarnContext(ctx, funcName, "session_id", sessionID, "error", err)
	}

	slog.InfoContext(ctx, funcName, "session_id", sessionID, "closed_controllers", closed)

	return nil
}

func (s service) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessionRepo.Get(sessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	return sess, nil
}

// Authorize checks that token was issued for sessionID and that the session
// is still connected.
func (s service) Authorize(token, sessionID string) error {
	claims, err := s.parseJWT(token)
	if err != nil {
		return err
	}

	if claims.SessionID != sessionID {
		return ErrPermissionDenied
	}

	_, err = s.getSession(sessionID)
	return err
}

// ConnectController attaches an authorized controller connection to its
// session.
func (s service) ConnectController(params *ConnectControllerParams) error {
	if err := s.Authorize(params.Token, params.SessionID); err != nil {
		return err
	}

	return s.connRepo.Add(params.Conn, params.SessionID)
}

func (s service) DisconnectController(conn *wsrouter.Conn) error {
	return s.connRepo.RemoveByConn(conn)
}

// Execute runs one command against the session's player. Commands of one
// session run one at a time.
func (s service) Execute(ctx context.Context, params *ExecuteParams) (ExecuteResponse, error) {
	funcName := "control.Execute"

	cmd, ok := s.commands[params.Command]
	if !ok {
		return ExecuteResponse{}, fmt.Errorf("%w: %s", ErrUnknownCommand, params.Command)
	}

	sess, err := s.getSession(params.SessionID)
	if err != nil {
		return ExecuteResponse{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	result, err := cmd(ctx, sess.player, params)
	if err != nil {
		return ExecuteResponse{}, err
	}
	result.Command = params.Command

	st, err := s.snapshot(ctx, sess)
	if err != nil {
		slog.WarnContext(ctx, funcName, "session_id", sess.ID, "command", params.Command, "error", err)
	} else {
		result.State = &st
	}

	return ExecuteResponse{
		Result: result,
		Conns:  s.otherConns(sess.ID, params.Sender),
	}, nil
}

func (s service) otherConns(sessionID string, sender *wsrouter.Conn) []*wsrouter.Conn {
	conns := s.connRepo.GetConns(sessionID)
	others := make([]*wsrouter.Conn, 0, len(conns))
	for _, conn := range conns {
		if conn != sender {
			others = append(others, conn)
		}
	}

	return others
}

// snapshot reads the live state and stores it. Callers hold sess.mu.
func (s service) snapshot(ctx context.Context, sess *Session) (player.State, error) {
	st, err := sess.player.Snapshot(ctx)
	if err != nil {
		return player.State{}, err
	}

	if err := s.stateRepo.SetPlayer(ctx, &state.SetPlayerParams{
		SessionID: sess.ID,
		Player:    toStored(st),
	}); err != nil {
		return player.State{}, fmt.Errorf("failed to store state: %w", err)
	}

	return st, nil
}

// WaitForVideo blocks until the session's page shows an active video or
// timeout passes. A zero timeout checks once.
func (s service) WaitForVideo(ctx context.Context, sessionID string, timeout time.Duration) error {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return err
	}

	_, err = sess.waiter.Wait(ctx, sess.doc, timeout)
	return err
}

// GetState reads the live player state of the session.
func (s service) GetState(ctx context.Context, sessionID string) (player.State, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return player.State{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	return s.snapshot(ctx, sess)
}

// GetStoredState returns the last state recorded for the session and the
// unix time it was recorded at.
func (s service) GetStoredState(ctx context.Context, sessionID string) (player.State, int64, error) {
	stored, err := s.stateRepo.GetPlayer(ctx, sessionID)
	if err != nil {
		return player.State{}, 0, err
	}

	return fromStored(stored), stored.UpdatedAt, nil
}

func toStored(st player.State) state.Player {
	return state.Player{
		VideoID:         st.VideoID,
		IsShorts:        st.IsShorts,
		Status:          int(st.Status),
		IsPlaying:       st.IsPlaying,
		CurrentTime:     st.CurrentTime,
		PlaybackRate:    st.PlaybackRate,
		Volume:          st.Volume,
		ControlsVisible: st.ControlsVisible,
		UpdatedAt:       time.Now().Unix(),
	}
}

func fromStored(p state.Player) player.State {
	return player.State{
		VideoID:         p.VideoID,
		IsShorts:        p.IsShorts,
		Status:          player.PlaybackState(p.Status),
		IsPlaying:       p.IsPlaying,
		CurrentTime:     p.CurrentTime,
		PlaybackRate:    p.PlaybackRate,
		Volume:          p.Volume,
		ControlsVisible: p.ControlsVisible,
	}
}
