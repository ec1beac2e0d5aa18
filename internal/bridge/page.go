package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sharetube/playerctl/internal/page"
)

const DefaultCallTimeout = 5 * time.Second

// Page is a page.Document served by a remote agent. Run must be running for
// calls to complete.
type Page struct {
	conn        *websocket.Conn
	callTimeout time.Duration
	logger      *slog.Logger

	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[string]chan Response
	err     error
	done    chan struct{}
}

func NewPage(conn *websocket.Conn, callTimeout time.Duration, logger *slog.Logger) *Page {
	if callTimeout <= 0 {
		callTimeout = DefaultCallTimeout
	}

	return &Page{
		conn:        conn,
		callTimeout: callTimeout,
		logger:      logger,
		pending:     make(map[string]chan Response),
		done:        make(chan struct{}),
	}
}

// Run reads responses until the connection fails or Close is called, then
// fails every pending call. It returns the read error.
func (p *Page) Run(ctx context.Context) error {
	funcName := "bridge.Page.Run"

	for {
		var resp Response
		if err := p.conn.ReadJSON(&resp); err != nil {
			p.shutdown(err)
			return err
		}

		p.mu.Lock()
		ch, ok := p.pending[resp.ID]
		delete(p.pending, resp.ID)
		p.mu.Unlock()

		if !ok {
			p.logger.DebugContext(ctx, funcName, "unexpected_response_id", resp.ID)
			continue
		}

		ch <- resp
	}
}

func (p *Page) shutdown(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.err != nil {
		return
	}

	p.err = err
	close(p.done)
	p.pending = make(map[string]chan Response)
}

// Done is closed once the bridge stops serving calls.
func (p *Page) Done() <-chan struct{} {
	return p.done
}

func (p *Page) Close() error {
	p.shutdown(ErrClosed)
	return p.conn.Close()
}

// Notify sends a one-way message to the agent.
func (p *Page) Notify(method string, payload any) error {
	args, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", method, err)
	}

	return p.write(Request{Method: method, Args: args})
}

func (p *Page) write(req Request) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	if err := p.conn.SetWriteDeadline(time.Now().Add(p.callTimeout)); err != nil {
		return err
	}

	return p.conn.WriteJSON(req)
}

func (p *Page) call(ctx context.Context, method, handle string, args any, out any) error {
	ctx, cancel := context.WithTimeout(ctx, p.callTimeout)
	defer cancel()

	req := Request{
		ID:     uuid.NewString(),
		Method: method,
		Handle: handle,
	}

	if args != nil {
		raw, err := json.Marshal(args)
		if err != nil {
			return fmt.Errorf("failed to marshal %s args: %w", method, err)
		}
		req.Args = raw
	}

	ch := make(chan Response, 1)

	p.mu.Lock()
	if p.err != nil {
		p.mu.Unlock()
		return ErrClosed
	}
	p.pending[req.ID] = ch
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		delete(p.pending, req.ID)
		p.mu.Unlock()
	}()

	if err := p.write(req); err != nil {
		return fmt.Errorf("failed to send %s: %w", method, err)
	}

	var resp Response
	select {
	case resp = <-ch:
	case <-p.done:
		return ErrClosed
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", method, ctx.Err())
	}

	if resp.Error != "" {
		return &RemoteError{Method: method, Message: resp.Error}
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(resp.Result, out); err != nil {
		return fmt.Errorf("failed to decode %s result: %w", method, err)
	}

	return nil
}

func (p *Page) element(handle string) *element {
	return &element{page: p, handle: handle}
}

func (p *Page) Videos(ctx context.Context) ([]page.Video, error) {
	var handles []string
	if err := p.call(ctx, methodVideos, "", nil, &handles); err != nil {
		return nil, err
	}

	videos := make([]page.Video, 0, len(handles))
	for _, h := range handles {
		videos = append(videos, &video{element: p.element(h)})
	}

	return videos, nil
}

func (p *Page) ViewportHeight(ctx context.Context) (float64, error) {
	var h float64
	err := p.call(ctx, methodViewportHeight, "", nil, &h)
	return h, err
}

func (p *Page) Location(ctx context.Context) (string, error) {
	var href string
	err := p.call(ctx, methodLocation, "", nil, &href)
	return href, err
}

func (p *Page) QuerySelector(ctx context.Context, selector string) (page.Element, error) {
	var handle string
	if err := p.call(ctx, methodQuery, "", selectorArgs{Selector: selector}, &handle); err != nil {
		return nil, err
	}

	if handle == "" {
		return nil, nil
	}

	return p.element(handle), nil
}

func (p *Page) QuerySelectorAll(ctx context.Context, root page.Element, selector string) ([]page.Element, error) {
	args := selectorArgs{Selector: selector}
	if root != nil {
		h, err := handleOf(root)
		if err != nil {
			return nil, err
		}
		args.Root = h
	}

	var handles []string
	if err := p.call(ctx, methodQueryAll, "", args, &handles); err != nil {
		return nil, err
	}

	elements := make([]page.Element, 0, len(handles))
	for _, h := range handles {
		elements = append(elements, p.element(h))
	}

	return elements, nil
}

func (p *Page) FullscreenActive(ctx context.Context) (bool, error) {
	var active bool
	err := p.call(ctx, methodFullscreenActive, "", nil, &active)
	return active, err
}

func (p *Page) ExitFullscreen(ctx context.Context) error {
	return p.call(ctx, methodExitFullscreen, "", nil, nil)
}

func handleOf(el page.Element) (string, error) {
	switch e := el.(type) {
	case *element:
		return e.handle, nil
	case *video:
		return e.handle, nil
	default:
		return "", errors.New("element is not from this bridge")
	}
}

type element struct {
	page   *Page
	handle string
}

func (e *element) Click(ctx context.Context) error {
	return e.page.call(ctx, methodClick, e.handle, nil, nil)
}

func (e *element) HasClass(ctx context.Context, class string) (bool, error) {
	var has bool
	err := e.page.call(ctx, methodHasClass, e.handle, classArgs{Class: class}, &has)
	return has, err
}

func (e *element) SetStyle(ctx context.Context, property, value string) error {
	return e.page.call(ctx, methodSetStyle, e.handle, styleArgs{Property: property, Value: value}, nil)
}

type video struct {
	*element
}

func (v *video) BoundingRect(ctx context.Context) (page.Rect, error) {
	var rect page.Rect
	err := v.page.call(ctx, methodRect, v.handle, nil, &rect)
	return rect, err
}

func (v *video) ComputedStyle(ctx context.Context) (page.Style, error) {
	var style page.Style
	err := v.page.call(ctx, methodComputedStyle, v.handle, nil, &style)
	return style, err
}

func (v *video) HasOffsetParent(ctx context.Context) (bool, error) {
	var has bool
	err := v.page.call(ctx, methodHasOffsetParent, v.handle, nil, &has)
	return has, err
}

func (v *video) Paused(ctx context.Context) (bool, error) {
	var paused bool
	err := v.page.call(ctx, methodPaused, v.handle, nil, &paused)
	return paused, err
}

func (v *video) Play(ctx context.Context) error {
	return v.page.call(ctx, methodPlay, v.handle, nil, nil)
}

func (v *video) Pause(ctx context.Context) error {
	return v.page.call(ctx, methodPause, v.handle, nil, nil)
}

func (v *video) get(ctx context.Context, property string) (float64, error) {
	var value float64
	err := v.page.call(ctx, methodGet, v.handle, propertyArgs{Property: property}, &value)
	return value, err
}

func (v *video) set(ctx context.Context, property string, value float64) error {
	return v.page.call(ctx, methodSet, v.handle, setPropertyArgs{Property: property, Value: value}, nil)
}

func (v *video) CurrentTime(ctx context.Context) (float64, error) {
	return v.get(ctx, propCurrentTime)
}

func (v *video) SetCurrentTime(ctx context.Context, seconds float64) error {
	return v.set(ctx, propCurrentTime, seconds)
}

func (v *video) PlaybackRate(ctx context.Context) (float64, error) {
	return v.get(ctx, propPlaybackRate)
}

func (v *video) SetPlaybackRate(ctx context.Context, rate float64) error {
	return v.set(ctx, propPlaybackRate, rate)
}

func (v *video) Volume(ctx context.Context) (float64, error) {
	return v.get(ctx, propVolume)
}

func (v *video) SetVolume(ctx context.Context, volume float64) error {
	return v.set(ctx, propVolume, volume)
}

func (v *video) PlaybackQuality(ctx context.Context) (page.PlaybackQuality, bool, error) {
	var res qualityResult
	if err := v.page.call(ctx, methodQuality, v.handle, nil, &res); err != nil {
		return page.PlaybackQuality{}, false, err
	}

	return res.Quality, res.Available, nil
}

func (v *video) DispatchKey(ctx context.Context, event page.KeyEvent) error {
	return v.page.call(ctx, methodDispatchKey, v.handle, event, nil)
}
