package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sharetube/playerctl/internal/page"
)

type NotifyFunc func(method string, args json.RawMessage)

type agentOptions struct {
	onNotify NotifyFunc
}

type AgentOption func(*agentOptions)

// WithNotify sets the callback for one-way messages from the service.
func WithNotify(fn NotifyFunc) AgentOption {
	return func(o *agentOptions) {
		o.onNotify = fn
	}
}

// agent answers bridge requests against a local document.
type agent struct {
	doc  page.Document
	opts agentOptions

	mu       sync.Mutex
	handles  map[page.Element]string
	elements map[string]page.Element
	next     int
}

// Serve answers requests read from conn against doc until the connection
// fails or ctx is done. Requests are handled one at a time in arrival order.
func Serve(ctx context.Context, conn *websocket.Conn, doc page.Document, opts ...AgentOption) error {
	a := &agent{
		doc:      doc,
		handles:  make(map[page.Element]string),
		elements: make(map[string]page.Element),
	}
	for _, opt := range opts {
		opt(&a.opts)
	}

	stop := context.AfterFunc(ctx, func() {
		conn.Close()
	})
	defer stop()

	for {
		var req Request
		if err := conn.ReadJSON(&req); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		if req.ID == "" {
			if a.opts.onNotify != nil {
				a.opts.onNotify(req.Method, req.Args)
			}
			continue
		}

		resp := Response{ID: req.ID}
		result, err := a.handle(ctx, req)
		if err != nil {
			resp.Error = err.Error()
		} else if result != nil {
			raw, err := json.Marshal(result)
			if err != nil {
				resp.Error = err.Error()
			} else {
				resp.Result = raw
			}
		}

		if err := conn.WriteJSON(resp); err != nil {
			return err
		}
	}
}

func (a *agent) register(el page.Element) string {
	a.mu.Lock()
	defer a.mu.Unlock()

	if h, ok := a.handles[el]; ok {
		return h
	}

	a.next++
	h := "el-" + strconv.Itoa(a.next)
	a.handles[el] = h
	a.elements[h] = el

	return h
}

func (a *agent) lookup(handle string) (page.Element, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	el, ok := a.elements[handle]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownHandle, handle)
	}

	return el, nil
}

func (a *agent) lookupVideo(handle string) (page.Video, error) {
	el, err := a.lookup(handle)
	if err != nil {
		return nil, err
	}

	v, ok := el.(page.Video)
	if !ok {
		return nil, fmt.Errorf("element %q is not a video", handle)
	}

	return v, nil
}

func decodeArgs(req Request, v any) error {
	if len(req.Args) == 0 {
		return errors.New("missing args")
	}

	if err := json.Unmarshal(req.Args, v); err != nil {
		return fmt.Errorf("invalid args: %w", err)
	}

	return nil
}

func (a *agent) handle(ctx context.Context, req Request) (any, error) {
	switch req.Method {
	case methodVideos:
		videos, err := a.doc.Videos(ctx)
		if err != nil {
			return nil, err
		}
		handles := make([]string, 0, len(videos))
		for _, v := range videos {
			handles = append(handles, a.register(v))
		}
		return handles, nil
	case methodViewportHeight:
		return a.doc.ViewportHeight(ctx)
	case methodLocation:
		return a.doc.Location(ctx)
	case methodQuery:
		var args selectorArgs
		if err := decodeArgs(req, &args); err != nil {
			return nil, err
		}
		el, err := a.doc.QuerySelector(ctx, args.Selector)
		if err != nil {
			return nil, err
		}
		if el == nil {
			return "", nil
		}
		return a.register(el), nil
	case methodQueryAll:
		return a.queryAll(ctx, req)
	case methodFullscreenActive:
		return a.doc.FullscreenActive(ctx)
	case methodExitFullscreen:
		return nil, a.doc.ExitFullscreen(ctx)
	case methodClick, methodHasClass, methodSetStyle:
		return a.handleElement(ctx, req)
	default:
		return a.handleVideo(ctx, req)
	}
}

func (a *agent) queryAll(ctx context.Context, req Request) (any, error) {
	var args selectorArgs
	if err := decodeArgs(req, &args); err != nil {
		return nil, err
	}

	var root page.Element
	if args.Root != "" {
		var err error
		if root, err = a.lookup(args.Root); err != nil {
			return nil, err
		}
	}

	elements, err := a.doc.QuerySelectorAll(ctx, root, args.Selector)
	if err != nil {
		return nil, err
	}

	handles := make([]string, 0, len(elements))
	for _, el := range elements {
		handles = append(handles, a.register(el))
	}

	return handles, nil
}

func (a *agent) handleElement(ctx context.Context, req Request) (any, error) {
	el, err := a.lookup(req.Handle)
	if err != nil {
		return nil, err
	}

	switch req.Method {
	case methodClick:
		return nil, el.Click(ctx)
	case methodHasClass:
		var args classArgs
		if err := decodeArgs(req, &args); err != nil {
			return nil, err
		}
		return el.HasClass(ctx, args.Class)
	default:
		var args styleArgs
		if err := decodeArgs(req, &args); err != nil {
			return nil, err
		}
		return nil, el.SetStyle(ctx, args.Property, args.Value)
	}
}

func (a *agent) handleVideo(ctx context.Context, req Request) (any, error) {
	switch req.Method {
	case methodRect, methodComputedStyle, methodHasOffsetParent, methodPaused, methodPlay,
		methodPause, methodGet, methodSet, methodQuality, methodDispatchKey:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, req.Method)
	}

	v, err := a.lookupVideo(req.Handle)
	if err != nil {
		return nil, err
	}

	switch req.Method {
	case methodRect:
		return v.BoundingRect(ctx)
	case methodComputedStyle:
		return v.ComputedStyle(ctx)
	case methodHasOffsetParent:
		return v.HasOffsetParent(ctx)
	case methodPaused:
		return v.Paused(ctx)
	case methodPlay:
		return nil, v.Play(ctx)
	case methodPause:
		return nil, v.Pause(ctx)
	case methodGet:
		var args propertyArgs
		if err := decodeArgs(req, &args); err != nil {
			return nil, err
		}
		return getProperty(ctx, v, args.Property)
	case methodSet:
		var args setPropertyArgs
		if err := decodeArgs(req, &args); err != nil {
			return nil, err
		}
		return nil, setProperty(ctx, v, args.Property, args.Value)
	case methodQuality:
		q, ok, err := v.PlaybackQuality(ctx)
		if err != nil {
			return nil, err
		}
		return qualityResult{Quality: q, Available: ok}, nil
	default:
		var event page.KeyEvent
		if err := decodeArgs(req, &event); err != nil {
			return nil, err
		}
		return nil, v.DispatchKey(ctx, event)
	}
}

func getProperty(ctx context.Context, v page.Video, property string) (float64, error) {
	switch property {
	case propCurrentTime:
		return v.CurrentTime(ctx)
	case propPlaybackRate:
		return v.PlaybackRate(ctx)
	case propVolume:
		return v.Volume(ctx)
	default:
		return 0, fmt.Errorf("unknown property %q", property)
	}
}

func setProperty(ctx context.Context, v page.Video, property string, value float64) error {
	switch property {
	case propCurrentTime:
		return v.SetCurrentTime(ctx, value)
	case propPlaybackRate:
		return v.SetPlaybackRate(ctx, value)
	case propVolume:
		return v.SetVolume(ctx, value)
	default:
		return fmt.Errorf("unknown property %q", property)
	}
}
