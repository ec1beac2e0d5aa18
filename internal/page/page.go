// Package page describes the slice of a web document the player controller
// needs: video elements, their layout, a handful of chrome elements and the
// current location. Implementations may be local (tests) or remote (the
// websocket bridge), so every call takes a context and may fail.
package page

import "context"

type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (r Rect) Top() float64 {
	return r.Y
}

func (r Rect) Bottom() float64 {
	return r.Y + r.Height
}

// Style is the computed style subset used by video discovery.
type Style struct {
	Visibility string `json:"visibility"`
	Display    string `json:"display"`
}

type KeyEvent struct {
	Type       string `json:"type"`
	Key        string `json:"key"`
	Code       string `json:"code"`
	KeyCode    int    `json:"key_code"`
	ShiftKey   bool   `json:"shift_key"`
	Bubbles    bool   `json:"bubbles"`
	Cancelable bool   `json:"cancelable"`
}

type PlaybackQuality struct {
	TotalVideoFrames   int `json:"total_video_frames"`
	DroppedVideoFrames int `json:"dropped_video_frames"`
}

type Element interface {
	Click(ctx context.Context) error
	HasClass(ctx context.Context, class string) (bool, error)
	SetStyle(ctx context.Context, property, value string) error
}

type Video interface {
	Element

	BoundingRect(ctx context.Context) (Rect, error)
	ComputedStyle(ctx context.Context) (Style, error)
	HasOffsetParent(ctx context.Context) (bool, error)

	Paused(ctx context.Context) (bool, error)
	Play(ctx context.Context) error
	Pause(ctx context.Context) error

	CurrentTime(ctx context.Context) (float64, error)
	SetCurrentTime(ctx context.Context, seconds float64) error
	PlaybackRate(ctx context.Context) (float64, error)
	SetPlaybackRate(ctx context.Context, rate float64) error
	Volume(ctx context.Context) (float64, error)
	SetVolume(ctx context.Context, volume float64) error

	// PlaybackQuality reports decoder telemetry. ok is false when the
	// element does not expose any.
	PlaybackQuality(ctx context.Context) (q PlaybackQuality, ok bool, err error)

	DispatchKey(ctx context.Context, event KeyEvent) error
}

type Document interface {
	// Videos returns every video element in document order.
	Videos(ctx context.Context) ([]Video, error)
	ViewportHeight(ctx context.Context) (float64, error)
	Location(ctx context.Context) (string, error)

	// QuerySelector returns nil and no error when nothing matches.
	QuerySelector(ctx context.Context, selector string) (Element, error)
	// QuerySelectorAll searches below root, or the whole document when root is nil.
	QuerySelectorAll(ctx context.Context, root Element, selector string) ([]Element, error)

	FullscreenActive(ctx context.Context) (bool, error)
	ExitFullscreen(ctx context.Context) error
}
