package memory

import (
	"context"
	"errors"

	"github.com/sharetube/playerctl/internal/page"
)

var (
	ErrIndexSize    = errors.New("value outside of the allowed range")
	ErrNotSupported = errors.New("operation is not supported")
)

// VideoState mirrors the media element properties the controller touches.
type VideoState struct {
	Paused       bool
	CurrentTime  float64
	Duration     float64
	PlaybackRate float64
	Volume       float64
}

type Video struct {
	*Element

	rect     page.Rect
	style    page.Style
	attached bool
	state    VideoState
	quality  *page.PlaybackQuality
	events   []page.KeyEvent
	onKey    func(page.KeyEvent)
}

func (v *Video) SetRect(rect page.Rect) {
	v.doc.mu.Lock()
	defer v.doc.mu.Unlock()

	v.rect = rect
}

func (v *Video) SetComputedStyle(style page.Style) {
	v.doc.mu.Lock()
	defer v.doc.mu.Unlock()

	v.style = style
}

// SetAttached controls whether the element has an offset parent.
func (v *Video) SetAttached(attached bool) {
	v.doc.mu.Lock()
	defer v.doc.mu.Unlock()

	v.attached = attached
}

func (v *Video) SetState(state VideoState) {
	v.doc.mu.Lock()
	defer v.doc.mu.Unlock()

	v.state = state
}

func (v *Video) State() VideoState {
	v.doc.mu.Lock()
	defer v.doc.mu.Unlock()

	return v.state
}

// SetQuality sets decoder telemetry; nil means the element exposes none.
func (v *Video) SetQuality(q *page.PlaybackQuality) {
	v.doc.mu.Lock()
	defer v.doc.mu.Unlock()

	v.quality = q
}

// OnKey registers a listener standing in for the host page's shortcut handler.
func (v *Video) OnKey(fn func(page.KeyEvent)) {
	v.doc.mu.Lock()
	defer v.doc.mu.Unlock()

	v.onKey = fn
}

// Events returns every key event dispatched on the video.
func (v *Video) Events() []page.KeyEvent {
	v.doc.mu.Lock()
	defer v.doc.mu.Unlock()

	return append([]page.KeyEvent(nil), v.events...)
}

func (v *Video) BoundingRect(_ context.Context) (page.Rect, error) {
	v.doc.mu.Lock()
	defer v.doc.mu.Unlock()

	return v.rect, nil
}

func (v *Video) ComputedStyle(_ context.Context) (page.Style, error) {
	v.doc.mu.Lock()
	defer v.doc.mu.Unlock()

	return v.style, nil
}

func (v *Video) HasOffsetParent(_ context.Context) (bool, error) {
	v.doc.mu.Lock()
	defer v.doc.mu.Unlock()

	return v.attached && !v.removed && v.style.Display != "none", nil
}

func (v *Video) Paused(_ context.Context) (bool, error) {
	v.doc.mu.Lock()
	defer v.doc.mu.Unlock()

	return v.state.Paused, nil
}

func (v *Video) Play(_ context.Context) error {
	v.doc.mu.Lock()
	defer v.doc.mu.Unlock()

	v.state.Paused = false
	return nil
}

func (v *Video) Pause(_ context.Context) error {
	v.doc.mu.Lock()
	defer v.doc.mu.Unlock()

	v.state.Paused = true
	return nil
}

func (v *Video) CurrentTime(_ context.Context) (float64, error) {
	v.doc.mu.Lock()
	defer v.doc.mu.Unlock()

	return v.state.CurrentTime, nil
}

// SetCurrentTime clamps to [0, duration] like a media element does. A zero
// duration means unknown and only the lower bound applies.
func (v *Video) SetCurrentTime(_ context.Context, seconds float64) error {
	v.doc.mu.Lock()
	defer v.doc.mu.Unlock()

	seconds = max(seconds, 0)
	if v.state.Duration > 0 {
		seconds = min(seconds, v.state.Duration)
	}
	v.state.CurrentTime = seconds

	return nil
}

func (v *Video) PlaybackRate(_ context.Context) (float64, error) {
	v.doc.mu.Lock()
	defer v.doc.mu.Unlock()

	return v.state.PlaybackRate, nil
}

func (v *Video) SetPlaybackRate(_ context.Context, rate float64) error {
	v.doc.mu.Lock()
	defer v.doc.mu.Unlock()

	if rate <= 0 {
		return ErrNotSupported
	}
	v.state.PlaybackRate = rate

	return nil
}

func (v *Video) Volume(_ context.Context) (float64, error) {
	v.doc.mu.Lock()
	defer v.doc.mu.Unlock()

	return v.state.Volume, nil
}

func (v *Video) SetVolume(_ context.Context, volume float64) error {
	v.doc.mu.Lock()
	defer v.doc.mu.Unlock()

	if volume < 0 || volume > 1 {
		return ErrIndexSize
	}
	v.state.Volume = volume

	return nil
}

func (v *Video) PlaybackQuality(_ context.Context) (page.PlaybackQuality, bool, error) {
	v.doc.mu.Lock()
	defer v.doc.mu.Unlock()

	if v.quality == nil {
		return page.PlaybackQuality{}, false, nil
	}

	return *v.quality, true, nil
}

func (v *Video) DispatchKey(_ context.Context, event page.KeyEvent) error {
	v.doc.mu.Lock()
	v.events = append(v.events, event)
	fn := v.onKey
	v.doc.mu.Unlock()

	if fn != nil && event.Bubbles {
		fn(event)
	}

	return nil
}
