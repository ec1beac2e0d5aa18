// Package player controls the host page's video player. Seek, speed and
// volume operations either replay the host's keyboard shortcut or change the
// media element directly, depending on the page and on whether the caller
// gave an explicit magnitude.
//
// Every operation first resolves the Player's Target and returns ErrNoVideo
// when there is nothing to control, including operations that only touch
// the host chrome. Missing chrome elements are not errors.
package player

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sharetube/playerctl/internal/chrome"
	"github.com/sharetube/playerctl/internal/location"
	"github.com/sharetube/playerctl/internal/page"
)

// MinPlaybackRate is the floor direct-mode speed changes never go below.
const MinPlaybackRate = 0.0625

var ErrInvalidRate = errors.New("playback rate must be greater than 0")

type Config struct {
	SeekStep   float64 `json:"seek_step"`
	SpeedStep  float64 `json:"speed_step"`
	VolumeStep float64 `json:"volume_step"`
}

func DefaultConfig() Config {
	return Config{
		SeekStep:   5,
		SpeedStep:  0.25,
		VolumeStep: 0.2,
	}
}

// Player is not safe for concurrent use.
type Player struct {
	target          Target
	doc             page.Document
	chrome          *chrome.Locator
	cfg             Config
	controlsVisible bool
}

func New(target Target, doc page.Document, locator *chrome.Locator, cfg Config) *Player {
	return &Player{
		target:          target,
		doc:             doc,
		chrome:          locator,
		cfg:             cfg,
		controlsVisible: true,
	}
}

func (p *Player) ControlsVisible() bool {
	return p.controlsVisible
}

func (p *Player) isShorts(ctx context.Context) (bool, error) {
	href, err := p.doc.Location(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get location: %w", err)
	}

	return location.IsShorts(href), nil
}

// prepare resolves the target and picks the mode for one call.
func (p *Player) prepare(ctx context.Context, explicit bool) (page.Video, Mode, error) {
	video, err := p.target.Resolve(ctx)
	if err != nil {
		return nil, 0, err
	}

	shorts, err := p.isShorts(ctx)
	if err != nil {
		return nil, 0, err
	}

	return video, resolveMode(explicit, shorts), nil
}

func dispatch(ctx context.Context, video page.Video, key page.KeyEvent) (Result, error) {
	if err := video.DispatchKey(ctx, key); err != nil {
		return Result{}, fmt.Errorf("failed to dispatch %s: %w", key.Code, err)
	}

	return Result{Mode: ModeSynthetic}, nil
}

type property struct {
	name string
	get  func(page.Video, context.Context) (float64, error)
	set  func(page.Video, context.Context, float64) error
}

var (
	currentTime = property{
		name: "current time",
		get:  page.Video.CurrentTime,
		set:  page.Video.SetCurrentTime,
	}
	playbackRate = property{
		name: "playback rate",
		get:  page.Video.PlaybackRate,
		set:  page.Video.SetPlaybackRate,
	}
	volume = property{
		name: "volume",
		get:  page.Video.Volume,
		set:  page.Video.SetVolume,
	}
)

// update applies fn to the property and reads the element's value back, so
// the result reflects any clamping done by the element itself.
func update(ctx context.Context, video page.Video, prop property, fn func(float64) float64) (Result, error) {
	cur, err := prop.get(video, ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to get %s: %w", prop.name, err)
	}

	if err := prop.set(video, ctx, fn(cur)); err != nil {
		return Result{}, fmt.Errorf("failed to set %s: %w", prop.name, err)
	}

	value, err := prop.get(video, ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to get %s: %w", prop.name, err)
	}

	return Result{Mode: ModeDirect, Value: &value}, nil
}

func (p *Player) adjust(ctx context.Context, amount Amount, key page.KeyEvent, prop property, fn func(cur, step float64) float64, step float64) (Result, error) {
	video, mode, err := p.prepare(ctx, amount.Explicit())
	if err != nil {
		return Result{}, err
	}

	if mode == ModeSynthetic {
		return dispatch(ctx, video, key)
	}

	step = amount.or(step)
	return update(ctx, video, prop, func(cur float64) float64 {
		return fn(cur, step)
	})
}

func add(cur, step float64) float64 {
	return cur + step
}

func sub(cur, step float64) float64 {
	return cur - step
}

func (p *Player) Rewind(ctx context.Context, seconds Amount) (Result, error) {
	return p.adjust(ctx, seconds, KeySeekBackward, currentTime, sub, p.cfg.SeekStep)
}

func (p *Player) FastForward(ctx context.Context, seconds Amount) (Result, error) {
	return p.adjust(ctx, seconds, KeySeekForward, currentTime, add, p.cfg.SeekStep)
}

func (p *Player) IncreaseSpeed(ctx context.Context, rate Amount) (Result, error) {
	return p.adjust(ctx, rate, KeySpeedIncrease, playbackRate, func(cur, step float64) float64 {
		return max(cur+step, MinPlaybackRate)
	}, p.cfg.SpeedStep)
}

func (p *Player) DecreaseSpeed(ctx context.Context, rate Amount) (Result, error) {
	return p.adjust(ctx, rate, KeySpeedDecrease, playbackRate, func(cur, step float64) float64 {
		return max(cur-step, MinPlaybackRate)
	}, p.cfg.SpeedStep)
}

func (p *Player) VolumeUp(ctx context.Context, increment Amount) (Result, error) {
	return p.adjust(ctx, increment, KeyVolumeUp, volume, func(cur, step float64) float64 {
		return clampVolume(cur + step)
	}, p.cfg.VolumeStep)
}

func (p *Player) VolumeDown(ctx context.Context, increment Amount) (Result, error) {
	return p.adjust(ctx, increment, KeyVolumeDown, volume, func(cur, step float64) float64 {
		return clampVolume(cur - step)
	}, p.cfg.VolumeStep)
}

func clampVolume(v float64) float64 {
	return min(max(v, 0), 1)
}

func (p *Player) OneFrameBack(ctx context.Context) (Result, error) {
	return p.stepFrame(ctx, KeyFrameBack, sub)
}

func (p *Player) OneFrameForward(ctx context.Context) (Result, error) {
	return p.stepFrame(ctx, KeyFrameForward, add)
}

// stepFrame always uses the host shortcut on the watch page. On Shorts it
// seeks by one estimated frame, and does nothing without frame telemetry.
func (p *Player) stepFrame(ctx context.Context, key page.KeyEvent, fn func(cur, step float64) float64) (Result, error) {
	video, mode, err := p.prepare(ctx, false)
	if err != nil {
		return Result{}, err
	}

	if mode == ModeSynthetic {
		return dispatch(ctx, video, key)
	}

	fps, ok, err := estimateFPS(ctx, video)
	if err != nil {
		return Result{}, err
	}

	if !ok {
		slog.DebugContext(ctx, "player.stepFrame", "result", "no frame telemetry")
		return Result{Mode: ModeDirect}, nil
	}

	frame := 1 / fps
	return update(ctx, video, currentTime, func(cur float64) float64 {
		return fn(cur, frame)
	})
}

// FPS is a rough frame rate: decoded frames over elapsed playback time,
// taking one second when nothing has played yet. ok is false when the
// element reports no telemetry or no decoded frames.
func (p *Player) FPS(ctx context.Context) (fps float64, ok bool, err error) {
	video, err := p.target.Resolve(ctx)
	if err != nil {
		return 0, false, err
	}

	return estimateFPS(ctx, video)
}

func estimateFPS(ctx context.Context, video page.Video) (float64, bool, error) {
	quality, ok, err := video.PlaybackQuality(ctx)
	if err != nil {
		return 0, false, fmt.Errorf("failed to get playback quality: %w", err)
	}

	if !ok || quality.TotalVideoFrames <= 0 {
		return 0, false, nil
	}

	elapsed, err := video.CurrentTime(ctx)
	if err != nil {
		return 0, false, fmt.Errorf("failed to get current time: %w", err)
	}

	if elapsed == 0 {
		elapsed = 1
	}

	return float64(quality.TotalVideoFrames) / elapsed, true, nil
}

// SetSpeed sets the playback rate directly.
func (p *Player) SetSpeed(ctx context.Context, rate float64) (Result, error) {
	if rate <= 0 {
		return Result{}, ErrInvalidRate
	}

	video, err := p.target.Resolve(ctx)
	if err != nil {
		return Result{}, err
	}

	return update(ctx, video, playbackRate, func(float64) float64 {
		return rate
	})
}

func (p *Player) IsPlaying(ctx context.Context) (bool, error) {
	video, err := p.target.Resolve(ctx)
	if err != nil {
		return false, err
	}

	paused, err := video.Paused(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get paused: %w", err)
	}

	return !paused, nil
}

func (p *Player) Play(ctx context.Context) error {
	video, err := p.target.Resolve(ctx)
	if err != nil {
		return err
	}

	if err := video.Play(ctx); err != nil {
		return fmt.Errorf("failed to play: %w", err)
	}

	return nil
}

func (p *Player) Pause(ctx context.Context) error {
	video, err := p.target.Resolve(ctx)
	if err != nil {
		return err
	}

	if err := video.Pause(ctx); err != nil {
		return fmt.Errorf("failed to pause: %w", err)
	}

	return nil
}

// TogglePlay returns whether the video is playing afterwards.
func (p *Player) TogglePlay(ctx context.Context) (bool, error) {
	playing, err := p.IsPlaying(ctx)
	if err != nil {
		return false, err
	}

	if playing {
		return false, p.Pause(ctx)
	}

	return true, p.Play(ctx)
}

// ResumeLive jumps to the live edge of a stream by clicking the live badge,
// unless the badge already marks the live head. It reports whether it clicked.
func (p *Player) ResumeLive(ctx context.Context) (bool, error) {
	if _, err := p.target.Resolve(ctx); err != nil {
		return false, err
	}

	badge, err := p.chrome.LiveBadge(ctx)
	if err != nil {
		return false, err
	}

	if badge == nil {
		slog.DebugContext(ctx, "player.ResumeLive", "result", "no live badge")
		return false, nil
	}

	atHead, err := badge.HasClass(ctx, p.chrome.Selectors().LiveHeadClass)
	if err != nil {
		return false, fmt.Errorf("failed to read live badge: %w", err)
	}

	if atHead {
		return false, nil
	}

	if err := badge.Click(ctx); err != nil {
		return false, fmt.Errorf("failed to click live badge: %w", err)
	}

	return true, nil
}

func (p *Player) setControlsVisibility(ctx context.Context, visibility string) error {
	if _, err := p.target.Resolve(ctx); err != nil {
		return err
	}

	elements, err := p.chrome.HidableElements(ctx)
	if err != nil {
		return err
	}

	for _, el := range elements {
		if err := el.SetStyle(ctx, "visibility", visibility); err != nil {
			return fmt.Errorf("failed to set visibility: %w", err)
		}
	}

	return nil
}

func (p *Player) HideControls(ctx context.Context) error {
	return p.setControlsVisibility(ctx, "hidden")
}

func (p *Player) ShowControls(ctx context.Context) error {
	return p.setControlsVisibility(ctx, "initial")
}

// ToggleControls alternates between hiding and showing the overlay based on
// the Player's own record, not on the elements' current style. It returns
// whether the controls are visible afterwards.
func (p *Player) ToggleControls(ctx context.Context) (bool, error) {
	if p.controlsVisible {
		if err := p.HideControls(ctx); err != nil {
			return p.controlsVisible, err
		}
	} else {
		if err := p.ShowControls(ctx); err != nil {
			return p.controlsVisible, err
		}
	}

	p.controlsVisible = !p.controlsVisible

	return p.controlsVisible, nil
}

// Fullscreen leaves fullscreen when the document is in it and otherwise
// presses the host's fullscreen button. With resume it starts playback
// afterwards.
func (p *Player) Fullscreen(ctx context.Context, resume bool) error {
	if _, err := p.target.Resolve(ctx); err != nil {
		return err
	}

	active, err := p.doc.FullscreenActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to get fullscreen state: %w", err)
	}

	if active {
		if err := p.doc.ExitFullscreen(ctx); err != nil {
			return fmt.Errorf("failed to exit fullscreen: %w", err)
		}
	} else {
		button, err := p.chrome.FullscreenButton(ctx)
		if err != nil {
			return err
		}

		if button != nil {
			if err := button.Click(ctx); err != nil {
				return fmt.Errorf("failed to click fullscreen button: %w", err)
			}
		}
	}

	if resume {
		return p.Play(ctx)
	}

	return nil
}

// ToggleSubtitles presses the host's subtitles button, reporting whether it
// was there.
func (p *Player) ToggleSubtitles(ctx context.Context) (bool, error) {
	if _, err := p.target.Resolve(ctx); err != nil {
		return false, err
	}

	return p.chrome.ToggleSubtitles(ctx)
}

// NextShort moves the Shorts feed down one entry, reporting whether the
// navigation button was there.
func (p *Player) NextShort(ctx context.Context) (bool, error) {
	if _, err := p.target.Resolve(ctx); err != nil {
		return false, err
	}

	return p.chrome.NextShort(ctx)
}

// PreviousShort moves the Shorts feed up one entry.
func (p *Player) PreviousShort(ctx context.Context) (bool, error) {
	if _, err := p.target.Resolve(ctx); err != nil {
		return false, err
	}

	return p.chrome.PreviousShort(ctx)
}
