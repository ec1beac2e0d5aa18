package player

import (
	"context"
	"errors"
	"testing"

	"github.com/sharetube/playerctl/internal/chrome"
	"github.com/sharetube/playerctl/internal/page"
	"github.com/sharetube/playerctl/internal/page/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	watchURL  = "https://www.youtube.com/watch?v=abcdefghijk"
	shortsURL = "https://www.youtube.com/shorts/abcdefghijk"
)

type fixture struct {
	doc     *memory.Document
	video   *memory.Video
	overlay []*memory.Element
	player  *Player
}

func newFixture(t *testing.T, href string) fixture {
	t.Helper()

	doc := memory.NewDocument(href, 900)
	moviePlayer := doc.AddElement(nil, "#movie_player")

	var overlay []*memory.Element
	for _, sel := range chrome.DefaultSelectors().Hidable {
		overlay = append(overlay, doc.AddElement(moviePlayer, sel))
	}

	video := doc.AddVideo(moviePlayer, page.Rect{Y: 56, Width: 1280, Height: 720})
	video.SetState(memory.VideoState{
		Paused:       true,
		CurrentTime:  30,
		Duration:     600,
		PlaybackRate: 1,
		Volume:       0.5,
	})

	return fixture{
		doc:     doc,
		video:   video,
		overlay: overlay,
		player:  New(Fixed(video), doc, chrome.NewLocator(doc, chrome.DefaultSelectors()), DefaultConfig()),
	}
}

func value(t *testing.T, r Result) float64 {
	t.Helper()
	require.Equal(t, ModeDirect, r.Mode)
	require.NotNil(t, r.Value)
	return *r.Value
}

func TestRewindOnWatchPageUsesShortcut(t *testing.T) {
	f := newFixture(t, watchURL)

	r, err := f.player.Rewind(context.Background(), Default)
	require.NoError(t, err)
	assert.Equal(t, ModeSynthetic, r.Mode)
	assert.Nil(t, r.Value)
	assert.Equal(t, 30.0, f.video.State().CurrentTime)
	assert.Equal(t, []page.KeyEvent{KeySeekBackward}, f.video.Events())

	ev := f.video.Events()[0]
	assert.Equal(t, "keydown", ev.Type)
	assert.Equal(t, 37, ev.KeyCode)
	assert.True(t, ev.Bubbles)
	assert.True(t, ev.Cancelable)
}

func TestRewindExplicitSeeksDirectly(t *testing.T) {
	f := newFixture(t, watchURL)

	r, err := f.player.Rewind(context.Background(), By(10))
	require.NoError(t, err)
	assert.Equal(t, 20.0, value(t, r))
	assert.Equal(t, 20.0, f.video.State().CurrentTime)
	assert.Empty(t, f.video.Events())
}

func TestRewindOnShortsSeeksDirectly(t *testing.T) {
	f := newFixture(t, shortsURL)

	r, err := f.player.Rewind(context.Background(), Default)
	require.NoError(t, err)
	assert.Equal(t, 25.0, value(t, r))
	assert.Empty(t, f.video.Events())
}

func TestFastForward(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, shortsURL)

	r, err := f.player.FastForward(ctx, Default)
	require.NoError(t, err)
	assert.Equal(t, 35.0, value(t, r))

	r, err = f.player.FastForward(ctx, By(1000))
	require.NoError(t, err)
	assert.Equal(t, 600.0, value(t, r), "the element clamps to its duration")
}

func TestWatchPageShortcuts(t *testing.T) {
	tests := []struct {
		name string
		op   func(p *Player, ctx context.Context) (Result, error)
		key  page.KeyEvent
	}{
		{"rewind", func(p *Player, ctx context.Context) (Result, error) { return p.Rewind(ctx, Default) }, KeySeekBackward},
		{"fast forward", func(p *Player, ctx context.Context) (Result, error) { return p.FastForward(ctx, Default) }, KeySeekForward},
		{"frame back", (*Player).OneFrameBack, KeyFrameBack},
		{"frame forward", (*Player).OneFrameForward, KeyFrameForward},
		{"increase speed", func(p *Player, ctx context.Context) (Result, error) { return p.IncreaseSpeed(ctx, Default) }, KeySpeedIncrease},
		{"decrease speed", func(p *Player, ctx context.Context) (Result, error) { return p.DecreaseSpeed(ctx, Default) }, KeySpeedDecrease},
		{"volume up", func(p *Player, ctx context.Context) (Result, error) { return p.VolumeUp(ctx, Default) }, KeyVolumeUp},
		{"volume down", func(p *Player, ctx context.Context) (Result, error) { return p.VolumeDown(ctx, Default) }, KeyVolumeDown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, watchURL)
			before := f.video.State()

			r, err := tt.op(f.player, context.Background())
			require.NoError(t, err)
			assert.Equal(t, ModeSynthetic, r.Mode)
			assert.Equal(t, []page.KeyEvent{tt.key}, f.video.Events())
			assert.Equal(t, before, f.video.State())
		})
	}
}

func TestSpeedShortcutsCarryShift(t *testing.T) {
	assert.True(t, KeySpeedIncrease.ShiftKey)
	assert.True(t, KeySpeedDecrease.ShiftKey)
	assert.Equal(t, "Period", KeySpeedIncrease.Code)
	assert.Equal(t, "Comma", KeySpeedDecrease.Code)
	assert.False(t, KeyFrameForward.ShiftKey)
}

func TestSpeedDirect(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, shortsURL)

	r, err := f.player.IncreaseSpeed(ctx, Default)
	require.NoError(t, err)
	assert.Equal(t, 1.25, value(t, r))

	r, err = f.player.IncreaseSpeed(ctx, By(10))
	require.NoError(t, err)
	assert.Equal(t, 11.25, value(t, r), "no ceiling")

	r, err = f.player.DecreaseSpeed(ctx, By(20))
	require.NoError(t, err)
	assert.Equal(t, MinPlaybackRate, value(t, r))
}

func TestSetSpeed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, watchURL)

	r, err := f.player.SetSpeed(ctx, 1.5)
	require.NoError(t, err)
	assert.Equal(t, 1.5, value(t, r))

	_, err = f.player.SetSpeed(ctx, 0)
	assert.ErrorIs(t, err, ErrInvalidRate)
}

func TestVolumeStaysInRange(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, shortsURL)

	for i := 0; i < 10; i++ {
		r, err := f.player.VolumeUp(ctx, Default)
		require.NoError(t, err)
		assert.LessOrEqual(t, value(t, r), 1.0)
	}
	assert.Equal(t, 1.0, f.video.State().Volume)

	for i := 0; i < 10; i++ {
		r, err := f.player.VolumeDown(ctx, Default)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, value(t, r), 0.0)
	}
	assert.Equal(t, 0.0, f.video.State().Volume)
}

func TestVolumeStepFromConfig(t *testing.T) {
	f := newFixture(t, shortsURL)
	cfg := DefaultConfig()
	cfg.VolumeStep = 0.1
	p := New(Fixed(f.video), f.doc, chrome.NewLocator(f.doc, chrome.DefaultSelectors()), cfg)

	r, err := p.VolumeUp(context.Background(), Default)
	require.NoError(t, err)
	assert.InDelta(t, 0.6, value(t, r), 1e-9)
}

func TestFrameStepOnWatchPageIgnoresTelemetry(t *testing.T) {
	f := newFixture(t, watchURL)
	f.video.SetQuality(&page.PlaybackQuality{TotalVideoFrames: 900})

	r, err := f.player.OneFrameForward(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ModeSynthetic, r.Mode)
	assert.Equal(t, 30.0, f.video.State().CurrentTime)
}

func TestFrameStepOnShorts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, shortsURL)
	f.video.SetQuality(&page.PlaybackQuality{TotalVideoFrames: 900})

	r, err := f.player.OneFrameBack(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 30-1.0/30, value(t, r), 1e-9)
	assert.Empty(t, f.video.Events())
}

func TestFrameStepOnShortsWithoutFrames(t *testing.T) {
	tests := []struct {
		name    string
		quality *page.PlaybackQuality
	}{
		{"no telemetry", nil},
		{"zero decoded frames", &page.PlaybackQuality{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t, shortsURL)
			f.video.SetQuality(tt.quality)

			r, err := f.player.OneFrameBack(ctx)
			require.NoError(t, err)
			assert.Equal(t, ModeDirect, r.Mode)
			assert.Nil(t, r.Value)

			_, err = f.player.OneFrameForward(ctx)
			require.NoError(t, err)
			assert.Equal(t, 30.0, f.video.State().CurrentTime)
			assert.Empty(t, f.video.Events())
		})
	}
}

func TestFPSAtStart(t *testing.T) {
	f := newFixture(t, shortsURL)
	f.video.SetState(memory.VideoState{Paused: true, PlaybackRate: 1, Volume: 1})
	f.video.SetQuality(&page.PlaybackQuality{TotalVideoFrames: 24})

	fps, ok, err := f.player.FPS(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 24.0, fps)
}

func TestContextIsReadOnEveryCall(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, watchURL)

	r, err := f.player.Rewind(ctx, Default)
	require.NoError(t, err)
	assert.Equal(t, ModeSynthetic, r.Mode)

	f.doc.SetLocation(shortsURL)

	r, err = f.player.Rewind(ctx, Default)
	require.NoError(t, err)
	assert.Equal(t, 25.0, value(t, r))
}

func TestTogglePlay(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, watchURL)

	playing, err := f.player.TogglePlay(ctx)
	require.NoError(t, err)
	assert.True(t, playing)
	assert.False(t, f.video.State().Paused)

	playing, err = f.player.TogglePlay(ctx)
	require.NoError(t, err)
	assert.False(t, playing)
	assert.True(t, f.video.State().Paused)
}

func TestResumeLive(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, watchURL)

	clicked, err := f.player.ResumeLive(ctx)
	require.NoError(t, err)
	assert.False(t, clicked, "no badge")

	badge := f.doc.AddElement(nil, ".ytp-live-badge")
	badge.AddClass("ytp-live-badge-is-livehead")

	clicked, err = f.player.ResumeLive(ctx)
	require.NoError(t, err)
	assert.False(t, clicked, "already at the live head")
	assert.Zero(t, badge.Clicks())

	badge.RemoveClass("ytp-live-badge-is-livehead")

	clicked, err = f.player.ResumeLive(ctx)
	require.NoError(t, err)
	assert.True(t, clicked)
	assert.Equal(t, 1, badge.Clicks())
}

func TestToggleControls(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, watchURL)

	visible, err := f.player.ToggleControls(ctx)
	require.NoError(t, err)
	assert.False(t, visible)
	for _, el := range f.overlay {
		assert.Equal(t, "hidden", el.Style("visibility"))
	}

	visible, err = f.player.ToggleControls(ctx)
	require.NoError(t, err)
	assert.True(t, visible)
	for _, el := range f.overlay {
		assert.Equal(t, "initial", el.Style("visibility"))
	}
}

func TestToggleControlsIgnoresOutsideChanges(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, watchURL)

	_, err := f.player.ToggleControls(ctx)
	require.NoError(t, err)

	require.NoError(t, f.player.ShowControls(ctx))
	assert.False(t, f.player.ControlsVisible())

	visible, err := f.player.ToggleControls(ctx)
	require.NoError(t, err)
	assert.True(t, visible)
}

func TestToggleControlsWithoutOverlay(t *testing.T) {
	doc := memory.NewDocument(watchURL, 900)
	video := doc.AddVideo(nil, page.Rect{Width: 640, Height: 360})
	p := New(Fixed(video), doc, chrome.NewLocator(doc, chrome.DefaultSelectors()), DefaultConfig())

	visible, err := p.ToggleControls(context.Background())
	require.NoError(t, err)
	assert.False(t, visible)
}

func TestFullscreen(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, watchURL)
	button := f.doc.AddElement(nil, ".ytp-fullscreen-button")
	button.OnClick(func() { f.doc.SetFullscreen(true) })

	require.NoError(t, f.player.Fullscreen(ctx, true))
	assert.True(t, f.doc.Fullscreen())
	assert.False(t, f.video.State().Paused, "resumes playback")

	require.NoError(t, f.player.Pause(ctx))
	require.NoError(t, f.player.Fullscreen(ctx, false))
	assert.False(t, f.doc.Fullscreen())
	assert.True(t, f.video.State().Paused)
	assert.Equal(t, 1, button.Clicks())
}

func TestFullscreenWithoutButton(t *testing.T) {
	f := newFixture(t, watchURL)

	require.NoError(t, f.player.Fullscreen(context.Background(), true))
	assert.False(t, f.doc.Fullscreen())
}

func TestToggleSubtitles(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, watchURL)

	clicked, err := f.player.ToggleSubtitles(ctx)
	require.NoError(t, err)
	assert.False(t, clicked)

	f.doc.AddElement(nil, ".ytp-subtitles-button")
	clicked, err = f.player.ToggleSubtitles(ctx)
	require.NoError(t, err)
	assert.True(t, clicked)
}

func TestShortsNavigation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, shortsURL)

	moved, err := f.player.NextShort(ctx)
	require.NoError(t, err)
	assert.False(t, moved)

	up := f.doc.AddElement(nil, "#navigation-button-up yt-touch-feedback-shape")
	down := f.doc.AddElement(nil, "#navigation-button-down yt-touch-feedback-shape")

	moved, err = f.player.NextShort(ctx)
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, 1, down.Clicks())

	moved, err = f.player.PreviousShort(ctx)
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, 1, up.Clicks())
}

func TestSnapshot(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, shortsURL)

	state, err := f.player.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, State{
		VideoID:         "abcdefghijk",
		IsShorts:        true,
		Status:          StatePaused,
		CurrentTime:     30,
		PlaybackRate:    1,
		Volume:          0.5,
		ControlsVisible: true,
	}, state)
}

func TestEveryOperationRequiresVideo(t *testing.T) {
	doc := memory.NewDocument(watchURL, 900)
	locator := chrome.NewLocator(doc, chrome.DefaultSelectors())

	targets := map[string]Target{
		"fixed nil":    Fixed(nil),
		"resolver nil": Resolver(func(context.Context) (page.Video, error) { return nil, nil }),
		"zero value":   {},
	}

	ops := map[string]func(p *Player, ctx context.Context) error{
		"rewind":           func(p *Player, ctx context.Context) error { _, err := p.Rewind(ctx, Default); return err },
		"fast forward":     func(p *Player, ctx context.Context) error { _, err := p.FastForward(ctx, By(1)); return err },
		"frame back":       func(p *Player, ctx context.Context) error { _, err := p.OneFrameBack(ctx); return err },
		"frame forward":    func(p *Player, ctx context.Context) error { _, err := p.OneFrameForward(ctx); return err },
		"increase speed":   func(p *Player, ctx context.Context) error { _, err := p.IncreaseSpeed(ctx, Default); return err },
		"decrease speed":   func(p *Player, ctx context.Context) error { _, err := p.DecreaseSpeed(ctx, Default); return err },
		"set speed":        func(p *Player, ctx context.Context) error { _, err := p.SetSpeed(ctx, 1); return err },
		"volume up":        func(p *Player, ctx context.Context) error { _, err := p.VolumeUp(ctx, Default); return err },
		"volume down":      func(p *Player, ctx context.Context) error { _, err := p.VolumeDown(ctx, Default); return err },
		"toggle play":      func(p *Player, ctx context.Context) error { _, err := p.TogglePlay(ctx); return err },
		"play":             (*Player).Play,
		"pause":            (*Player).Pause,
		"resume live":      func(p *Player, ctx context.Context) error { _, err := p.ResumeLive(ctx); return err },
		"hide controls":    (*Player).HideControls,
		"show controls":    (*Player).ShowControls,
		"toggle controls":  func(p *Player, ctx context.Context) error { _, err := p.ToggleControls(ctx); return err },
		"fullscreen":       func(p *Player, ctx context.Context) error { return p.Fullscreen(ctx, true) },
		"toggle subtitles": func(p *Player, ctx context.Context) error { _, err := p.ToggleSubtitles(ctx); return err },
		"snapshot":         func(p *Player, ctx context.Context) error { _, err := p.Snapshot(ctx); return err },
		"next short":       func(p *Player, ctx context.Context) error { _, err := p.NextShort(ctx); return err },
		"previous short":   func(p *Player, ctx context.Context) error { _, err := p.PreviousShort(ctx); return err },
	}

	for targetName, target := range targets {
		for opName, op := range ops {
			t.Run(targetName+"/"+opName, func(t *testing.T) {
				p := New(target, doc, locator, DefaultConfig())
				assert.ErrorIs(t, op(p, context.Background()), ErrNoVideo)
			})
		}
	}
}

func TestResolverErrorIsWrapped(t *testing.T) {
	errLookup := errors.New("bridge closed")
	doc := memory.NewDocument(watchURL, 900)
	p := New(Resolver(func(context.Context) (page.Video, error) { return nil, errLookup }), doc,
		chrome.NewLocator(doc, chrome.DefaultSelectors()), DefaultConfig())

	_, err := p.Rewind(context.Background(), Default)
	assert.ErrorIs(t, err, errLookup)
}

func TestResolverRunsPerOperation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, shortsURL)
	calls := 0
	p := New(Resolver(func(context.Context) (page.Video, error) {
		calls++
		return f.video, nil
	}), f.doc, chrome.NewLocator(f.doc, chrome.DefaultSelectors()), DefaultConfig())

	_, err := p.Rewind(ctx, Default)
	require.NoError(t, err)
	_, err = p.VolumeUp(ctx, Default)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestModeString(t *testing.T) {
	assert.Equal(t, ModeDirect, resolveMode(true, false))
	assert.Equal(t, ModeDirect, resolveMode(false, true))
	assert.Equal(t, ModeDirect, resolveMode(true, true))
	assert.Equal(t, ModeSynthetic, resolveMode(false, false))

	text, err := ModeDirect.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "direct", string(text))
	assert.Equal(t, "synthetic", ModeSynthetic.String())
}
