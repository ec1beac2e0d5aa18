package player

import (
	"context"
	"fmt"

	"github.com/sharetube/playerctl/internal/location"
)

// PlaybackState uses the host player API's numbering.
type PlaybackState int

const (
	StateUnstarted PlaybackState = -1
	StateEnded     PlaybackState = 0
	StatePlaying   PlaybackState = 1
	StatePaused    PlaybackState = 2
	StateBuffering PlaybackState = 3
	StateCued      PlaybackState = 5
)

type State struct {
	VideoID         string        `json:"video_id"`
	IsShorts        bool          `json:"is_shorts"`
	Status          PlaybackState `json:"status"`
	IsPlaying       bool          `json:"is_playing"`
	CurrentTime     float64       `json:"current_time"`
	PlaybackRate    float64       `json:"playback_rate"`
	Volume          float64       `json:"volume"`
	ControlsVisible bool          `json:"controls_visible"`
}

func status(paused bool, currentTime float64) PlaybackState {
	switch {
	case !paused:
		return StatePlaying
	case currentTime == 0:
		return StateUnstarted
	default:
		return StatePaused
	}
}

// Snapshot reads the current state of the media element and the page.
func (p *Player) Snapshot(ctx context.Context) (State, error) {
	video, err := p.target.Resolve(ctx)
	if err != nil {
		return State{}, err
	}

	href, err := p.doc.Location(ctx)
	if err != nil {
		return State{}, fmt.Errorf("failed to get location: %w", err)
	}

	paused, err := video.Paused(ctx)
	if err != nil {
		return State{}, fmt.Errorf("failed to get paused: %w", err)
	}

	state := State{
		VideoID:         location.VideoID(href),
		IsShorts:        location.IsShorts(href),
		IsPlaying:       !paused,
		ControlsVisible: p.controlsVisible,
	}

	for _, f := range []struct {
		prop property
		dst  *float64
	}{
		{currentTime, &state.CurrentTime},
		{playbackRate, &state.PlaybackRate},
		{volume, &state.Volume},
	} {
		if *f.dst, err = f.prop.get(video, ctx); err != nil {
			return State{}, fmt.Errorf("failed to get %s: %w", f.prop.name, err)
		}
	}

	state.Status = status(paused, state.CurrentTime)

	return state, nil
}
