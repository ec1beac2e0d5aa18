package state

import "errors"

var ErrStateNotFound = errors.New("player state not found")

// Player is the last known player snapshot of a session.
type Player struct {
	VideoID         string  `redis:"video_id"`
	IsShorts        bool    `redis:"is_shorts"`
	Status          int     `redis:"status"`
	IsPlaying       bool    `redis:"is_playing"`
	CurrentTime     float64 `redis:"current_time"`
	PlaybackRate    float64 `redis:"playback_rate"`
	Volume          float64 `redis:"volume"`
	ControlsVisible bool    `redis:"controls_visible"`
	UpdatedAt       int64   `redis:"updated_at"`
}

type SetPlayerParams struct {
	SessionID string
	Player    Player
}
