package control

import (
	"github.com/sharetube/playerctl/internal/page"
	"github.com/sharetube/playerctl/internal/player"
	"github.com/sharetube/playerctl/pkg/wsrouter"
)

type Command string

const (
	CommandRewind          Command = "REWIND"
	CommandFastForward     Command = "FAST_FORWARD"
	CommandFrameBack       Command = "FRAME_BACK"
	CommandFrameForward    Command = "FRAME_FORWARD"
	CommandIncreaseSpeed   Command = "INCREASE_SPEED"
	CommandDecreaseSpeed   Command = "DECREASE_SPEED"
	CommandSetSpeed        Command = "SET_SPEED"
	CommandVolumeUp        Command = "VOLUME_UP"
	CommandVolumeDown      Command = "VOLUME_DOWN"
	CommandPlay            Command = "PLAY"
	CommandPause           Command = "PAUSE"
	CommandTogglePlay      Command = "TOGGLE_PLAY"
	CommandResumeLive      Command = "RESUME_LIVE"
	CommandShowControls    Command = "SHOW_CONTROLS"
	CommandHideControls    Command = "HIDE_CONTROLS"
	CommandToggleControls  Command = "TOGGLE_CONTROLS"
	CommandFullscreen      Command = "FULLSCREEN"
	CommandToggleSubtitles Command = "TOGGLE_SUBTITLES"
	CommandNextShort       Command = "NEXT_SHORT"
	CommandPreviousShort   Command = "PREVIOUS_SHORT"
)

type ConnectParams struct {
	Page      page.Document
	UserAgent string
}

type ConnectResponse struct {
	SessionID    string `json:"session_id"`
	ControlToken string `json:"control_token"`
}

type ConnectControllerParams struct {
	Conn      *wsrouter.Conn
	SessionID string
	Token     string
}

type ExecuteParams struct {
	SessionID string
	Sender    *wsrouter.Conn
	Command   Command
	// Amount is the optional magnitude of seek, speed and volume commands.
	Amount player.Amount
	// Rate is the target of SET_SPEED.
	Rate float64
	// Resume starts playback after FULLSCREEN. Nil means true.
	Resume *bool
}

type CommandResult struct {
	Command Command      `json:"command"`
	Mode    *player.Mode `json:"mode,omitempty"`
	Value   *float64     `json:"value,omitempty"`
	// Outcome is the on/off result of toggles and whether a host button was
	// found for click commands.
	Outcome *bool         `json:"outcome,omitempty"`
	State   *player.State `json:"state,omitempty"`
}

type ExecuteResponse struct {
	Result CommandResult
	// Conns are the other controllers of the session.
	Conns []*wsrouter.Conn
}
