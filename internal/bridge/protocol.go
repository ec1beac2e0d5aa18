// Package bridge carries page.Document calls over a websocket between the
// service and an agent running inside the page. The service sends requests,
// the agent answers each with a response carrying the same id. Elements are
// referred to by opaque handles minted by the agent.
package bridge

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sharetube/playerctl/internal/page"
)

const (
	methodVideos           = "videos"
	methodViewportHeight   = "viewport_height"
	methodLocation         = "location"
	methodQuery            = "query"
	methodQueryAll         = "query_all"
	methodFullscreenActive = "fullscreen_active"
	methodExitFullscreen   = "exit_fullscreen"

	methodClick    = "click"
	methodHasClass = "has_class"
	methodSetStyle = "set_style"

	methodRect            = "rect"
	methodComputedStyle   = "computed_style"
	methodHasOffsetParent = "has_offset_parent"
	methodPaused          = "paused"
	methodPlay            = "play"
	methodPause           = "pause"
	methodGet             = "get"
	methodSet             = "set"
	methodQuality         = "quality"
	methodDispatchKey     = "dispatch_key"
)

// Media properties readable with methodGet and writable with methodSet.
const (
	propCurrentTime  = "current_time"
	propPlaybackRate = "playback_rate"
	propVolume       = "volume"
)

var (
	ErrClosed        = errors.New("bridge closed")
	ErrUnknownHandle = errors.New("unknown element handle")
	ErrUnknownMethod = errors.New("unknown method")
)

// Request is a call when ID is set and a notification otherwise.
type Request struct {
	ID     string          `json:"id,omitempty"`
	Method string          `json:"method"`
	Handle string          `json:"handle,omitempty"`
	Args   json.RawMessage `json:"args,omitempty"`
}

type Response struct {
	ID     string          `json:"id"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// RemoteError is an error reported by the agent.
type RemoteError struct {
	Method  string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("agent failed %s: %s", e.Method, e.Message)
}

type selectorArgs struct {
	Root     string `json:"root,omitempty"`
	Selector string `json:"selector"`
}

type classArgs struct {
	Class string `json:"class"`
}

type styleArgs struct {
	Property string `json:"property"`
	Value    string `json:"value"`
}

type propertyArgs struct {
	Property string `json:"property"`
}

type setPropertyArgs struct {
	Property string  `json:"property"`
	Value    float64 `json:"value"`
}

type qualityResult struct {
	Quality   page.PlaybackQuality `json:"quality"`
	Available bool                 `json:"available"`
}
