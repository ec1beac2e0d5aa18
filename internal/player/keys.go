package player

import "github.com/sharetube/playerctl/internal/page"

func keydown(key, code string, keyCode int, shift bool) page.KeyEvent {
	return page.KeyEvent{
		Type:       "keydown",
		Key:        key,
		Code:       code,
		KeyCode:    keyCode,
		ShiftKey:   shift,
		Bubbles:    true,
		Cancelable: true,
	}
}

// Shortcuts understood by the host watch page.
var (
	KeySeekBackward  = keydown("ArrowLeft", "ArrowLeft", 37, false)
	KeySeekForward   = keydown("ArrowRight", "ArrowRight", 39, false)
	KeyVolumeUp      = keydown("ArrowUp", "ArrowUp", 38, false)
	KeyVolumeDown    = keydown("ArrowDown", "ArrowDown", 40, false)
	KeyFrameBack     = keydown(",", "Comma", 188, false)
	KeyFrameForward  = keydown(".", "Period", 190, false)
	KeySpeedDecrease = keydown("<", "Comma", 188, true)
	KeySpeedIncrease = keydown(">", "Period", 190, true)
)
