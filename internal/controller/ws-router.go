package controller

import (
	"github.com/sharetube/playerctl/internal/service/control"
	"github.com/sharetube/playerctl/pkg/wsrouter"
)

func (c controller) getWSRouter() *wsrouter.WSRouter {
	mux := wsrouter.New()
	mux.Use(c.wsRequestIdWSMw())
	mux.Use(c.loggerWSMw())
	mux.Use(c.validateWSMw())
	mux.HandleError(c.handleError)

	wsrouter.AddRoute(mux, "ALIVE", c.handleAlive)

	// seek, speed and volume
	for _, command := range []control.Command{
		control.CommandRewind,
		control.CommandFastForward,
		control.CommandIncreaseSpeed,
		control.CommandDecreaseSpeed,
		control.CommandVolumeUp,
		control.CommandVolumeDown,
	} {
		wsrouter.AddRoute(mux, string(command), c.handleAmountCommand(command))
	}
	wsrouter.AddRoute(mux, string(control.CommandSetSpeed), c.handleSetSpeed)

	for _, command := range []control.Command{
		control.CommandFrameBack,
		control.CommandFrameForward,
		control.CommandPlay,
		control.CommandPause,
		control.CommandTogglePlay,
		control.CommandResumeLive,
		control.CommandShowControls,
		control.CommandHideControls,
		control.CommandToggleControls,
		control.CommandToggleSubtitles,
		control.CommandNextShort,
		control.CommandPreviousShort,
	} {
		wsrouter.AddRoute(mux, string(command), c.handleCommand(command))
	}
	wsrouter.AddRoute(mux, string(control.CommandFullscreen), c.handleFullscreen)

	// page
	wsrouter.AddRoute(mux, "WAIT_FOR_VIDEO", c.handleWaitForVideo)
	wsrouter.AddRoute(mux, "GET_STATE", c.handleGetState)

	return mux
}
