package control

import (
	"context"

	"github.com/sharetube/playerctl/internal/player"
)

type commandFunc func(ctx context.Context, p *player.Player, params *ExecuteParams) (CommandResult, error)

func fromResult(res player.Result, err error) (CommandResult, error) {
	if err != nil {
		return CommandResult{}, err
	}

	return CommandResult{Mode: &res.Mode, Value: res.Value}, nil
}

func fromOutcome(outcome bool, err error) (CommandResult, error) {
	if err != nil {
		return CommandResult{}, err
	}

	return CommandResult{Outcome: &outcome}, nil
}

func adjusting(op func(*player.Player, context.Context, player.Amount) (player.Result, error)) commandFunc {
	return func(ctx context.Context, p *player.Player, params *ExecuteParams) (CommandResult, error) {
		return fromResult(op(p, ctx, params.Amount))
	}
}

func stepping(op func(*player.Player, context.Context) (player.Result, error)) commandFunc {
	return func(ctx context.Context, p *player.Player, _ *ExecuteParams) (CommandResult, error) {
		return fromResult(op(p, ctx))
	}
}

func toggling(op func(*player.Player, context.Context) (bool, error)) commandFunc {
	return func(ctx context.Context, p *player.Player, _ *ExecuteParams) (CommandResult, error) {
		return fromOutcome(op(p, ctx))
	}
}

func plain(op func(*player.Player, context.Context) error) commandFunc {
	return func(ctx context.Context, p *player.Player, _ *ExecuteParams) (CommandResult, error) {
		return CommandResult{}, op(p, ctx)
	}
}

func (s service) commandTable() map[Command]commandFunc {
	return map[Command]commandFunc{
		CommandRewind:        adjusting((*player.Player).Rewind),
		CommandFastForward:   adjusting((*player.Player).FastForward),
		CommandIncreaseSpeed: adjusting((*player.Player).IncreaseSpeed),
		CommandDecreaseSpeed: adjusting((*player.Player).DecreaseSpeed),
		CommandVolumeUp:      adjusting((*player.Player).VolumeUp),
		CommandVolumeDown:    adjusting((*player.Player).VolumeDown),
		CommandFrameBack:     stepping((*player.Player).OneFrameBack),
		CommandFrameForward:  stepping((*player.Player).OneFrameForward),
		CommandSetSpeed: func(ctx context.Context, p *player.Player, params *ExecuteParams) (CommandResult, error) {
			return fromResult(p.SetSpeed(ctx, params.Rate))
		},
		CommandPlay:            plain((*player.Player).Play),
		CommandPause:           plain((*player.Player).Pause),
		CommandTogglePlay:      toggling((*player.Player).TogglePlay),
		CommandResumeLive:      toggling((*player.Player).ResumeLive),
		CommandShowControls:    plain((*player.Player).ShowControls),
		CommandHideControls:    plain((*player.Player).HideControls),
		CommandToggleControls:  toggling((*player.Player).ToggleControls),
		CommandToggleSubtitles: toggling((*player.Player).ToggleSubtitles),
		CommandFullscreen: func(ctx context.Context, p *player.Player, params *ExecuteParams) (CommandResult, error) {
			resume := params.Resume == nil || *params.Resume
			return CommandResult{}, p.Fullscreen(ctx, resume)
		},
		CommandNextShort:     toggling((*player.Player).NextShort),
		CommandPreviousShort: toggling((*player.Player).PreviousShort),
	}
}
