package player

import (
	"context"
	"errors"
	"fmt"

	"github.com/sharetube/playerctl/internal/page"
)

var ErrNoVideo = errors.New("no video to control")

// Target is the video a Player acts on: either a fixed element or a
// resolver looked up again on every operation.
type Target struct {
	video    page.Video
	resolver func(context.Context) (page.Video, error)
}

func Fixed(video page.Video) Target {
	return Target{video: video}
}

func Resolver(fn func(context.Context) (page.Video, error)) Target {
	return Target{resolver: fn}
}

// Resolve returns ErrNoVideo when the target yields nothing.
func (t Target) Resolve(ctx context.Context) (page.Video, error) {
	if t.resolver == nil {
		if t.video == nil {
			return nil, ErrNoVideo
		}

		return t.video, nil
	}

	video, err := t.resolver(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve video: %w", err)
	}

	if video == nil {
		return nil, ErrNoVideo
	}

	return video, nil
}
