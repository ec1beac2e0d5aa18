// Package discovery locates the video element that is actually being shown
// to the user among all video elements of a page.
package discovery

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sharetube/playerctl/internal/page"
)

const (
	MinVideoWidth  = 100
	MinVideoHeight = 100
)

type candidate struct {
	video           page.Video
	rect            page.Rect
	style           page.Style
	hasOffsetParent bool
}

func inspect(ctx context.Context, v page.Video) (candidate, error) {
	rect, err := v.BoundingRect(ctx)
	if err != nil {
		return candidate{}, fmt.Errorf("failed to get bounding rect: %w", err)
	}

	style, err := v.ComputedStyle(ctx)
	if err != nil {
		return candidate{}, fmt.Errorf("failed to get computed style: %w", err)
	}

	hasOffsetParent, err := v.HasOffsetParent(ctx)
	if err != nil {
		return candidate{}, fmt.Errorf("failed to get offset parent: %w", err)
	}

	return candidate{
		video:           v,
		rect:            rect,
		style:           style,
		hasOffsetParent: hasOffsetParent,
	}, nil
}

func (c candidate) qualifies(viewportHeight float64) bool {
	return c.rect.Width > MinVideoWidth &&
		c.rect.Height > MinVideoHeight &&
		c.rect.Top() < viewportHeight &&
		c.rect.Bottom() > 0 &&
		c.style.Visibility != "hidden" &&
		c.style.Display != "none" &&
		c.hasOffsetParent
}

// FindActiveVideo returns the first video in document order that is large
// enough, intersects the viewport vertically, is not hidden and is laid out.
// It returns nil and no error when no video qualifies. An element whose
// layout cannot be read is skipped for this pass.
func FindActiveVideo(ctx context.Context, doc page.Document) (page.Video, error) {
	funcName := "discovery.FindActiveVideo"

	videos, err := doc.Videos(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}

	if len(videos) == 0 {
		return nil, nil
	}

	viewportHeight, err := doc.ViewportHeight(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get viewport height: %w", err)
	}

	for i, v := range videos {
		c, err := inspect(ctx, v)
		if err != nil {
			slog.DebugContext(ctx, funcName, "index", i, "error", err)
			continue
		}

		if c.qualifies(viewportHeight) {
			return c.video, nil
		}
	}

	return nil, nil
}
