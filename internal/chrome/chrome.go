// Package chrome finds the host player's own controls (overlay bars, badges,
// buttons) in a page. Every lookup tolerates the element being absent.
package chrome

import (
	"context"
	"fmt"
	"strings"

	"github.com/sharetube/playerctl/internal/page"
)

type Selectors struct {
	MoviePlayer    string   `json:"movie_player" mapstructure:"movie-player"`
	Hidable        []string `json:"hidable" mapstructure:"hidable"`
	LiveBadge      string   `json:"live_badge" mapstructure:"live-badge"`
	LiveHeadClass  string   `json:"live_head_class" mapstructure:"live-head-class"`
	Fullscreen     string   `json:"fullscreen" mapstructure:"fullscreen"`
	Subtitles      string   `json:"subtitles" mapstructure:"subtitles"`
	NavigationUp   string   `json:"navigation_up" mapstructure:"navigation-up"`
	NavigationDown string   `json:"navigation_down" mapstructure:"navigation-down"`
}

// DefaultSelectors matches the watch page and Shorts markup.
func DefaultSelectors() Selectors {
	return Selectors{
		MoviePlayer: "#movie_player",
		Hidable: []string{
			".ytp-chrome-bottom",
			".ytp-gradient-bottom",
			".ytp-player-content",
			".ytp-gradient-top",
			".ytp-chrome-top",
		},
		LiveBadge:      ".ytp-live-badge",
		LiveHeadClass:  "ytp-live-badge-is-livehead",
		Fullscreen:     ".ytp-fullscreen-button",
		Subtitles:      ".ytp-subtitles-button",
		NavigationUp:   "#navigation-button-up yt-touch-feedback-shape",
		NavigationDown: "#navigation-button-down yt-touch-feedback-shape",
	}
}

// Merge returns s with every non-empty field of overrides applied.
func (s Selectors) Merge(overrides Selectors) Selectors {
	for _, f := range []struct {
		dst *string
		src string
	}{
		{&s.MoviePlayer, overrides.MoviePlayer},
		{&s.LiveBadge, overrides.LiveBadge},
		{&s.LiveHeadClass, overrides.LiveHeadClass},
		{&s.Fullscreen, overrides.Fullscreen},
		{&s.Subtitles, overrides.Subtitles},
		{&s.NavigationUp, overrides.NavigationUp},
		{&s.NavigationDown, overrides.NavigationDown},
	} {
		if f.src != "" {
			*f.dst = f.src
		}
	}

	if len(overrides.Hidable) > 0 {
		s.Hidable = append([]string(nil), overrides.Hidable...)
	}

	return s
}

type Locator struct {
	doc       page.Document
	selectors Selectors
}

func NewLocator(doc page.Document, selectors Selectors) *Locator {
	return &Locator{
		doc:       doc,
		selectors: selectors,
	}
}

func (l *Locator) Selectors() Selectors {
	return l.selectors
}

// HidableElements returns the overlay elements inside the movie player, or
// nothing when the player is not on the page.
func (l *Locator) HidableElements(ctx context.Context) ([]page.Element, error) {
	if len(l.selectors.Hidable) == 0 {
		return nil, nil
	}

	moviePlayer, err := l.doc.QuerySelector(ctx, l.selectors.MoviePlayer)
	if err != nil {
		return nil, fmt.Errorf("failed to query movie player: %w", err)
	}

	if moviePlayer == nil {
		return nil, nil
	}

	elements, err := l.doc.QuerySelectorAll(ctx, moviePlayer, strings.Join(l.selectors.Hidable, ", "))
	if err != nil {
		return nil, fmt.Errorf("failed to query hidable elements: %w", err)
	}

	return elements, nil
}

func (l *Locator) LiveBadge(ctx context.Context) (page.Element, error) {
	return l.query(ctx, l.selectors.LiveBadge)
}

func (l *Locator) FullscreenButton(ctx context.Context) (page.Element, error) {
	return l.query(ctx, l.selectors.Fullscreen)
}

func (l *Locator) SubtitlesButton(ctx context.Context) (page.Element, error) {
	return l.query(ctx, l.selectors.Subtitles)
}

// ToggleSubtitles clicks the subtitles button and reports whether it was there.
func (l *Locator) ToggleSubtitles(ctx context.Context) (bool, error) {
	return l.click(ctx, l.selectors.Subtitles)
}

// NextShort clicks the feed's "down" navigation button.
func (l *Locator) NextShort(ctx context.Context) (bool, error) {
	return l.click(ctx, l.selectors.NavigationDown)
}

// PreviousShort clicks the feed's "up" navigation button.
func (l *Locator) PreviousShort(ctx context.Context) (bool, error) {
	return l.click(ctx, l.selectors.NavigationUp)
}

func (l *Locator) query(ctx context.Context, selector string) (page.Element, error) {
	if selector == "" {
		return nil, nil
	}

	el, err := l.doc.QuerySelector(ctx, selector)
	if err != nil {
		return nil, fmt.Errorf("failed to query %q: %w", selector, err)
	}

	return el, nil
}

func (l *Locator) click(ctx context.Context, selector string) (bool, error) {
	el, err := l.query(ctx, selector)
	if err != nil {
		return false, err
	}

	if el == nil {
		return false, nil
	}

	if err := el.Click(ctx); err != nil {
		return false, fmt.Errorf("failed to click %q: %w", selector, err)
	}

	return true, nil
}
