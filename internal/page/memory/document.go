// Package memory is an in-process page.Document. Elements are matched by the
// selector tokens they are registered with rather than by a CSS engine, which
// is all the controller needs: it only ever queries fixed selectors.
package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/sharetube/playerctl/internal/page"
)

var ErrForeignElement = errors.New("element does not belong to this document")

type Document struct {
	mu             sync.Mutex
	href           string
	viewportHeight float64
	fullscreen     bool
	elements       []*Element
	videos         []*Video
	videoScans     int
}

func NewDocument(href string, viewportHeight float64) *Document {
	return &Document{
		href:           href,
		viewportHeight: viewportHeight,
	}
}

// AddElement appends an element to the document. parent may be nil.
func (d *Document) AddElement(parent *Element, selectors ...string) *Element {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.addElementLocked(parent, selectors)
}

func (d *Document) addElementLocked(parent *Element, selectors []string) *Element {
	el := &Element{
		doc:       d,
		parent:    parent,
		selectors: selectors,
		classes:   make(map[string]bool),
		styles:    make(map[string]string),
	}
	d.elements = append(d.elements, el)

	return el
}

// AddVideo appends a visible, laid out, paused video with the given box.
func (d *Document) AddVideo(parent *Element, rect page.Rect) *Video {
	d.mu.Lock()
	defer d.mu.Unlock()

	v := &Video{
		Element: d.addElementLocked(parent, []string{"video"}),
		rect:    rect,
		style: page.Style{
			Visibility: "visible",
			Display:    "inline",
		},
		attached: true,
		state: VideoState{
			Paused:       true,
			PlaybackRate: 1,
			Volume:       1,
		},
	}
	d.videos = append(d.videos, v)

	return v
}

// Remove detaches el and all of its descendants.
func (d *Document) Remove(el *Element) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, e := range d.elements {
		if e == el || e.hasAncestorLocked(el) {
			e.removed = true
		}
	}
}

func (d *Document) SetLocation(href string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.href = href
}

func (d *Document) SetViewportHeight(h float64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.viewportHeight = h
}

func (d *Document) SetFullscreen(fullscreen bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.fullscreen = fullscreen
}

func (d *Document) Fullscreen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.fullscreen
}

// VideoScans counts calls to Videos.
func (d *Document) VideoScans() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.videoScans
}

func (d *Document) Videos(_ context.Context) ([]page.Video, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.videoScans++
	videos := make([]page.Video, 0, len(d.videos))
	for _, v := range d.videos {
		if v.removed {
			continue
		}
		videos = append(videos, v)
	}

	return videos, nil
}

func (d *Document) ViewportHeight(_ context.Context) (float64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.viewportHeight, nil
}

func (d *Document) Location(_ context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.href, nil
}

func (d *Document) QuerySelector(_ context.Context, selector string) (page.Element, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, el := range d.elements {
		if !el.removed && el.matchesLocked(selector) {
			return el, nil
		}
	}

	return nil, nil
}

func (d *Document) QuerySelectorAll(_ context.Context, root page.Element, selector string) ([]page.Element, error) {
	var rootEl *Element
	switch r := root.(type) {
	case nil:
	case *Element:
		rootEl = r
	case *Video:
		rootEl = r.Element
	default:
		return nil, ErrForeignElement
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	var found []page.Element
	for _, el := range d.elements {
		if el.removed || !el.matchesLocked(selector) {
			continue
		}
		if rootEl != nil && !el.hasAncestorLocked(rootEl) {
			continue
		}
		found = append(found, el)
	}

	return found, nil
}

func (d *Document) FullscreenActive(_ context.Context) (bool, error) {
	return d.Fullscreen(), nil
}

func (d *Document) ExitFullscreen(_ context.Context) error {
	d.SetFullscreen(false)
	return nil
}

func splitSelectorList(selector string) []string {
	parts := strings.Split(selector, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	return parts
}
