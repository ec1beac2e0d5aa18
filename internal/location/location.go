// Package location classifies the page a player lives on from its URL.
package location

import (
	"net/url"
	"strings"
)

const shortsSegment = "shorts"

// IsShorts reports whether href points into the short-form feed.
func IsShorts(href string) bool {
	u, err := url.Parse(href)
	if err != nil {
		return strings.Contains(href, shortsSegment)
	}

	first, _, _ := strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")
	return first == shortsSegment
}

// VideoID returns the id of the video the location points at, or "" when
// there is none. Watch pages carry it in the v query parameter, Shorts in
// the path.
func VideoID(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}

	if IsShorts(href) {
		rest := strings.TrimPrefix(strings.TrimPrefix(u.Path, "/"), shortsSegment)
		id, _, _ := strings.Cut(strings.TrimPrefix(rest, "/"), "/")
		return id
	}

	return u.Query().Get("v")
}
