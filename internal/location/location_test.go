package location

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsShorts(t *testing.T) {
	tests := []struct {
		href string
		want bool
	}{
		{"https://www.youtube.com/shorts/abcdefghijk", true},
		{"https://m.youtube.com/shorts/abcdefghijk?feature=share", true},
		{"https://www.youtube.com/watch?v=abcdefghijk", false},
		{"https://www.youtube.com/", false},
		{"https://www.youtube.com/watch?v=abcdefghijk&list=shorts", false},
		{"https://www.youtube.com/@channel/shorts", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsShorts(tt.href), tt.href)
	}
}

func TestVideoID(t *testing.T) {
	assert.Equal(t, "abcdefghijk", VideoID("https://www.youtube.com/watch?v=abcdefghijk&t=10"))
	assert.Equal(t, "abcdefghijk", VideoID("https://www.youtube.com/shorts/abcdefghijk"))
	assert.Equal(t, "abcdefghijk", VideoID("https://www.youtube.com/shorts/abcdefghijk/"))
	assert.Equal(t, "", VideoID("https://www.youtube.com/feed/subscriptions"))
	assert.Equal(t, "", VideoID("://broken"))
}
