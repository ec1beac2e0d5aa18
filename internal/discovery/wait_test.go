package discovery

import (
	"context"
	"testing"
	"time"

	"github.com/sharetube/playerctl/internal/page/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitForVideoAlreadyPresent(t *testing.T) {
	doc := memory.NewDocument(watchURL, 900)
	v := doc.AddVideo(nil, playerRect)

	start := time.Now()
	found, err := WaitForVideo(context.Background(), doc, time.Second)
	require.NoError(t, err)
	assert.Equal(t, v, found)
	assert.Less(t, time.Since(start), PollInterval)
	assert.Equal(t, 1, doc.VideoScans())
}

func TestWaitForVideoTimesOut(t *testing.T) {
	doc := memory.NewDocument(watchURL, 900)

	start := time.Now()
	found, err := WaitForVideo(context.Background(), doc, time.Second)
	elapsed := time.Since(start)

	assert.ErrorIs(t, err, ErrTimeout)
	assert.Nil(t, found)
	assert.GreaterOrEqual(t, elapsed, time.Second)

	scans := doc.VideoScans()
	assert.GreaterOrEqual(t, scans, 3)

	time.Sleep(2 * PollInterval)
	assert.Equal(t, scans, doc.VideoScans(), "no pass may run after the wait settled")
}

func TestWaitForVideoAppearsLater(t *testing.T) {
	doc := memory.NewDocument(watchURL, 900)
	w := &Waiter{Interval: 10 * time.Millisecond}

	added := make(chan *memory.Video, 1)
	time.AfterFunc(50*time.Millisecond, func() {
		added <- doc.AddVideo(nil, playerRect)
	})

	found, err := w.Wait(context.Background(), doc, time.Second)
	require.NoError(t, err)
	assert.Equal(t, <-added, found)
}

func TestWaitForVideoNonPositiveTimeoutChecksOnce(t *testing.T) {
	doc := memory.NewDocument(watchURL, 900)

	_, err := WaitForVideo(context.Background(), doc, 0)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, 1, doc.VideoScans())

	doc.AddVideo(nil, playerRect)
	found, err := WaitForVideo(context.Background(), doc, -time.Second)
	require.NoError(t, err)
	assert.NotNil(t, found)
}

func TestWaitForVideoContextCancelled(t *testing.T) {
	doc := memory.NewDocument(watchURL, 900)
	w := &Waiter{Interval: 10 * time.Millisecond}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := w.Wait(ctx, doc, time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
