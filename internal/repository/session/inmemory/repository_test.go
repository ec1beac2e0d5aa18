package inmemory

import (
	"sync"
	"testing"

	"github.com/sharetube/playerctl/internal/repository/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	name string
}

func TestRepo_AddGetRemove(t *testing.T) {
	t.Parallel()

	r := NewRepo[*entry]()
	e := &entry{name: "a"}

	require.NoError(t, r.Add("s1", e))
	assert.ErrorIs(t, r.Add("s1", &entry{}), session.ErrAlreadyExists)

	got, err := r.Get("s1")
	require.NoError(t, err)
	assert.Same(t, e, got)
	assert.Equal(t, 1, r.Len())

	removed, err := r.Remove("s1")
	require.NoError(t, err)
	assert.Same(t, e, removed)

	_, err = r.Get("s1")
	assert.ErrorIs(t, err, session.ErrNotFound)
	_, err = r.Remove("s1")
	assert.ErrorIs(t, err, session.ErrNotFound)
	assert.Equal(t, 0, r.Len())
}

func TestRepo_Concurrent(t *testing.T) {
	t.Parallel()

	r := NewRepo[int]()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := string(rune('a'+i%26)) + string(rune('A'+i/26))
			assert.NoError(t, r.Add(id, i))
			_, err := r.Get(id)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, r.Len())
}
