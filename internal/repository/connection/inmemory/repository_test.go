package inmemory

import (
	"testing"

	"github.com/sharetube/playerctl/internal/repository/connection"
	"github.com/sharetube/playerctl/pkg/wsrouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepo(t *testing.T) {
	t.Parallel()

	r := NewRepo()
	a := &wsrouter.Conn{}
	b := &wsrouter.Conn{}

	require.NoError(t, r.Add(a, "s1"))
	require.NoError(t, r.Add(b, "s1"))
	assert.ErrorIs(t, r.Add(a, "s2"), connection.ErrAlreadyExists)

	assert.ElementsMatch(t, []*wsrouter.Conn{a, b}, r.GetConns("s1"))
	assert.Empty(t, r.GetConns("s2"))

	id, err := r.GetSessionID(b)
	require.NoError(t, err)
	assert.Equal(t, "s1", id)

	require.NoError(t, r.RemoveByConn(a))
	assert.ErrorIs(t, r.RemoveByConn(a), connection.ErrNotFound)
	assert.Equal(t, []*wsrouter.Conn{b}, r.GetConns("s1"))

	require.NoError(t, r.RemoveByConn(b))
	assert.Empty(t, r.GetConns("s1"))

	_, err = r.GetSessionID(b)
	assert.ErrorIs(t, err, connection.ErrNotFound)
}
