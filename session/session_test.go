package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndGet(t *testing.T) {
	ctx := context.Background()
	st := NewStore(nil, time.Hour)

	sess, err := st.Create(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, sess.Token)
	assert.True(t, sess.Anonymous())

	got, ok := st.Get(ctx, sess.Token)
	require.True(t, ok)
	assert.Equal(t, sess.Token, got.Token)
	assert.True(t, got.Anonymous())
}

func TestSaveRoundTripsIdentityFields(t *testing.T) {
	ctx := context.Background()
	st := NewStore(nil, time.Hour)

	sess, err := st.Create(ctx)
	require.NoError(t, err)

	sess.UserID = 7
	sess.PendingIdentityHash = "abc"
	require.NoError(t, st.Save(ctx, sess))

	got, ok := st.Get(ctx, sess.Token)
	require.True(t, ok)
	assert.EqualValues(t, 7, got.UserID)
	assert.Equal(t, "abc", got.PendingIdentityHash)
	assert.False(t, got.Anonymous())
}

func TestGetUnknownToken(t *testing.T) {
	st := NewStore(nil, time.Hour)

	_, ok := st.Get(context.Background(), "no-such-token")
	assert.False(t, ok)
	_, ok = st.Get(context.Background(), "")
	assert.False(t, ok)
}

func TestDestroyIsIdempotent(t *testing.T) {
	ctx := context.Background()
	st := NewStore(nil, time.Hour)

	sess, err := st.Create(ctx)
	require.NoError(t, err)

	require.NoError(t, st.Destroy(ctx, sess.Token))
	_, ok := st.Get(ctx, sess.Token)
	assert.False(t, ok)

	require.NoError(t, st.Destroy(ctx, sess.Token))
	require.NoError(t, st.Destroy(ctx, ""))
}

func TestExpiredEntryIsGone(t *testing.T) {
	ctx := context.Background()
	st := NewStore(nil, time.Hour)

	sess, err := st.Create(ctx)
	require.NoError(t, err)

	st.mu.Lock()
	entry := st.mem[sess.Token]
	entry.expiresAt = time.Now().Add(-time.Minute)
	st.mem[sess.Token] = entry
	st.mu.Unlock()

	_, ok := st.Get(ctx, sess.Token)
	assert.False(t, ok)
}

func TestAnonymousNilSafe(t *testing.T) {
	var sess *Session
	assert.True(t, sess.Anonymous())
}
