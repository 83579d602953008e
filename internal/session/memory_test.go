package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlidingExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return now })

	sess, err := store.Create(ctx, 42)
	require.NoError(t, err)

	// Three requests 20 minutes apart each slide the window, so the session
	// outlives its original 30-minute deadline.
	for i := 0; i < 3; i++ {
		now = now.Add(20 * time.Minute)
		got, err := store.Get(ctx, sess.Token)
		require.NoError(t, err)
		assert.Equal(t, uint(42), got.UserID)
		assert.Equal(t, now, got.LastSeenAt)
	}

	// Exceeding the inactivity window invalidates.
	now = now.Add(InactivityTimeout + time.Second)
	_, err = store.Get(ctx, sess.Token)
	assert.ErrorIs(t, err, ErrNotFound)

	// And an expired session stays gone even if the clock rolls back.
	now = now.Add(-time.Hour)
	_, err = store.Get(ctx, sess.Token)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDestroy(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	sess, err := store.Create(ctx, 7)
	require.NoError(t, err)

	require.NoError(t, store.Destroy(ctx, sess.Token))
	_, err = store.Get(ctx, sess.Token)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEnsureCSRFIsStable(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	sess, err := store.Create(ctx, 1)
	require.NoError(t, err)

	first, err := store.EnsureCSRF(ctx, sess.Token)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := store.EnsureCSRF(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	_, err = store.EnsureCSRF(ctx, "no-such-token")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestVerifyCSRF(t *testing.T) {
	sess := &Session{CSRFToken: "tok-abc"}

	assert.True(t, VerifyCSRF(sess, "tok-abc"))
	assert.False(t, VerifyCSRF(sess, "tok-xyz"))
	assert.False(t, VerifyCSRF(sess, ""))
	assert.False(t, VerifyCSRF(&Session{}, "tok-abc"), "unissued token never matches")
	assert.False(t, VerifyCSRF(nil, "tok-abc"))
}
