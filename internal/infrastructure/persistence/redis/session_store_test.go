package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edupulse/student-risk-hub/internal/infrastructure/auth"
)

func TestSessionStore_PutGet(t *testing.T) {
	cache, _ := newTestCache(t)
	store := NewSessionStore(cache)
	ctx := context.Background()

	session := auth.Session{
		AccountID: "account-1",
		Email:     "ayan@school.edu",
		Role:      auth.RoleTeacher,
		TeacherID: "teacher-1",
		CreatedAt: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.Put(ctx, "tok-1", session, time.Hour))

	got, err := store.Get(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, session, got)
}

func TestSessionStore_Expiry(t *testing.T) {
	cache, mr := newTestCache(t)
	store := NewSessionStore(cache)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "tok-1", auth.Session{AccountID: "account-1"}, time.Minute))
	mr.FastForward(2 * time.Minute)

	_, err := store.Get(ctx, "tok-1")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestSessionStore_Delete(t *testing.T) {
	cache, _ := newTestCache(t)
	store := NewSessionStore(cache)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "tok-1", auth.Session{AccountID: "account-1"}, time.Hour))
	require.NoError(t, store.Delete(ctx, "tok-1"))

	_, err := store.Get(ctx, "tok-1")
	assert.ErrorIs(t, err, ErrCacheMiss)
}
