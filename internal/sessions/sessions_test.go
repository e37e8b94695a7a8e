package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/lanblog/apiserver/internal/codes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndGet(t *testing.T) {
	manager := NewManager(codes.NewMemoryStore())
	ctx := context.Background()

	session, err := manager.Create(ctx, 42, "blogger", true)
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	assert.True(t, session.Remember)
	assert.WithinDuration(t, time.Now().Add(Lifetime), session.ExpiresAt, time.Minute)

	loaded, err := manager.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 42, loaded.UserID)
	assert.Equal(t, "blogger", loaded.Username)
}

func TestGetMissing(t *testing.T) {
	manager := NewManager(codes.NewMemoryStore())

	_, err := manager.Get(context.Background(), "no-such-session")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteIsIdempotent(t *testing.T) {
	manager := NewManager(codes.NewMemoryStore())
	ctx := context.Background()

	session, err := manager.Create(ctx, 1, "u", false)
	require.NoError(t, err)

	require.NoError(t, manager.Delete(ctx, session.ID))
	require.NoError(t, manager.Delete(ctx, session.ID))
	require.NoError(t, manager.Delete(ctx, ""))

	_, err = manager.Get(ctx, session.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRefreshUpdatesUsername(t *testing.T) {
	manager := NewManager(codes.NewMemoryStore())
	ctx := context.Background()

	session, err := manager.Create(ctx, 7, "before", false)
	require.NoError(t, err)

	session.Username = "after"
	require.NoError(t, manager.Refresh(ctx, session))

	loaded, err := manager.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "after", loaded.Username)
}

func TestTokenCodecRoundTrip(t *testing.T) {
	codec := NewTokenCodec("test-secret")

	session := Session{ID: "abc-123", ExpiresAt: time.Now().Add(time.Hour)}
	token, err := codec.Issue(session)
	require.NoError(t, err)

	id, err := codec.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "abc-123", id)
}

func TestTokenCodecRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenCodec("secret-a")
	parser := NewTokenCodec("secret-b")

	token, err := issuer.Issue(Session{ID: "abc", ExpiresAt: time.Now().Add(time.Hour)})
	require.NoError(t, err)

	_, err = parser.Parse(token)
	assert.Error(t, err)
}

func TestTokenCodecRejectsExpired(t *testing.T) {
	codec := NewTokenCodec("test-secret")

	token, err := codec.Issue(Session{ID: "abc", ExpiresAt: time.Now().Add(-time.Minute)})
	require.NoError(t, err)

	_, err = codec.Parse(token)
	assert.Error(t, err)
}

func TestTokenCodecRejectsGarbage(t *testing.T) {
	codec := NewTokenCodec("test-secret")

	_, err := codec.Parse("not-a-token")
	assert.Error(t, err)
}
