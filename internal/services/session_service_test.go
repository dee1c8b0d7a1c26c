package services_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"ecofinds/internal/models"
	"ecofinds/internal/services"
	"ecofinds/pkg/kvstore"
	"ecofinds/pkg/restdb"

	"github.com/stretchr/testify/assert"
)

// newTestStore opens a throwaway key-value store backed by a temp file.
func newTestStore(t *testing.T) *kvstore.Store {
	t.Helper()
	store, err := kvstore.Open(filepath.Join(t.TempDir(), "ecofinds.db"))
	assert.NoError(t, err)
	return store
}

// unreachableRemote returns a backend client pointing at a port nothing
// listens on, so every call fails at the transport layer.
func unreachableRemote() *restdb.Client {
	return restdb.New("http://127.0.0.1:1", "test-key", 500*time.Millisecond)
}

func TestSessionService_LocalSignUp(t *testing.T) {
	kv := newTestStore(t)
	session := services.NewSessionService(nil, kv, "test_jwt_secret")

	assert.Equal(t, services.ModeLocal, session.Mode())

	user, token, origin, err := session.SignUp(context.Background(), "alice", "alice@example.com", "password123")
	assert.NoError(t, err)
	assert.Equal(t, services.OriginLocal, origin)
	assert.NotNil(t, user)
	assert.Equal(t, "alice", user.DisplayName)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEmpty(t, user.ID)
	assert.NotEmpty(t, token)

	claims, err := session.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, user.ID, claims["user_id"])
	assert.Equal(t, "alice", claims["username"])

	current := session.CurrentUser()
	assert.NotNil(t, current)
	assert.Equal(t, user.ID, current.ID)
}

func TestSessionService_LocalSignInKeepsIdentity(t *testing.T) {
	kv := newTestStore(t)
	session := services.NewSessionService(nil, kv, "test_jwt_secret")

	registered, _, _, err := session.SignUp(context.Background(), "bob", "bob@example.com", "hunter22")
	assert.NoError(t, err)
	session.SignOut(context.Background())

	// Matching credentials keep the registered user id
	returning, _, origin, err := session.SignIn(context.Background(), "bob@example.com", "hunter22")
	assert.NoError(t, err)
	assert.Equal(t, services.OriginLocal, origin)
	assert.Equal(t, registered.ID, returning.ID)

	// Wrong password still signs in, but as a fresh demo user
	session.SignOut(context.Background())
	stranger, _, _, err := session.SignIn(context.Background(), "bob@example.com", "wrong-password")
	assert.NoError(t, err)
	assert.NotNil(t, stranger)
	assert.NotEqual(t, registered.ID, stranger.ID)
}

func TestSessionService_RestoresPersistedSession(t *testing.T) {
	kv := newTestStore(t)
	first := services.NewSessionService(nil, kv, "test_jwt_secret")

	user, _, _, err := first.SignUp(context.Background(), "carol", "carol@example.com", "password123")
	assert.NoError(t, err)

	// A new process over the same store picks the session back up
	second := services.NewSessionService(nil, kv, "test_jwt_secret")
	second.Initialize(context.Background())
	restored := second.CurrentUser()
	assert.NotNil(t, restored)
	assert.Equal(t, user.ID, restored.ID)
}

func TestSessionService_SignOutClearsSession(t *testing.T) {
	kv := newTestStore(t)
	session := services.NewSessionService(nil, kv, "test_jwt_secret")

	_, _, _, err := session.SignUp(context.Background(), "dave", "dave@example.com", "password123")
	assert.NoError(t, err)

	session.SignOut(context.Background())
	_, err = session.RequireUser()
	assert.ErrorIs(t, err, models.ErrNotSignedIn)

	// The persisted session is gone too
	fresh := services.NewSessionService(nil, kv, "test_jwt_secret")
	fresh.Initialize(context.Background())
	assert.Nil(t, fresh.CurrentUser())
}

func TestSessionService_SyntheticUserWhenRemoteAuthFails(t *testing.T) {
	kv := newTestStore(t)
	session := services.NewSessionService(unreachableRemote(), kv, "test_jwt_secret")

	assert.Equal(t, services.ModeRemote, session.Mode())

	user, token, origin, err := session.SignIn(context.Background(), "eve@example.com", "password123")
	assert.NoError(t, err)
	assert.Equal(t, services.OriginLocal, origin)
	assert.NotNil(t, user)
	assert.Equal(t, "eve", user.DisplayName)
	assert.NotEmpty(t, token)

	// A failed auth call does not change the mode; only the startup
	// session check can downgrade it.
	assert.Equal(t, services.ModeRemote, session.Mode())
}

func TestSessionService_InitializeDowngradesOnTransportFailure(t *testing.T) {
	kv := newTestStore(t)

	// Persist a session that claims a backend token, then bootstrap with an
	// unreachable backend.
	stored := models.StoredSession{
		Token:             "whatever",
		RemoteAccessToken: "stale-access-token",
		User:              models.User{ID: "user-1", Email: "frank@example.com"},
	}
	raw, err := json.Marshal(stored)
	assert.NoError(t, err)
	assert.NoError(t, kv.Set("ecofinds_session", string(raw)))

	session := services.NewSessionService(unreachableRemote(), kv, "test_jwt_secret")
	session.Initialize(context.Background())

	assert.Equal(t, services.ModeLocal, session.Mode())
	assert.Nil(t, session.CurrentUser())
}
