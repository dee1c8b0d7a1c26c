package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"ecofinds/internal/models"
	"ecofinds/pkg/kvstore"
	"ecofinds/pkg/restdb"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Local-store keys owned by the session service.
const (
	sessionKey     = "ecofinds_session"
	credentialsKey = "ecofinds_credentials"
)

// SessionService is the mode selector and session holder: it decides Remote
// vs Local at startup, bootstraps the persisted session, and owns the single
// current user. Sign-in and sign-up never hard-fail: any auth error mints a
// synthetic local user instead.
type SessionService struct {
	remote    *restdb.Client // nil when no endpoint/credential was configured
	kv        *kvstore.Store
	jwtSecret []byte
	tokenTTL  time.Duration

	mu                sync.RWMutex
	mode              Mode
	currentUser       *models.User
	remoteAccessToken string
}

// NewSessionService creates a new SessionService. A nil remote client means
// the configuration was absent and the session starts in Local mode; that is
// not an error.
func NewSessionService(remote *restdb.Client, kv *kvstore.Store, jwtSecret string) *SessionService {
	mode := ModeLocal
	if remote != nil {
		mode = ModeRemote
	}
	return &SessionService{
		remote:    remote,
		kv:        kv,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  24 * time.Hour,
		mode:      mode,
	}
}

// Mode returns the persistence mode chosen for this session.
func (s *SessionService) Mode() Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// CurrentUser returns the signed-in user, or nil.
func (s *SessionService) CurrentUser() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.currentUser == nil {
		return nil
	}
	user := *s.currentUser
	return &user
}

// RequireUser returns the signed-in user or models.ErrNotSignedIn.
func (s *SessionService) RequireUser() (*models.User, error) {
	if user := s.CurrentUser(); user != nil {
		return user, nil
	}
	return nil, models.ErrNotSignedIn
}

// RemoteAccessToken returns the backend token of the current session, if any.
func (s *SessionService) RemoteAccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.remoteAccessToken
}

// Initialize performs the one-time session bootstrap. It never returns an
// error: a transport failure while resolving the remote session permanently
// downgrades the mode to Local with no current user, and anything else
// degrades to "signed out".
func (s *SessionService) Initialize(ctx context.Context) {
	stored := s.loadStoredSession()

	if s.Mode() == ModeLocal {
		if stored == nil {
			return
		}
		if _, err := s.ValidateToken(stored.Token); err != nil {
			log.Printf("Persisted local session invalid, starting signed out: %v", err)
			return
		}
		s.setSession(&stored.User, "")
		log.Printf("Restored local session for user %s", stored.User.ID)
		return
	}

	if stored == nil || stored.RemoteAccessToken == "" {
		return // remote mode, nobody signed in yet
	}

	remoteUser, err := s.remote.Auth.GetUser(ctx, stored.RemoteAccessToken)
	if err != nil {
		var apiErr *restdb.Error
		if errors.As(err, &apiErr) {
			// The backend answered: the stored token is stale. Stay Remote.
			log.Printf("Persisted remote session rejected, starting signed out: %v", err)
			if delErr := s.kv.Delete(sessionKey); delErr != nil {
				log.Printf("Failed to drop stale session: %v", delErr)
			}
			return
		}
		// The backend did not answer at all: downgrade for the rest of the
		// session rather than propagating the failure.
		log.Printf("Remote session check failed, downgrading to local mode: %v", err)
		s.mu.Lock()
		s.mode = ModeLocal
		s.currentUser = nil
		s.remoteAccessToken = ""
		s.mu.Unlock()
		return
	}

	user := userFromRemote(remoteUser)
	token, err := s.issueToken(user)
	if err != nil {
		log.Printf("Failed to issue session token: %v", err)
		return
	}
	s.setSession(user, stored.RemoteAccessToken)
	s.persistSession(user, token, stored.RemoteAccessToken)
	log.Printf("Restored remote session for user %s", user.ID)
}

// SignIn authenticates with the backend in Remote mode. Any auth error,
// transport failure or rejected credentials alike, produces a synthetic
// local user so the flow never hard-fails from the user's perspective.
func (s *SessionService) SignIn(ctx context.Context, email, password string) (*models.User, string, Origin, error) {
	if s.Mode() == ModeLocal {
		user, token, err := s.localSignIn(email, password, "")
		return user, token, OriginLocal, err
	}

	session, err := s.remote.Auth.SignInWithPassword(ctx, email, password)
	if err != nil {
		log.Printf("Remote sign-in failed, minting synthetic local user: %v", err)
		user, token, lerr := s.localSignIn(email, password, "")
		return user, token, OriginLocal, lerr
	}

	user := userFromRemote(&session.User)
	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", OriginRemote, fmt.Errorf("failed to issue session token: %w", err)
	}
	s.setSession(user, session.AccessToken)
	s.persistSession(user, token, session.AccessToken)
	return user, token, OriginRemote, nil
}

// SignUp registers a new account. Same no-hard-fail contract as SignIn.
func (s *SessionService) SignUp(ctx context.Context, username, email, password string) (*models.User, string, Origin, error) {
	if s.Mode() == ModeLocal {
		user, token, err := s.localSignUp(username, email, password)
		return user, token, OriginLocal, err
	}

	session, err := s.remote.Auth.SignUp(ctx, email, password, map[string]interface{}{"username": username})
	if err != nil {
		log.Printf("Remote sign-up failed, minting synthetic local user: %v", err)
		user, token, lerr := s.localSignUp(username, email, password)
		return user, token, OriginLocal, lerr
	}

	user := userFromRemote(&session.User)
	if user.DisplayName == "" {
		user.DisplayName = username
	}
	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", OriginRemote, fmt.Errorf("failed to issue session token: %w", err)
	}
	s.setSession(user, session.AccessToken)
	s.persistSession(user, token, session.AccessToken)
	return user, token, OriginRemote, nil
}

// SignOut ends the session. Remote logout is best effort; the local session
// state is always cleared.
func (s *SessionService) SignOut(ctx context.Context) {
	if s.Mode() == ModeRemote {
		if token := s.RemoteAccessToken(); token != "" {
			if err := s.remote.Auth.SignOut(ctx, token); err != nil {
				log.Printf("Remote sign-out failed, clearing session anyway: %v", err)
			}
		}
	}
	s.mu.Lock()
	s.currentUser = nil
	s.remoteAccessToken = ""
	s.mu.Unlock()
	if err := s.kv.Delete(sessionKey); err != nil {
		log.Printf("Failed to clear persisted session: %v", err)
	}
}

// ValidateToken parses and validates a session JWT, returning its claims.
func (s *SessionService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}

// --- local path ---

// localSignIn signs in against the local credential registry. A matching
// email+password keeps its previous user id, so per-user collections survive
// re-login; anything else silently becomes a fresh synthetic user.
func (s *SessionService) localSignIn(email, password, username string) (*models.User, string, error) {
	creds := s.loadCredentials()
	if cred, ok := creds[email]; ok {
		if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err == nil {
			user := &models.User{ID: cred.UserID, Email: email, DisplayName: cred.Username}
			return s.finishLocalSession(user)
		}
		log.Printf("Local credentials mismatch for %s, minting a fresh demo user", email)
	}
	user := syntheticUser(email, username)
	return s.finishLocalSession(user)
}

// localSignUp mints a synthetic user and records its credentials so the
// identity is stable across logins.
func (s *SessionService) localSignUp(username, email, password string) (*models.User, string, error) {
	user := syntheticUser(email, username)
	creds := s.loadCredentials()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Failed to hash local credentials, continuing without registry entry: %v", err)
	} else {
		creds[email] = models.LocalCredential{
			UserID:       user.ID,
			Username:     user.DisplayName,
			PasswordHash: string(hash),
		}
		s.saveCredentials(creds)
	}
	return s.finishLocalSession(user)
}

func (s *SessionService) finishLocalSession(user *models.User) (*models.User, string, error) {
	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue session token: %w", err)
	}
	s.setSession(user, "")
	s.persistSession(user, token, "")
	return user, token, nil
}

// syntheticUser builds the demo-mode user: id from the current time plus a
// random salt, display name from the given username or the email local-part.
func syntheticUser(email, username string) *models.User {
	if username == "" {
		username = emailLocalPart(email)
	}
	return &models.User{
		ID:          fmt.Sprintf("demo-user-%d-%s", time.Now().UnixMilli(), uuid.New().String()[:8]),
		Email:       email,
		DisplayName: username,
	}
}

func emailLocalPart(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	if email != "" {
		return email
	}
	return "EcoFinder"
}

func userFromRemote(remoteUser *restdb.User) *models.User {
	name := remoteUser.Username()
	if name == "" {
		name = emailLocalPart(remoteUser.Email)
	}
	return &models.User{
		ID:          remoteUser.ID,
		Email:       remoteUser.Email,
		DisplayName: name,
	}
}

// --- session plumbing ---

func (s *SessionService) issueToken(user *models.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.DisplayName,
		"exp":      time.Now().Add(s.tokenTTL).Unix(),
		"iat":      time.Now().Unix(),
	})
	return token.SignedString(s.jwtSecret)
}

func (s *SessionService) setSession(user *models.User, remoteAccessToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := *user
	s.currentUser = &u
	s.remoteAccessToken = remoteAccessToken
}

func (s *SessionService) persistSession(user *models.User, token, remoteAccessToken string) {
	stored := models.StoredSession{
		Token:             token,
		RemoteAccessToken: remoteAccessToken,
		User:              *user,
	}
	raw, err := json.Marshal(stored)
	if err != nil {
		log.Printf("Failed to encode session: %v", err)
		return
	}
	if err := s.kv.Set(sessionKey, string(raw)); err != nil {
		log.Printf("Failed to persist session: %v", err)
	}
}

func (s *SessionService) loadStoredSession() *models.StoredSession {
	raw, ok, err := s.kv.Get(sessionKey)
	if err != nil || !ok {
		if err != nil {
			log.Printf("Failed to read persisted session: %v", err)
		}
		return nil
	}
	var stored models.StoredSession
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		log.Printf("Corrupt persisted session, ignoring: %v", err)
		return nil
	}
	return &stored
}

func (s *SessionService) loadCredentials() map[string]models.LocalCredential {
	creds := make(map[string]models.LocalCredential)
	raw, ok, err := s.kv.Get(credentialsKey)
	if err != nil || !ok {
		return creds
	}
	if err := json.Unmarshal([]byte(raw), &creds); err != nil {
		log.Printf("Corrupt credential registry, starting fresh: %v", err)
		return make(map[string]models.LocalCredential)
	}
	return creds
}

func (s *SessionService) saveCredentials(creds map[string]models.LocalCredential) {
	raw, err := json.Marshal(creds)
	if err != nil {
		log.Printf("Failed to encode credential registry: %v", err)
		return
	}
	if err := s.kv.Set(credentialsKey, string(raw)); err != nil {
		log.Printf("Failed to persist credential registry: %v", err)
	}
}
