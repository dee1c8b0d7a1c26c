package restdb

import (
	"context"
	"net/http"
	"net/url"
)

// AuthClient wraps the backend's auth endpoints.
type AuthClient struct {
	c *Client
}

// User is the backend's account record.
type User struct {
	ID           string                 `json:"id"`
	Email        string                 `json:"email"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
}

// Username returns the username from the signup metadata, if any.
func (u *User) Username() string {
	if u.UserMetadata == nil {
		return ""
	}
	if name, ok := u.UserMetadata["username"].(string); ok {
		return name
	}
	return ""
}

// Session is an authenticated backend session.
type Session struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

type credentialsBody struct {
	Email    string                 `json:"email"`
	Password string                 `json:"password"`
	Data     map[string]interface{} `json:"data,omitempty"`
}

// SignInWithPassword exchanges email/password for a session.
func (a *AuthClient) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	query := url.Values{}
	query.Set("grant_type", "password")
	var session Session
	err := a.c.do(ctx, http.MethodPost, "/auth/v1/token", query, credentialsBody{Email: email, Password: password}, "", &session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// SignUp registers a new account. The metadata travels in the signup payload
// and comes back on the user record (used for the username).
func (a *AuthClient) SignUp(ctx context.Context, email, password string, metadata map[string]interface{}) (*Session, error) {
	var session Session
	err := a.c.do(ctx, http.MethodPost, "/auth/v1/signup", nil, credentialsBody{Email: email, Password: password, Data: metadata}, "", &session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// SignOut revokes the session behind accessToken.
func (a *AuthClient) SignOut(ctx context.Context, accessToken string) error {
	return a.c.doAuthorized(ctx, http.MethodPost, "/auth/v1/logout", nil, nil, "", accessToken, nil)
}

// GetUser resolves the user behind an access token, the session-restore path
// at startup.
func (a *AuthClient) GetUser(ctx context.Context, accessToken string) (*User, error) {
	var user User
	err := a.c.doAuthorized(ctx, http.MethodGet, "/auth/v1/user", nil, nil, "", accessToken, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
