package models

// User represents the signed-in account held by the session. At most one
// exists per running client instance; every other entity references it by id.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email" validate:"omitempty,email"`
	DisplayName string `json:"display_name"`
}

// StoredSession is the session record persisted in the local store so a
// restarted client can resume without signing in again.
type StoredSession struct {
	Token             string `json:"token"`                         // JWT issued by the session service
	RemoteAccessToken string `json:"remote_access_token,omitempty"` // backend token, Remote mode only
	User              User   `json:"user"`
}

// LocalCredential records a bcrypt hash for an email that signed up in Local
// mode, so a returning login with the same password reuses the same user id.
type LocalCredential struct {
	UserID       string `json:"user_id"`
	Username     string `json:"username"`
	PasswordHash string `json:"password_hash"`
}
