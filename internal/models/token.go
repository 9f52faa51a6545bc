package models

import "time"

// RefreshToken is a persisted refresh session. Rows are never rendered over
// HTTP; the opaque token string is the only part that leaves the server.
type RefreshToken struct {
	ID        string     `db:"id"`
	UserID    string     `db:"user_id"`
	Token     string     `db:"token"`
	IPAddress string     `db:"ip_address"`
	UserAgent string     `db:"user_agent"`
	Revoked   bool       `db:"revoked"`
	RevokedAt *time.Time `db:"revoked_at"`
	ExpiresAt time.Time  `db:"expires_at"`
	CreatedAt time.Time  `db:"created_at"`
}
