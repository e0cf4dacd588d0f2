// AngelaMos | 2026
// entity.go

package auth

import (
	"time"
)

// RefreshToken is a persisted refresh credential. Revocation is the only
// stored state transition; expiry is derived from ExpiresAt at read time.
type RefreshToken struct {
	ID        int64      `db:"id"         json:"id"`
	Token     string     `db:"token"      json:"token"`
	UserID    int64      `db:"user_id"    json:"userId"`
	CreatedAt time.Time  `db:"created_at" json:"createdAt"`
	ExpiresAt time.Time  `db:"expires_at" json:"expiresAt"`
	Revoked   bool       `db:"revoked"    json:"revoked"`
	RevokedAt *time.Time `db:"revoked_at" json:"revokedAt,omitempty"`
}

func (t *RefreshToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}

func (t *RefreshToken) IsRevoked() bool {
	return t.Revoked
}

// IsActive reports whether the token can still be redeemed.
func (t *RefreshToken) IsActive() bool {
	return !t.IsRevoked() && !t.IsExpired()
}
