package utils // package utils provides helpers for session token creation and hashing

import (
	"crypto/sha256" // SHA-256 hashing for stored session ids
	"encoding/hex"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
	"github.com/google/uuid"
)

// ErrInvalidToken is returned when a session token fails verification.
var ErrInvalidToken = errors.New("invalid token")

// SessionClaims are the claims carried by a session token.  The registered
// "sub" holds the user ID and "jti" the session ID looked up in the
// sessions table.
type SessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c SessionClaims) UserID() (uint64, error) {
	return strconv.ParseUint(c.Subject, 10, 64)
}

// SessionToken is a signed session JWT plus the values the server stores
// about it.
type SessionToken struct {
	Token string    // serialized JWT handed to the client
	ID    string    // session id (jti); only its hash is persisted
	Exp   time.Time // UTC expiration time
}

// NewSessionToken signs an HS256 JWT for a user with a fresh random
// session id.
func NewSessionToken(secret string, userID uint64, role string, ttl time.Duration) (SessionToken, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	jti := uuid.NewString()
	claims := SessionClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(userID, 10),
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return SessionToken{}, err
	}
	return SessionToken{Token: signed, ID: jti, Exp: exp}, nil
}

// ParseSessionToken verifies the signature and expiry of raw and returns
// its claims.  Only HMAC-signed tokens are accepted.
func ParseSessionToken(secret, raw string) (SessionClaims, error) {
	var claims SessionClaims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid || claims.ID == "" {
		return SessionClaims{}, ErrInvalidToken
	}
	if _, err := claims.UserID(); err != nil {
		return SessionClaims{}, ErrInvalidToken
	}
	return claims, nil
}

// HashToken returns the SHA-256 hex digest of a session id.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
