package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Admin sessions are stateless signed tokens verified on every
// request: <session id>.<unix expiry>.<hmac>. The server never trusts
// a client-side flag.

const SessionCookieName = "rsquare_admin_session"

var (
	ErrSessionInvalid = errors.New("session token invalid")
	ErrSessionExpired = errors.New("session token expired")
)

type Sessions struct {
	secret []byte
	ttl    time.Duration
}

func NewSessions(secret string, ttl time.Duration) *Sessions {
	return &Sessions{secret: []byte(secret), ttl: ttl}
}

// TTL reports the configured session lifetime.
func (s *Sessions) TTL() time.Duration { return s.ttl }

// Issue creates a fresh signed token expiring after the configured TTL.
func (s *Sessions) Issue() string {
	id := ulid.Make().String()
	expiry := strconv.FormatInt(time.Now().Add(s.ttl).Unix(), 10)
	payload := id + "." + expiry
	return payload + "." + s.sign(payload)
}

// Verify checks signature and expiry, returning the session id.
func (s *Sessions) Verify(token string) (string, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return "", ErrSessionInvalid
	}

	payload := parts[0] + "." + parts[1]
	if !hmac.Equal([]byte(s.sign(payload)), []byte(parts[2])) {
		return "", ErrSessionInvalid
	}

	expiry, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return "", fmt.Errorf("%w: bad expiry", ErrSessionInvalid)
	}
	if time.Now().Unix() >= expiry {
		return "", ErrSessionExpired
	}

	return parts[0], nil
}

func (s *Sessions) sign(payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
