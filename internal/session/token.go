package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenType = "browser"

type Claims struct {
	SessionID string `json:"sid"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// TokenManager signs the browser session cookie. The cookie only carries the
// session id, never backend credentials.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

func (m *TokenManager) NewSessionID() string {
	return uuid.NewString()
}

func (m *TokenManager) Issue(sessionID string) (string, error) {
	now := time.Now().UTC()

	claims := Claims{
		SessionID: sessionID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Parse validates the cookie value and returns the session id in it.
func (m *TokenManager) Parse(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		// Enforce HS256
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token")
	}
	if claims.TokenType != tokenType {
		return "", errors.New("invalid token type")
	}
	if claims.SessionID == "" {
		return "", errors.New("missing sid")
	}
	return claims.SessionID, nil
}

// CSRFToken is a deterministic HMAC of the session id, embedded in every form.
func (m *TokenManager) CSRFToken(sessionID string) string {
	h := hmac.New(sha256.New, m.secret)
	h.Write([]byte("csrf:" + sessionID))
	return hex.EncodeToString(h.Sum(nil))
}

func (m *TokenManager) VerifyCSRF(sessionID, token string) bool {
	return hmac.Equal([]byte(m.CSRFToken(sessionID)), []byte(token))
}
