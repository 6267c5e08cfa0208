package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/zhaoeryu/eu-authd/internal/models"
)

// SessionClaims are the claims carried by a session token. Device keys the
// session separately from other client types of the same user.
type SessionClaims struct {
	Device string `json:"device"`
	jwt.RegisteredClaims
}

// UserID returns the numeric subject of the claims.
func (c *SessionClaims) UserID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}

// TokenManager issues and validates session tokens. Each token carries a
// unique jti under which the session record is stored.
type TokenManager struct {
	secret     string
	sessionTTL time.Duration
}

func NewTokenManager(secret string, sessionTTL time.Duration) *TokenManager {
	return &TokenManager{
		secret:     secret,
		sessionTTL: sessionTTL,
	}
}

// SessionTTL returns the configured token lifetime.
func (tm *TokenManager) SessionTTL() time.Duration {
	return tm.sessionTTL
}

// IssueToken creates a session token bound to (userID, device). The returned
// jti identifies the session record in the keyed store.
func (tm *TokenManager) IssueToken(userID int64, device string, now time.Time) (token, jti string, err error) {
	jti = uuid.New().String()

	claims := &SessionClaims{
		Device: device,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   strconv.FormatInt(userID, 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.sessionTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(tm.secret))
	if err != nil {
		return "", "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return token, jti, nil
}

// ValidateToken verifies a token and returns its claims.
func (tm *TokenManager) ValidateToken(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(tm.secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, models.ErrUnauthorized
	}

	if claims.ID == "" || claims.Subject == "" {
		return nil, models.ErrUnauthorized
	}

	return claims, nil
}
