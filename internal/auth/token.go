package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"blog-server/internal/domain"
)

var (
	// ErrTokenMalformed indicates the token string could not be decoded.
	ErrTokenMalformed = errors.New("token malformed")
	// ErrTokenSignatureInvalid indicates the signature does not match the payload.
	ErrTokenSignatureInvalid = errors.New("token signature invalid")
	// ErrTokenExpired indicates a well-formed, correctly signed token past its expiry.
	ErrTokenExpired = errors.New("token expired")
)

const (
	// DefaultTTL is the lifetime of a freshly issued session token.
	DefaultTTL = 7 * 24 * time.Hour
	// DefaultRefreshThreshold is the remaining lifetime below which a
	// verified token is reissued with a fresh expiry.
	DefaultRefreshThreshold = DefaultTTL / 2
)

type sessionClaims struct {
	UserID   int64  `json:"uid"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies signed session tokens. The payload is
// exactly the identity subset {id, username}; validity is a pure function
// of signature and expiry, with no server-side session state.
type TokenService struct {
	secret           []byte
	ttl              time.Duration
	refreshThreshold time.Duration
	now              func() time.Time
}

func NewTokenService(secret string, ttl, refreshThreshold time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if refreshThreshold <= 0 {
		refreshThreshold = DefaultRefreshThreshold
	}
	return &TokenService{
		secret:           []byte(secret),
		ttl:              ttl,
		refreshThreshold: refreshThreshold,
		now:              time.Now,
	}
}

// TTL reports the lifetime applied to issued tokens, which also bounds
// the session cookie max-age.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue signs a new token for the given identity, expiring after the
// configured TTL.
func (s *TokenService) Issue(identity domain.Identity) (string, error) {
	now := s.now()
	claims := sessionClaims{
		UserID:   identity.ID,
		Username: identity.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the embedded identity
// along with the token's expiry time. Failures are distinguishable so
// callers can treat an expired token differently from a forged one.
func (s *TokenService) Verify(tokenString string) (domain.Identity, time.Time, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return domain.Identity{}, time.Time{}, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return domain.Identity{}, time.Time{}, ErrTokenSignatureInvalid
		case errors.Is(err, jwt.ErrTokenMalformed):
			return domain.Identity{}, time.Time{}, ErrTokenMalformed
		default:
			return domain.Identity{}, time.Time{}, ErrTokenMalformed
		}
	}

	identity := domain.Identity{ID: claims.UserID, Username: claims.Username}
	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	return identity, expiresAt, nil
}

// ShouldReissue reports whether a verified token is close enough to expiry
// that the session middleware should replace it. Reissuing only below the
// threshold keeps sessions alive under continuous use without re-signing
// on every request.
func (s *TokenService) ShouldReissue(expiresAt time.Time) bool {
	return expiresAt.Sub(s.now()) < s.refreshThreshold
}
