package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spec-kit/rbac-service/internal/domain"
)

// Sentinel errors returned by token verification.
var (
	ErrExpiredCredential   = errors.New("credential expired")
	ErrMalformedCredential = errors.New("credential malformed")
)

// Identity is the authenticated subject resolved from a verified access
// token. It lives for one request and is never persisted.
type Identity struct {
	SubjectID string
	Role      domain.Role
	TokenID   string
}

// TokenManager issues and verifies signed JWT credentials.
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 168 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// AccessClaims describes the access token payload. The jti claim keeps
// tokens distinguishable across issuances for the same subject.
type AccessClaims struct {
	Role domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// RefreshClaims describes the refresh token payload. It deliberately carries
// no role claim; the current role is re-read from storage at refresh time.
type RefreshClaims struct {
	jwt.RegisteredClaims
}

// IssueAccessToken signs a short-lived token carrying subject and role.
func (tm *TokenManager) IssueAccessToken(subjectID string, role domain.Role) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(tm.accessTTL)
	claims := &AccessClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// IssueRefreshToken signs a long-lived token carrying the subject only.
func (tm *TokenManager) IssueRefreshToken(subjectID string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(tm.refreshTTL)
	claims := &RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// VerifyAccessToken validates an access token and returns the identity it
// encodes.
func (tm *TokenManager) VerifyAccessToken(tokenStr string) (*Identity, error) {
	claims := &AccessClaims{}
	if err := tm.parse(tokenStr, claims); err != nil {
		return nil, err
	}
	if claims.Subject == "" || !domain.ValidRole(string(claims.Role)) {
		return nil, ErrMalformedCredential
	}
	return &Identity{
		SubjectID: claims.Subject,
		Role:      claims.Role,
		TokenID:   claims.ID,
	}, nil
}

// VerifyRefreshToken validates a refresh token and returns the subject id.
func (tm *TokenManager) VerifyRefreshToken(tokenStr string) (string, error) {
	claims := &RefreshClaims{}
	if err := tm.parse(tokenStr, claims); err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", ErrMalformedCredential
	}
	return claims.Subject, nil
}

func (tm *TokenManager) parse(tokenStr string, claims jwt.Claims) error {
	parsed, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrExpiredCredential
		}
		return ErrMalformedCredential
	}
	if !parsed.Valid {
		return ErrMalformedCredential
	}
	return nil
}
