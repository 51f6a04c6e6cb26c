package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/rbac-service/internal/observability"
	apperrors "github.com/spec-kit/rbac-service/pkg/util"
)

const identityKey = "auth_identity"

// Authenticator validates bearer tokens and attaches the resulting Identity
// to the request. Verification is stateless; no user record is loaded here.
type Authenticator struct {
	tokens  *TokenManager
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewAuthenticator constructs the middleware.
func NewAuthenticator(tokens *TokenManager, metrics *observability.Metrics, logger *zap.Logger) *Authenticator {
	return &Authenticator{tokens: tokens, metrics: metrics, logger: logger}
}

// Handle enforces authentication for protected routes.
func (a *Authenticator) Handle(c *fiber.Ctx) error {
	corrID := observability.CorrelationID(c)

	token, ok := bearerToken(c.Get("Authorization"))
	if !ok {
		a.metrics.Increment(observability.CounterAuthFailures)
		a.logger.Warn("authentication failed: missing token",
			zap.String("correlation_id", corrID),
			zap.String("path", c.Path()),
			zap.String("method", c.Method()),
		)
		return apperrors.NewUnauthorized("missing bearer token")
	}

	identity, err := a.tokens.VerifyAccessToken(token)
	if err != nil {
		a.metrics.Increment(observability.CounterAuthFailures)
		a.logger.Warn("authentication failed: invalid token",
			zap.String("correlation_id", corrID),
			zap.Error(err),
			zap.String("path", c.Path()),
		)
		return apperrors.NewUnauthorized("invalid or expired token")
	}

	a.metrics.Increment(observability.CounterAuthSuccesses)
	a.logger.Info("authentication successful",
		zap.String("correlation_id", corrID),
		zap.String("subject_id", identity.SubjectID),
		zap.String("role", string(identity.Role)),
		zap.String("path", c.Path()),
	)

	c.Locals(identityKey, identity)
	return c.Next()
}

// IdentityFromContext retrieves the authenticated identity.
func IdentityFromContext(c *fiber.Ctx) (*Identity, bool) {
	val := c.Locals(identityKey)
	if val == nil {
		return nil, false
	}
	identity, ok := val.(*Identity)
	return identity, ok
}

func bearerToken(header string) (string, bool) {
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
