package auth

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/rbac-service/internal/observability"
	apperrors "github.com/spec-kit/rbac-service/pkg/util"
)

// Authorizer checks identities against an immutable permission table.
type Authorizer struct {
	table   *PermissionTable
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewAuthorizer constructs the gate with an injected table.
func NewAuthorizer(table *PermissionTable, metrics *observability.Metrics, logger *zap.Logger) *Authorizer {
	return &Authorizer{table: table, metrics: metrics, logger: logger}
}

// RequirePermission returns a handler rejecting callers whose role does not
// hold the permission. Denials disclose the caller's role and the missing
// permission; the client UI uses both.
func (a *Authorizer) RequirePermission(permission Permission) fiber.Handler {
	return func(c *fiber.Ctx) error {
		corrID := observability.CorrelationID(c)

		identity, ok := IdentityFromContext(c)
		if !ok {
			a.metrics.Increment(observability.CounterAuthzDenials)
			a.logger.Warn("authorization failed: unauthenticated",
				zap.String("correlation_id", corrID),
				zap.String("permission", string(permission)),
				zap.String("path", c.Path()),
			)
			return apperrors.NewUnauthorized("unauthenticated")
		}

		if !a.table.Allows(identity.Role, permission) {
			a.metrics.Increment(observability.CounterAuthzDenials)
			a.logger.Warn("authorization denied: missing permission",
				zap.String("correlation_id", corrID),
				zap.String("subject_id", identity.SubjectID),
				zap.String("role", string(identity.Role)),
				zap.String("permission", string(permission)),
				zap.String("path", c.Path()),
			)
			return apperrors.NewForbidden(
				fmt.Sprintf("missing permission %s", permission),
				map[string]any{
					"role":                identity.Role,
					"required_permission": permission,
				},
			)
		}

		a.metrics.Increment(observability.CounterAuthzGrants)
		a.logger.Debug("authorization successful",
			zap.String("correlation_id", corrID),
			zap.String("subject_id", identity.SubjectID),
			zap.String("role", string(identity.Role)),
			zap.String("permission", string(permission)),
		)
		return c.Next()
	}
}
