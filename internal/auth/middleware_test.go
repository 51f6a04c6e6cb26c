package auth

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/rbac-service/internal/domain"
	"github.com/spec-kit/rbac-service/internal/observability"
	apperrors "github.com/spec-kit/rbac-service/pkg/util"
)

// newGateApp builds a fiber app exercising the authentication and
// authorization gates in front of a trivial handler.
func newGateApp(tm *TokenManager, table *PermissionTable, metrics *observability.Metrics) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			body := fiber.Map{"code": de.Code, "message": de.Message}
			if len(de.Details) > 0 {
				body["details"] = de.Details
			}
			return c.Status(de.HTTPStatus).JSON(fiber.Map{"error": body})
		},
	})

	logger := zap.NewNop()
	authenticator := NewAuthenticator(tm, metrics, logger)
	authorizer := NewAuthorizer(table, metrics, logger)

	app.Post("/posts", authenticator.Handle, authorizer.RequirePermission(PermPostsCreate), func(c *fiber.Ctx) error {
		identity, _ := IdentityFromContext(c)
		return c.JSON(fiber.Map{"subject": identity.SubjectID})
	})
	return app
}

func TestAuthenticationRequiredBeforeAuthorization(t *testing.T) {
	tm := newTestManager()
	metrics := observability.NewMetrics()
	app := newGateApp(tm, DefaultPermissionTable(), metrics)

	req := httptest.NewRequest(http.MethodPost, "/posts", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// The request never reached the authorization gate.
	assert.Equal(t, int64(1), metrics.Counter(observability.CounterAuthFailures))
	assert.Equal(t, int64(0), metrics.Counter(observability.CounterAuthzDenials))
	assert.Equal(t, int64(0), metrics.Counter(observability.CounterAuthzGrants))
}

func TestAuthenticationRejectsMalformedHeader(t *testing.T) {
	tm := newTestManager()
	app := newGateApp(tm, DefaultPermissionTable(), observability.NewMetrics())

	for _, header := range []string{"Bearer", "Token abc", "Bearer "} {
		req := httptest.NewRequest(http.MethodPost, "/posts", nil)
		req.Header.Set("Authorization", header)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, header)
	}
}

func TestAuthenticationRejectsExpiredToken(t *testing.T) {
	expiring := NewTokenManager(testSecret, time.Nanosecond, time.Hour)
	token, _, err := expiring.IssueAccessToken("user-1", domain.RoleAdmin)
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	app := newGateApp(expiring, DefaultPermissionTable(), observability.NewMetrics())
	req := httptest.NewRequest(http.MethodPost, "/posts", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthorizationDenialDisclosesRoleAndPermission(t *testing.T) {
	tm := newTestManager()
	metrics := observability.NewMetrics()
	app := newGateApp(tm, DefaultPermissionTable(), metrics)

	token, _, err := tm.IssueAccessToken("viewer-1", domain.RoleViewer)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/posts", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var payload struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
			Details struct {
				Role               string `json:"role"`
				RequiredPermission string `json:"required_permission"`
			} `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))
	assert.Equal(t, "FORBIDDEN", payload.Error.Code)
	assert.Contains(t, payload.Error.Message, "posts:create")
	assert.Equal(t, "Viewer", payload.Error.Details.Role)
	assert.Equal(t, "posts:create", payload.Error.Details.RequiredPermission)

	assert.Equal(t, int64(1), metrics.Counter(observability.CounterAuthzDenials))
}

func TestAuthorizationGrantsPermittedRole(t *testing.T) {
	tm := newTestManager()
	metrics := observability.NewMetrics()
	app := newGateApp(tm, DefaultPermissionTable(), metrics)

	token, _, err := tm.IssueAccessToken("editor-1", domain.RoleEditor)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/posts", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, int64(1), metrics.Counter(observability.CounterAuthSuccesses))
	assert.Equal(t, int64(1), metrics.Counter(observability.CounterAuthzGrants))
}

func TestAuthorizationUsesInjectedTable(t *testing.T) {
	tm := newTestManager()
	// A table that grants viewers create access; the default table is not
	// consulted.
	table := NewPermissionTable(map[domain.Role]map[Permission]bool{
		domain.RoleViewer: {PermPostsCreate: true},
	})
	app := newGateApp(tm, table, observability.NewMetrics())

	token, _, err := tm.IssueAccessToken("viewer-1", domain.RoleViewer)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/posts", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
