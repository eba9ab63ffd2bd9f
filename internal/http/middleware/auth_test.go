package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"romuo/internal/http/middleware"
	"romuo/internal/identity"
)

// stubResolver is a test double for identity.Resolver.
type stubResolver struct {
	ident identity.Identity
	err   error
}

func (s *stubResolver) Resolve(_ context.Context, _ string) (identity.Identity, error) {
	return s.ident, s.err
}

func newTestRouter(resolver identity.Resolver, roles ...identity.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.Auth(resolver))
	if len(roles) > 0 {
		r.Use(middleware.RequireRole(roles...))
	}
	r.GET("/test", func(c *gin.Context) {
		ident, _ := middleware.IdentityFrom(c)
		c.JSON(http.StatusOK, gin.H{"uid": ident.UserID, "role": ident.Role})
	})
	return r
}

func TestAuth_MissingHeader(t *testing.T) {
	r := newTestRouter(&stubResolver{ident: identity.Identity{UserID: "user1"}})
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuth_InvalidBearerPrefix(t *testing.T) {
	r := newTestRouter(&stubResolver{ident: identity.Identity{UserID: "user1"}})
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Token sometoken")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuth_ResolverError(t *testing.T) {
	r := newTestRouter(&stubResolver{err: errors.New("bad token")})
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer invalidtoken")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuth_ExpiredSession(t *testing.T) {
	r := newTestRouter(&stubResolver{err: identity.ErrSessionExpired})
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer staletoken")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "session expired") {
		t.Errorf("expected expiry message, got %s", w.Body.String())
	}
}

func TestAuth_ValidToken_IdentityPopulated(t *testing.T) {
	r := newTestRouter(&stubResolver{ident: identity.Identity{UserID: "driver123", Role: identity.RoleDriver}})
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer validtoken")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "driver123") {
		t.Errorf("expected uid driver123 in body, got %s", w.Body.String())
	}
}

func TestRequireRole_WrongRoleForbidden(t *testing.T) {
	r := newTestRouter(
		&stubResolver{ident: identity.Identity{UserID: "rider1", Role: identity.RolePassenger}},
		identity.RoleAdmin,
	)
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer validtoken")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestRequireRole_MatchingRolePasses(t *testing.T) {
	r := newTestRouter(
		&stubResolver{ident: identity.Identity{UserID: "admin1", Role: identity.RoleAdmin}},
		identity.RoleAdmin,
	)
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer validtoken")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}
