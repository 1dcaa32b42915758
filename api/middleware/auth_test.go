package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"inkpress/api/auth"
	"inkpress/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestJWT(t *testing.T) *auth.JWTManager {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("JWT_ISSUER", "")

	m, err := auth.NewJWTManagerFromEnv()
	if err != nil {
		t.Fatalf("NewJWTManagerFromEnv() error = %v", err)
	}
	return m
}

func whoamiRouter(jwt *auth.JWTManager, mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers := append(mw, func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok {
			c.JSON(http.StatusOK, gin.H{"anonymous": true})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": actor.ID.Hex(), "role": actor.Role})
	})
	r.GET("/whoami", handlers...)
	return r
}

func get(r *gin.Engine, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuthRejectsMissingToken(t *testing.T) {
	jwt := newTestJWT(t)
	r := whoamiRouter(jwt, RequireAuth(jwt))

	if w := get(r, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestRequireAuthRejectsGarbageToken(t *testing.T) {
	jwt := newTestJWT(t)
	r := whoamiRouter(jwt, RequireAuth(jwt))

	if w := get(r, "not.a.token"); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestRequireAuthResolvesActor(t *testing.T) {
	jwt := newTestJWT(t)
	r := whoamiRouter(jwt, RequireAuth(jwt))

	id := primitive.NewObjectID()
	token, err := jwt.Sign(id.Hex(), services.RoleAdmin)
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}

	w := get(r, token)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	for _, want := range []string{id.Hex(), services.RoleAdmin} {
		if !strings.Contains(body, want) {
			t.Errorf("body %q missing %q", body, want)
		}
	}
}

func TestRequireAuthDefaultsEmptyRoleToUser(t *testing.T) {
	jwt := newTestJWT(t)
	r := whoamiRouter(jwt, RequireAuth(jwt))

	token, err := jwt.Sign(primitive.NewObjectID().Hex(), "")
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}

	w := get(r, token)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), services.RoleUser) {
		t.Errorf("body %q missing default role", w.Body.String())
	}
}

func TestRequireAuthRejectsNonObjectIDSubject(t *testing.T) {
	jwt := newTestJWT(t)
	r := whoamiRouter(jwt, RequireAuth(jwt))

	token, err := jwt.Sign("alice", services.RoleUser)
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}

	if w := get(r, token); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestOptionalAuthPassesAnonymous(t *testing.T) {
	jwt := newTestJWT(t)
	r := whoamiRouter(jwt, OptionalAuth(jwt))

	w := get(r, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "anonymous") {
		t.Errorf("body %q should be anonymous", w.Body.String())
	}
}

func TestOptionalAuthStillRejectsBadToken(t *testing.T) {
	jwt := newTestJWT(t)
	r := whoamiRouter(jwt, OptionalAuth(jwt))

	if w := get(r, "bad-token"); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestRequireAdmin(t *testing.T) {
	jwt := newTestJWT(t)
	r := whoamiRouter(jwt, RequireAuth(jwt), RequireAdmin())

	userToken, err := jwt.Sign(primitive.NewObjectID().Hex(), services.RoleUser)
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}
	if w := get(r, userToken); w.Code != http.StatusForbidden {
		t.Errorf("user status = %d, want 403", w.Code)
	}

	adminToken, err := jwt.Sign(primitive.NewObjectID().Hex(), services.RoleAdmin)
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}
	if w := get(r, adminToken); w.Code != http.StatusOK {
		t.Errorf("admin status = %d, want 200", w.Code)
	}
}

