package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":      "user-1",
		"username": "alice",
		"role":     "admin",
		"exp":      time.Now().Add(time.Hour).Unix(),
	}
}

// runAuth sends a request carrying header through Auth and returns the
// recorded status plus whether the next handler ran.
func runAuth(t *testing.T, header string) (int, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Auth("secret")(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec.Code, called
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	e := echo.New()
	signed := signToken(t, "secret", validClaims())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Auth("secret")(func(c echo.Context) error {
		called = true
		if c.Get(KeyUserID) != "user-1" {
			t.Fatalf("user_id not set")
		}
		if c.Get(KeyUsername) != "alice" {
			t.Fatalf("username not set")
		}
		if c.Get(KeyRole) != "admin" {
			t.Fatalf("role not set")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	expired := validClaims()
	expired["exp"] = time.Now().Add(-time.Minute).Unix()

	noExp := validClaims()
	delete(noExp, "exp")

	noSub := validClaims()
	delete(noSub, "sub")

	noRole := validClaims()
	delete(noRole, "role")

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Token abc"},
		{"malformed token", "Bearer not-a-token"},
		{"wrong secret", "Bearer " + signToken(t, "other", validClaims())},
		{"expired", "Bearer " + signToken(t, "secret", expired)},
		{"no expiry", "Bearer " + signToken(t, "secret", noExp)},
		{"no subject", "Bearer " + signToken(t, "secret", noSub)},
		{"no role", "Bearer " + signToken(t, "secret", noRole)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, called := runAuth(t, tt.header)
			if called {
				t.Fatalf("should not reach next")
			}
			if code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", code)
			}
		})
	}
}

func TestAuthMiddleware_RejectsOtherAlgorithms(t *testing.T) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, validClaims()).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	code, called := runAuth(t, "Bearer "+signed)
	if called || code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without reaching next, got %d (called=%v)", code, called)
	}
}
