package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"curemedix/middleware"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
)

var secret = []byte("test-secret")

func signToken(t *testing.T, email string, ttl time.Duration, key []byte) string {
	t.Helper()
	claims := &middleware.Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	assert.NoError(t, err)
	return s
}

func okHandler(called *bool) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		*called = true
		w.WriteHeader(http.StatusOK)
	}
}

func TestVerifyRoundTrip(t *testing.T) {
	a := middleware.New(secret, nil)
	token := signToken(t, "a@x.com", time.Hour, secret)

	claims, err := a.Verify("Bearer " + token)
	assert.NoError(t, err)
	assert.Equal(t, "a@x.com", claims.Email)
}

func TestVerifyRejectsExpired(t *testing.T) {
	a := middleware.New(secret, nil)
	token := signToken(t, "a@x.com", -time.Minute, secret)

	_, err := a.Verify("Bearer " + token)
	assert.Error(t, err)
}

func TestVerifyRejectsTampered(t *testing.T) {
	a := middleware.New(secret, nil)
	token := signToken(t, "a@x.com", time.Hour, []byte("other-secret"))

	_, err := a.Verify("Bearer " + token)
	assert.Error(t, err)
}

func TestAuthenticate(t *testing.T) {
	a := middleware.New(secret, nil)

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.token", http.StatusUnauthorized},
		{"valid", "Bearer " + signToken(t, "a@x.com", time.Hour, secret), http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var called bool
			var gotEmail string
			h := a.Authenticate(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
				called = true
				gotEmail = middleware.EmailFromRequest(r)
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			h(w, req, nil)

			assert.Equal(t, tc.status, w.Code)
			if tc.status == http.StatusOK {
				assert.True(t, called)
				assert.Equal(t, "a@x.com", gotEmail)
			} else {
				assert.False(t, called)
			}
		})
	}
}

func TestRequireRoleForbidsNonAdmin(t *testing.T) {
	roles := func(ctx context.Context, email string) (string, error) {
		return "user", nil
	}
	a := middleware.New(secret, roles)

	var called bool
	h := middleware.Chain(a.Authenticate, a.RequireRole("admin"))(okHandler(&called))

	req := httptest.NewRequest(http.MethodGet, "/admin-stats", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "a@x.com", time.Hour, secret))
	w := httptest.NewRecorder()
	h(w, req, nil)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, called)
}

func TestRequireRoleAllowsAdmin(t *testing.T) {
	var lookedUp string
	roles := func(ctx context.Context, email string) (string, error) {
		lookedUp = email
		return "admin", nil
	}
	a := middleware.New(secret, roles)

	var called bool
	h := middleware.Chain(a.Authenticate, a.RequireRole("admin"))(okHandler(&called))

	req := httptest.NewRequest(http.MethodGet, "/admin-stats", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "a@x.com", time.Hour, secret))
	w := httptest.NewRecorder()
	h(w, req, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, called)
	assert.Equal(t, "a@x.com", lookedUp)
}

func TestRequireRoleForbidsUnknownUser(t *testing.T) {
	roles := func(ctx context.Context, email string) (string, error) {
		return "", errors.New("no documents")
	}
	a := middleware.New(secret, roles)

	var called bool
	h := middleware.Chain(a.Authenticate, a.RequireRole("admin"))(okHandler(&called))

	req := httptest.NewRequest(http.MethodGet, "/admin-stats", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "ghost@x.com", time.Hour, secret))
	w := httptest.NewRecorder()
	h(w, req, nil)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, called)
}

func TestRequireOwner(t *testing.T) {
	// The role lookup must never run: ownership is checked first and is
	// independent of role.
	roles := func(ctx context.Context, email string) (string, error) {
		t.Fatal("role lookup should not be called")
		return "", nil
	}
	a := middleware.New(secret, roles)
	token := "Bearer " + signToken(t, "a@x.com", time.Hour, secret)

	var called bool
	h := middleware.Chain(a.Authenticate, middleware.RequireOwner("email"))(okHandler(&called))

	req := httptest.NewRequest(http.MethodGet, "/payments/b@x.com", nil)
	req.Header.Set("Authorization", token)
	w := httptest.NewRecorder()
	h(w, req, httprouter.Params{{Key: "email", Value: "b@x.com"}})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, called)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/payments/a@x.com", nil)
	req.Header.Set("Authorization", token)
	h(w, req, httprouter.Params{{Key: "email", Value: "a@x.com"}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, called)
}

func TestChainOrder(t *testing.T) {
	var order []string
	mk := func(name string) middleware.Middleware {
		return func(next httprouter.Handle) httprouter.Handle {
			return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
				order = append(order, name)
				next(w, r, ps)
			}
		}
	}

	var called bool
	h := middleware.Chain(mk("first"), mk("second"))(okHandler(&called))
	h(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil), nil)

	assert.Equal(t, []string{"first", "second"}, order)
	assert.True(t, called)
}
