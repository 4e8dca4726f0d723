package middleware

import (
	"context"
	"net/http"

	"curemedix/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
)

// JWT claims
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// RoleLookup resolves the stored role for a verified email.
type RoleLookup func(ctx context.Context, email string) (string, error)

// Auth verifies bearer tokens and gates routes on the caller's stored role.
type Auth struct {
	secret []byte
	roles  RoleLookup
}

func New(secret []byte, roles RoleLookup) *Auth {
	return &Auth{secret: secret, roles: roles}
}

// Context keys
type contextKey string

const emailKey contextKey = "email"

// EmailFromRequest returns the verified email Authenticate stored on the
// request context, or "" for unauthenticated requests.
func EmailFromRequest(r *http.Request) string {
	email, ok := r.Context().Value(emailKey).(string)
	if !ok {
		return ""
	}
	return email
}

// Middleware is the shape every chainable middleware has.
type Middleware func(httprouter.Handle) httprouter.Handle

// Chain composes middlewares left-to-right: the first listed runs first.
func Chain(mws ...Middleware) Middleware {
	return func(final httprouter.Handle) httprouter.Handle {
		for i := len(mws) - 1; i >= 0; i-- {
			final = mws[i](final)
		}
		return final
	}
}

// Authenticate rejects requests without a valid bearer token and stores the
// token's email on the request context.
func (a *Auth) Authenticate(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		claims, err := a.VerifyRequest(r)
		if err != nil {
			utils.RespondWithMessage(w, http.StatusUnauthorized, "unauthorized access")
			return
		}
		ctx := context.WithValue(r.Context(), emailKey, claims.Email)
		next(w, r.WithContext(ctx), ps)
	}
}

// VerifyRequest validates the Authorization header and returns the decoded
// claims. Pure: input + secret + clock.
func (a *Auth) VerifyRequest(r *http.Request) (*Claims, error) {
	return a.Verify(r.Header.Get("Authorization"))
}

// Verify parses a "Bearer <token>" header value.
func (a *Auth) Verify(header string) (*Claims, error) {
	if len(header) < 8 || header[:7] != "Bearer " {
		return nil, jwt.ErrTokenMalformed
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(header[7:], claims, func(token *jwt.Token) (any, error) {
		return a.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.Email == "" {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// RequireRole gates a route on the caller's stored role. Runs after
// Authenticate; every gated request costs one role lookup.
func (a *Auth) RequireRole(role string) Middleware {
	return func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			email := EmailFromRequest(r)
			if email == "" {
				utils.RespondWithMessage(w, http.StatusUnauthorized, "unauthorized access")
				return
			}
			stored, err := a.roles(r.Context(), email)
			if err != nil || stored != role {
				utils.RespondWithMessage(w, http.StatusForbidden, "forbidden access")
				return
			}
			next(w, r, ps)
		}
	}
}

// RequireOwner rejects requests whose :param path email differs from the
// token's email. Runs before any role logic, so a valid token for one user
// can never read another user's resources.
func RequireOwner(param string) Middleware {
	return func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			if ps.ByName(param) != EmailFromRequest(r) {
				utils.RespondWithMessage(w, http.StatusForbidden, "forbidden access")
				return
			}
			next(w, r, ps)
		}
	}
}
