package auth

import (
	"log"
	"net/http"
	"time"

	"curemedix/middleware"
	"curemedix/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
)

const tokenTTL = time.Hour

// Service issues session tokens. Stateless: a token is a pure function of
// the claims, the secret, and the clock.
type Service struct {
	secret []byte
}

func NewService(secret []byte) *Service {
	return &Service{secret: secret}
}

// IssueToken signs a 1-hour HS256 token for the given email.
func (s *Service) IssueToken(email string) (string, error) {
	claims := &middleware.Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Issue handles POST /jwt.
func (s *Service) Issue(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body struct {
		Email string `json:"email"`
		Name  string `json:"name"`
		Photo string `json:"photo"`
	}
	if err := utils.DecodeStrict(r, &body); err != nil || body.Email == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "email is required")
		return
	}

	tokenString, err := s.IssueToken(body.Email)
	if err != nil {
		log.Println("Issue token error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"token": tokenString})
}
