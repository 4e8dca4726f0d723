package ratelim

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
)

func TestLimitBlocksAfterBurst(t *testing.T) {
	rl := NewRateLimiter(1, 2)

	var hits int
	h := rl.Limit(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		hits++
		w.WriteHeader(http.StatusOK)
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/jwt", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		h(w, req, nil)
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.Equal(t, 2, hits)
}

func TestLimitTracksPerIP(t *testing.T) {
	rl := NewRateLimiter(1, 1)

	h := rl.Limit(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.WriteHeader(http.StatusOK)
	})

	for _, addr := range []string{"10.0.0.1:1", "10.0.0.2:1"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/jwt", nil)
		req.RemoteAddr = addr
		h(w, req, nil)
		assert.Equal(t, http.StatusOK, w.Code, addr)
	}
}

func TestLimitSharesBucketAcrossPorts(t *testing.T) {
	rl := NewRateLimiter(1, 1)

	h := rl.Limit(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.WriteHeader(http.StatusOK)
	})

	codes := make([]int, 0, 2)
	for _, addr := range []string{"10.0.0.1:1111", "10.0.0.1:2222"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/jwt", nil)
		req.RemoteAddr = addr
		h(w, req, nil)
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestClientIP(t *testing.T) {
	assert.Equal(t, "10.0.0.1", clientIP("10.0.0.1:8080"))
	assert.Equal(t, "::1", clientIP("[::1]:8080"))
	assert.Equal(t, "not-an-addr", clientIP("not-an-addr"))
}
