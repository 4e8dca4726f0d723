package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"curemedix/models"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
)

type fakeIdemStore struct {
	insertErr error
	existing  models.IdempotencyRecord
	getErr    error

	inserted  []models.IdempotencyRecord
	savedKey  string
	savedResp map[string]interface{}
}

func (f *fakeIdemStore) Insert(ctx context.Context, rec models.IdempotencyRecord) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, rec)
	return nil
}

func (f *fakeIdemStore) Get(ctx context.Context, key string) (models.IdempotencyRecord, error) {
	return f.existing, f.getErr
}

func (f *fakeIdemStore) SaveResponse(ctx context.Context, key string, response map[string]interface{}) error {
	f.savedKey = key
	f.savedResp = response
	return nil
}

func paymentHandler(called *int) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		*called++
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"paymentId":"p1"}`))
	}
}

func TestIdempotencyNoHeaderPassesThrough(t *testing.T) {
	store := &fakeIdemStore{}
	idem := &Idempotency{store: store}

	var called int
	h := idem.Handle(paymentHandler(&called))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/payments", strings.NewReader(`{"price":10}`))
	h(w, req, nil)

	assert.Equal(t, 1, called)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Empty(t, store.inserted)
}

func TestIdempotencyFirstUsePersistsResponse(t *testing.T) {
	store := &fakeIdemStore{}
	idem := &Idempotency{store: store}

	var called int
	h := idem.Handle(paymentHandler(&called))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/payments", strings.NewReader(`{"price":10}`))
	req.Header.Set("Idempotency-Key", "k1")
	h(w, req, nil)

	assert.Equal(t, 1, called)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, `{"paymentId":"p1"}`, w.Body.String())

	assert.Len(t, store.inserted, 1)
	assert.Equal(t, "k1", store.inserted[0].Key)
	assert.Equal(t, "k1", store.savedKey)
	assert.Equal(t, http.StatusCreated, store.savedResp["status"])
	assert.Equal(t, map[string]interface{}{"paymentId": "p1"}, store.savedResp["body"])
}

func TestIdempotencyReplayReturnsCachedBody(t *testing.T) {
	body := `{"price":10}`
	req := httptest.NewRequest(http.MethodPost, "/payments", strings.NewReader(body))
	req.Header.Set("Idempotency-Key", "k1")

	store := &fakeIdemStore{
		insertErr: errDuplicateKey,
		existing: models.IdempotencyRecord{
			Key:         "k1",
			RequestHash: computeRequestHash(req, []byte(body), ""),
			Response: map[string]interface{}{
				"status": float64(http.StatusCreated),
				"body":   map[string]interface{}{"paymentId": "p1"},
			},
		},
	}
	idem := &Idempotency{store: store}

	var called int
	h := idem.Handle(paymentHandler(&called))

	w := httptest.NewRecorder()
	h(w, req, nil)

	assert.Zero(t, called, "handler must not run on replay")
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"paymentId":"p1"`)
}

func TestIdempotencyHashMismatchConflicts(t *testing.T) {
	store := &fakeIdemStore{
		insertErr: errDuplicateKey,
		existing: models.IdempotencyRecord{
			Key:         "k1",
			RequestHash: "hash-of-a-different-body",
		},
	}
	idem := &Idempotency{store: store}

	var called int
	h := idem.Handle(paymentHandler(&called))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/payments", strings.NewReader(`{"price":99}`))
	req.Header.Set("Idempotency-Key", "k1")
	h(w, req, nil)

	assert.Zero(t, called)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestIdempotencyInFlightRunsHandler(t *testing.T) {
	// Duplicate key but no persisted response yet: the first attempt is
	// still in flight, so the handler runs and relies on DB-level
	// idempotence.
	body := `{"price":10}`
	req := httptest.NewRequest(http.MethodPost, "/payments", strings.NewReader(body))
	req.Header.Set("Idempotency-Key", "k1")

	store := &fakeIdemStore{
		insertErr: errDuplicateKey,
		existing: models.IdempotencyRecord{
			Key:         "k1",
			RequestHash: computeRequestHash(req, []byte(body), ""),
		},
	}
	idem := &Idempotency{store: store}

	var called int
	h := idem.Handle(paymentHandler(&called))

	w := httptest.NewRecorder()
	h(w, req, nil)

	assert.Equal(t, 1, called)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestIdempotencyStoreFailure(t *testing.T) {
	store := &fakeIdemStore{insertErr: errors.New("mongo down")}
	idem := &Idempotency{store: store}

	var called int
	h := idem.Handle(paymentHandler(&called))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/payments", strings.NewReader(`{}`))
	req.Header.Set("Idempotency-Key", "k1")
	h(w, req, nil)

	assert.Zero(t, called)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestComputeRequestHash(t *testing.T) {
	body := []byte(`{"price":10}`)
	r1 := httptest.NewRequest("POST", "/payments", strings.NewReader(""))
	r2 := httptest.NewRequest("POST", "/payments", strings.NewReader(""))

	h1 := computeRequestHash(r1, body, "a@x.com")
	h2 := computeRequestHash(r2, body, "a@x.com")
	assert.Equal(t, h1, h2)

	// Different body, caller, or path must hash differently.
	assert.NotEqual(t, h1, computeRequestHash(r1, []byte(`{"price":11}`), "a@x.com"))
	assert.NotEqual(t, h1, computeRequestHash(r1, body, "b@x.com"))
	r3 := httptest.NewRequest("POST", "/carts", strings.NewReader(""))
	assert.NotEqual(t, h1, computeRequestHash(r3, body, "a@x.com"))
}

func TestCaptureResponseWriter(t *testing.T) {
	rec := httptest.NewRecorder()
	crw := NewCaptureResponseWriter(rec)

	crw.WriteHeader(201)
	crw.WriteHeader(500) // only the first status sticks
	_, err := crw.Write([]byte(`{"ok":true}`))
	assert.NoError(t, err)

	assert.Equal(t, 201, crw.Status())
	assert.Equal(t, `{"ok":true}`, string(crw.BodyBytes()))
	assert.Equal(t, 201, rec.Code)
	assert.Equal(t, `{"ok":true}`, rec.Body.String())
}
