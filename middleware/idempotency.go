package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"curemedix/models"
	"curemedix/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const idempotencyTTL = 24 * time.Hour

// errDuplicateKey reports that an idempotency key was already claimed.
var errDuplicateKey = errors.New("duplicate idempotency key")

// idemStore is the persistence surface the middleware needs: claim a key,
// fetch an earlier claim, and attach the response to a claim.
type idemStore interface {
	Insert(ctx context.Context, rec models.IdempotencyRecord) error
	Get(ctx context.Context, key string) (models.IdempotencyRecord, error)
	SaveResponse(ctx context.Context, key string, response map[string]interface{}) error
}

// Idempotency deduplicates mutating requests that carry an Idempotency-Key
// header. Records live in Mongo under a unique key index with a TTL.
type Idempotency struct {
	store idemStore
}

func NewIdempotency(col *mongo.Collection) *Idempotency {
	return &Idempotency{store: &mongoIdemStore{col: col}}
}

type mongoIdemStore struct {
	col *mongo.Collection
}

func (m *mongoIdemStore) Insert(ctx context.Context, rec models.IdempotencyRecord) error {
	_, err := m.col.InsertOne(ctx, rec)
	if isDuplicateKeyError(err) {
		return errDuplicateKey
	}
	return err
}

func (m *mongoIdemStore) Get(ctx context.Context, key string) (models.IdempotencyRecord, error) {
	var rec models.IdempotencyRecord
	err := m.col.FindOne(ctx, bson.M{"key": key}).Decode(&rec)
	return rec, err
}

func (m *mongoIdemStore) SaveResponse(ctx context.Context, key string, response map[string]interface{}) error {
	_, err := m.col.UpdateOne(ctx,
		bson.M{"key": key},
		bson.M{"$set": bson.M{"response": response}},
	)
	return err
}

func computeRequestHash(r *http.Request, bodyBytes []byte, email string) string {
	h := sha256.New()
	h.Write([]byte(r.Method + ":" + r.URL.Path + ":" + email + ":"))
	h.Write(bodyBytes)
	return hex.EncodeToString(h.Sum(nil))
}

// CaptureResponseWriter wraps http.ResponseWriter to capture status and body.
type CaptureResponseWriter struct {
	w           http.ResponseWriter
	statusCode  int
	buf         bytes.Buffer
	wroteHeader bool
}

func NewCaptureResponseWriter(w http.ResponseWriter) *CaptureResponseWriter {
	return &CaptureResponseWriter{w: w, statusCode: http.StatusOK}
}

func (c *CaptureResponseWriter) Header() http.Header {
	return c.w.Header()
}

func (c *CaptureResponseWriter) WriteHeader(statusCode int) {
	if !c.wroteHeader {
		c.statusCode = statusCode
		c.w.WriteHeader(statusCode)
		c.wroteHeader = true
	}
}

func (c *CaptureResponseWriter) Write(b []byte) (int, error) {
	c.buf.Write(b)
	return c.w.Write(b)
}

func (c *CaptureResponseWriter) Status() int {
	return c.statusCode
}

func (c *CaptureResponseWriter) BodyBytes() []byte {
	return c.buf.Bytes()
}

func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	if we, ok := err.(mongo.WriteException); ok {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	return false
}

// Handle is the middleware. Behavior:
//   - No Idempotency-Key header: pass through.
//   - First use of a key: run the handler, persist its response.
//   - Replay with the same key and body: return the persisted response.
//   - Replay with the same key but a different body: 409 Conflict.
//   - Replay while the first attempt is still in flight: run the handler,
//     which must be idempotent at the DB level (unique transactionId).
func (i *Idempotency) Handle(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		key := r.Header.Get("Idempotency-Key")
		if key == "" {
			next(w, r, ps)
			return
		}

		email := EmailFromRequest(r)

		bodyBytes, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "failed to read request body")
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(bodyBytes))

		reqHash := computeRequestHash(r, bodyBytes, email)
		now := time.Now()
		rec := models.IdempotencyRecord{
			Key:         key,
			Method:      r.Method,
			Path:        r.URL.Path,
			Email:       email,
			RequestHash: reqHash,
			CreatedAt:   now,
			ExpiresAt:   now.Add(idempotencyTTL),
		}

		ctx := r.Context()
		err = i.store.Insert(ctx, rec)
		if err == nil {
			crw := NewCaptureResponseWriter(w)
			next(crw, r, ps)

			var parsed interface{}
			if err := json.Unmarshal(crw.BodyBytes(), &parsed); err != nil {
				parsed = string(crw.BodyBytes())
			}
			_ = i.store.SaveResponse(ctx, key, map[string]interface{}{
				"status": crw.Status(),
				"body":   parsed,
			})
			return
		}

		if !errors.Is(err, errDuplicateKey) {
			utils.RespondWithError(w, http.StatusInternalServerError, "idempotency lookup error")
			return
		}

		existing, err := i.store.Get(ctx, key)
		if err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, "idempotency lookup error")
			return
		}

		if existing.RequestHash != reqHash {
			utils.RespondWithError(w, http.StatusConflict, "idempotency-key conflict")
			return
		}

		if existing.Response != nil {
			status := http.StatusOK
			switch n := existing.Response["status"].(type) {
			case float64:
				status = int(n)
			case int64:
				status = int(n)
			case int32:
				status = int(n)
			case int:
				status = n
			}
			utils.RespondWithJSON(w, status, existing.Response["body"])
			return
		}

		// In-flight first attempt; unique transactionId keeps the ledger safe.
		next(w, r, ps)
	}
}
