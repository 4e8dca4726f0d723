package pay

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"curemedix/stripe"

	"github.com/stretchr/testify/assert"
)

type stubIntents struct {
	gotAmount   int64
	gotCurrency string
	gotMethods  []string
	err         error
}

func (s *stubIntents) CreatePaymentIntent(ctx context.Context, amount int64, currency string, methodTypes []string) (stripe.Intent, error) {
	s.gotAmount = amount
	s.gotCurrency = currency
	s.gotMethods = methodTypes
	if s.err != nil {
		return stripe.Intent{}, s.err
	}
	return stripe.Intent{ID: "pi_1", ClientSecret: "pi_1_secret", Amount: amount, Currency: currency}, nil
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(1999), MinorUnits(19.99))
	assert.Equal(t, int64(1000), MinorUnits(10))
	// round, not truncate: 0.1 * 100 floats to 10.000000000000002
	assert.Equal(t, int64(10), MinorUnits(0.1))
	assert.Equal(t, int64(2999), MinorUnits(29.99))
}

func TestCreatePaymentIntentConvertsToMinorUnits(t *testing.T) {
	stub := &stubIntents{}
	svc := NewService(nil, nil, stub, "usd", []byte("secret"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/create-payment-intent", strings.NewReader(`{"price":19.99}`))
	svc.CreatePaymentIntent(w, req, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1999), stub.gotAmount)
	assert.Equal(t, "usd", stub.gotCurrency)
	assert.Equal(t, []string{"card"}, stub.gotMethods)
	assert.Contains(t, w.Body.String(), "pi_1_secret")
}

func TestCreatePaymentIntentRejectsBadPrice(t *testing.T) {
	stub := &stubIntents{}
	svc := NewService(nil, nil, stub, "usd", []byte("secret"))

	for _, body := range []string{`{}`, `{"price":0}`, `{"price":-5}`, `not json`} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/create-payment-intent", strings.NewReader(body))
		svc.CreatePaymentIntent(w, req, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body: %s", body)
	}
	// the processor must never have been called
	assert.Zero(t, stub.gotAmount)
}

func TestCreatePaymentIntentProcessorFailure(t *testing.T) {
	stub := &stubIntents{err: errors.New("processor down")}
	svc := NewService(nil, nil, stub, "usd", []byte("secret"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/create-payment-intent", strings.NewReader(`{"price":5}`))
	svc.CreatePaymentIntent(w, req, nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestReceiptPayloadRoundTrip(t *testing.T) {
	secret := []byte("receipt-secret")
	payload := ReceiptPayload(secret, "a@x.com", "txn_1")

	assert.True(t, strings.HasPrefix(payload, "a@x.com|txn_1|"))
	assert.True(t, VerifyReceiptPayload(secret, payload))

	// tampered payload or wrong secret must fail
	assert.False(t, VerifyReceiptPayload(secret, strings.Replace(payload, "txn_1", "txn_2", 1)))
	assert.False(t, VerifyReceiptPayload([]byte("other"), payload))
	assert.False(t, VerifyReceiptPayload(secret, "no-signature"))
}
