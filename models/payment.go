package models

import "time"

// Payment statuses. A payment is recorded as pending and settled to paid;
// there is no reverse transition.
const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
)

// Payment is an append-only ledger entry for one checkout. CartIDs reference
// the cart lines purchased; those lines are deleted in the same transaction
// that inserts the payment.
type Payment struct {
	ID            string    `json:"id" bson:"_id,omitempty"`
	Email         string    `json:"email" bson:"email"`
	Price         float64   `json:"price" bson:"price"`
	TransactionID string    `json:"transactionId" bson:"transactionId"`
	Status        string    `json:"status" bson:"status"`
	CartIDs       []string  `json:"cartIds" bson:"cartIds"`
	MedicineIDs   []string  `json:"medicineIds,omitempty" bson:"medicineIds,omitempty"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt"`
}

// IdempotencyRecord deduplicates checkout submissions by client-supplied key.
type IdempotencyRecord struct {
	Key         string                 `json:"key" bson:"key"`
	Method      string                 `json:"method" bson:"method"`
	Path        string                 `json:"path" bson:"path"`
	Email       string                 `json:"email" bson:"email"`
	RequestHash string                 `json:"requestHash" bson:"request_hash"`
	Response    map[string]interface{} `json:"response,omitempty" bson:"response,omitempty"`
	CreatedAt   time.Time              `json:"createdAt" bson:"created_at"`
	ExpiresAt   time.Time              `json:"expiresAt" bson:"expires_at"`
}

// AdminStats is the admin dashboard aggregate.
type AdminStats struct {
	Users        int64   `json:"users"`
	Medicines    int64   `json:"medicines"`
	Orders       int64   `json:"orders"`
	Revenue      float64 `json:"revenue"`
	TotalPending float64 `json:"totalPending"`
	TotalPaid    float64 `json:"totalPaid"`
}
