package pay

import (
	"context"
	"log"
	"math"
	"net/http"
	"time"

	"curemedix/db"
	"curemedix/middleware"
	"curemedix/models"
	"curemedix/rdx"
	"curemedix/stripe"
	"curemedix/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// lockTTL bounds how long a per-user checkout lock is held.
const lockTTL = 10 * time.Second

// Service is the checkout orchestrator: payment-intent creation, the
// transactional ledger-record + cart-cleanup step, settlement, and listings.
type Service struct {
	store         *db.Store
	rdx           *redis.Client
	intents       stripe.IntentCreator
	currency      string
	receiptSecret []byte
}

func NewService(store *db.Store, rdxClient *redis.Client, intents stripe.IntentCreator, currency string, receiptSecret []byte) *Service {
	return &Service{
		store:         store,
		rdx:           rdxClient,
		intents:       intents,
		currency:      currency,
		receiptSecret: receiptSecret,
	}
}

// MinorUnits converts a major-unit price to processor minor units.
func MinorUnits(price float64) int64 {
	return int64(math.Round(price * 100))
}

// CreatePaymentIntent requests an intent from the processor and returns its
// client secret. Stateless: a failure here leaves no trace server-side.
func (s *Service) CreatePaymentIntent(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	var body struct {
		Price float64 `json:"price"`
	}
	if err := utils.DecodeStrict(r, &body); err != nil || body.Price <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "a positive price is required")
		return
	}

	intent, err := s.intents.CreatePaymentIntent(ctx, MinorUnits(body.Price), s.currency, []string{"card"})
	if err != nil {
		log.Println("create intent error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to create payment intent")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"clientSecret": intent.ClientSecret})
}

// Record appends a payment to the ledger and removes the purchased cart
// lines in one Mongo transaction. Duplicate submissions are absorbed three
// ways: the Idempotency-Key middleware, a per-user Redis lock, and the
// unique transactionId index.
func (s *Service) Record(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	var payment models.Payment
	if err := utils.DecodeStrict(r, &payment); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if payment.Email == "" || payment.TransactionID == "" || payment.Price <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "missing or invalid fields")
		return
	}
	if payment.Email != middleware.EmailFromRequest(r) {
		utils.RespondWithMessage(w, http.StatusForbidden, "forbidden access")
		return
	}
	payment.ID = utils.GetUUID()
	payment.Status = models.PaymentPending
	payment.CreatedAt = time.Now()
	if payment.CartIDs == nil {
		payment.CartIDs = []string{}
	}

	lockKey := "checkout_lock:" + payment.Email
	acquired, err := rdx.SetNX(ctx, s.rdx, lockKey, lockTTL)
	if err != nil || !acquired {
		utils.RespondWithError(w, http.StatusTooManyRequests, "checkout in progress, please retry")
		return
	}
	defer func() {
		if err := rdx.Del(context.Background(), s.rdx, lockKey); err != nil {
			log.Println("checkout lock release error:", err)
		}
	}()

	session, err := s.store.Client.StartSession()
	if err != nil {
		log.Println("checkout session error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "payment failed")
		return
	}
	defer session.EndSession(ctx)

	result, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := s.store.Payments.InsertOne(sc, payment); err != nil {
			return nil, err
		}
		// Re-deleting already-deleted ids is a no-op, not an error.
		return s.store.Carts.DeleteMany(sc, bson.M{
			"_id":   bson.M{"$in": payment.CartIDs},
			"email": payment.Email,
		})
	})
	if err != nil {
		if isDuplicateKeyError(err) {
			// Same transactionId already in the ledger: treat as a replay.
			var existing models.Payment
			if ferr := s.store.Payments.FindOne(ctx, bson.M{"transactionId": payment.TransactionID}).Decode(&existing); ferr == nil {
				utils.RespondWithJSON(w, http.StatusOK, utils.M{
					"paymentId":     existing.ID,
					"transactionId": existing.TransactionID,
					"status":        existing.Status,
					"deletedCount":  0,
				})
				return
			}
		}
		log.Println("checkout transaction error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "payment failed")
		return
	}

	var deleted int64
	if dr, ok := result.(*mongo.DeleteResult); ok {
		deleted = dr.DeletedCount
	}

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{
		"paymentId":     payment.ID,
		"transactionId": payment.TransactionID,
		"status":        payment.Status,
		"deletedCount":  deleted,
	})
}

// ListByOwner returns the caller's payments, newest first. The route is
// ownership-gated on the :email param.
func (s *Service) ListByOwner(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := s.store.Payments.Find(ctx, bson.M{"email": ps.ByName("email")}, opts)
	if err != nil {
		log.Println("payments find error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "could not retrieve payments")
		return
	}
	defer cursor.Close(ctx)

	var payments []models.Payment
	if err := cursor.All(ctx, &payments); err != nil {
		log.Println("payments decode error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "error reading payments")
		return
	}
	if len(payments) == 0 {
		payments = []models.Payment{}
	}
	utils.RespondWithJSON(w, http.StatusOK, payments)
}

// ManageList returns the whole ledger for the admin payments screen.
func (s *Service) ManageList(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cursor, err := s.store.Payments.Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"createdAt": -1}))
	if err != nil {
		log.Println("manage payments find error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "could not retrieve payments")
		return
	}
	defer cursor.Close(ctx)

	var payments []models.Payment
	if err := cursor.All(ctx, &payments); err != nil {
		log.Println("manage payments decode error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "error reading payments")
		return
	}
	if len(payments) == 0 {
		payments = []models.Payment{}
	}
	utils.RespondWithJSON(w, http.StatusOK, payments)
}

// Settle transitions a ledger entry from pending to paid, matched on
// transactionId. There is no reverse transition.
func (s *Service) Settle(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := s.store.Payments.UpdateOne(ctx,
		bson.M{"transactionId": ps.ByName("transactionId")},
		bson.M{"$set": bson.M{"status": models.PaymentPaid}},
	)
	if err != nil {
		log.Println("settle error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to update payment")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "payment not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"modifiedCount": res.ModifiedCount})
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
	if ce, ok := err.(mongo.CommandError); ok && ce.Code == 11000 {
		return true
	}
	return false
}
