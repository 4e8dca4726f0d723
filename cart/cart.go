package cart

import (
	"context"
	"log"
	"net/http"
	"time"

	"curemedix/db"
	"curemedix/models"
	"curemedix/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

// Service owns the carts collection: per-user pending purchase lines.
type Service struct {
	store *db.Store
}

func NewService(store *db.Store) *Service {
	return &Service{store: store}
}

// Add inserts a cart line. Adding the same medicine twice creates two lines.
func (s *Service) Add(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var item models.CartItem
	if err := utils.DecodeStrict(r, &item); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if item.Email == "" || item.MedicineID == "" || item.Price <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "missing or invalid fields")
		return
	}
	if item.Quantity <= 0 {
		item.Quantity = 1
	}
	item.ID = utils.GetUUID()
	item.AddedAt = time.Now()

	if _, err := s.store.Carts.InsertOne(ctx, item); err != nil {
		log.Println("cart insert error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to add to cart")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"insertedId": item.ID})
}

// ListByOwner returns every cart line for ?email=.
func (s *Service) ListByOwner(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	email := r.URL.Query().Get("email")
	if email == "" {
		utils.RespondWithMessage(w, http.StatusBadRequest, "Email is required")
		return
	}

	cursor, err := s.store.Carts.Find(ctx, bson.M{"email": email})
	if err != nil {
		log.Println("cart find error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "could not retrieve cart")
		return
	}
	defer cursor.Close(ctx)

	var items []models.CartItem
	if err := cursor.All(ctx, &items); err != nil {
		log.Println("cart decode error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "error reading cart data")
		return
	}
	if len(items) == 0 {
		items = []models.CartItem{}
	}
	utils.RespondWithJSON(w, http.StatusOK, items)
}

// Remove deletes one cart line by id.
func (s *Service) Remove(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := s.store.Carts.DeleteOne(ctx, bson.M{"_id": ps.ByName("id")})
	if err != nil {
		log.Println("cart delete error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to remove item")
		return
	}
	if res.DeletedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "cart item not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"deletedCount": res.DeletedCount})
}

// ClearByOwner bulk-deletes every cart line for ?email=.
func (s *Service) ClearByOwner(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	email := r.URL.Query().Get("email")
	if email == "" {
		utils.RespondWithMessage(w, http.StatusBadRequest, "Email is required")
		return
	}

	res, err := s.store.Carts.DeleteMany(ctx, bson.M{"email": email})
	if err != nil {
		log.Println("cart clear error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to clear cart")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"deletedCount": res.DeletedCount})
}
