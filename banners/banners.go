package banners

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

// Service owns the banners collection.
type Service struct {
	store *db.Store
}

func NewService(store *db.Store) *Service {
	return &Service{store: store}
}

// List returns every banner.
func (s *Service) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	s.find(w, r, bson.M{})
}

// BySeller returns banners submitted by one seller.
func (s *Service) BySeller(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	s.find(w, r, bson.M{"seller": ps.ByName("email")})
}

func (s *Service) find(w http.ResponseWriter, r *http.Request, filter bson.M) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cursor, err := s.store.Banners.Find(ctx, filter)
	if err != nil {
		log.Println("banners find error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to fetch banners")
		return
	}
	defer cursor.Close(ctx)

	var items []models.Banner
	if err := cursor.All(ctx, &items); err != nil {
		log.Println("banners decode error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "error reading banners")
		return
	}
	if len(items) == 0 {
		items = []models.Banner{}
	}
	utils.RespondWithJSON(w, http.StatusOK, items)
}

// Create inserts a banner.
func (s *Service) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var b models.Banner
	if err := utils.DecodeStrict(r, &b); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if b.Seller == "" || b.Image == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "seller and image are required")
		return
	}
	b.ID = utils.GetUUID()

	if _, err := s.store.Banners.InsertOne(ctx, b); err != nil {
		log.Println("banners insert error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to add banner")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"insertedId": b.ID})
}

// SetActive toggles a banner's storefront flag.
func (s *Service) SetActive(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var body struct {
		IsBanner bool `json:"isBanner"`
	}
	if err := utils.DecodeStrict(r, &body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	res, err := s.store.Banners.UpdateOne(ctx,
		bson.M{"_id": ps.ByName("id")},
		bson.M{"$set": bson.M{"isBanner": body.IsBanner}},
	)
	if err != nil {
		log.Println("banners update error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to update banner")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "banner not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"modifiedCount": res.ModifiedCount})
}

// Delete removes a banner by id.
func (s *Service) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := s.store.Banners.DeleteOne(ctx, bson.M{"_id": ps.ByName("id")})
	if err != nil {
		log.Println("banners delete error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to delete banner")
		return
	}
	if res.DeletedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "banner not found")
		return
	}
	utils.RespondWithMessage(w, http.StatusOK, "banner deleted successfully")
}
