package medicines

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

// Service is read/write passthrough to the medicines collection.
type Service struct {
	store *db.Store
}

func NewService(store *db.Store) *Service {
	return &Service{store: store}
}

// List returns every medicine.
func (s *Service) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	s.find(w, r, bson.M{})
}

// BySeller returns medicines listed by one seller.
func (s *Service) BySeller(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	s.find(w, r, bson.M{"seller": ps.ByName("email")})
}

// Search matches name or generic case-insensitively against ?search=.
func (s *Service) Search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	search := r.URL.Query().Get("search")
	s.find(w, r, bson.M{"$or": []bson.M{
		{"name": bson.M{"$regex": search, "$options": "i"}},
		{"generic": bson.M{"$regex": search, "$options": "i"}},
	}})
}

func (s *Service) find(w http.ResponseWriter, r *http.Request, filter bson.M) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cursor, err := s.store.Medicines.Find(ctx, filter)
	if err != nil {
		log.Println("medicines find error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "could not retrieve medicines")
		return
	}
	defer cursor.Close(ctx)

	var items []models.Medicine
	if err := cursor.All(ctx, &items); err != nil {
		log.Println("medicines decode error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "error reading medicines")
		return
	}
	if len(items) == 0 {
		items = []models.Medicine{}
	}
	utils.RespondWithJSON(w, http.StatusOK, items)
}

// Create inserts a new listing.
func (s *Service) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var m models.Medicine
	if err := utils.DecodeStrict(r, &m); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if m.Name == "" || m.Seller == "" || m.Price <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "missing or invalid fields")
		return
	}
	m.ID = utils.GetUUID()

	if _, err := s.store.Medicines.InsertOne(ctx, m); err != nil {
		log.Println("medicines insert error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to add medicine")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"insertedId": m.ID})
}
