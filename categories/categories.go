package categories

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
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Service owns the categories and categoryImages collections.
type Service struct {
	store *db.Store
}

func NewService(store *db.Store) *Service {
	return &Service{store: store}
}

// List returns every category.
func (s *Service) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cursor, err := s.store.Categories.Find(ctx, bson.M{})
	if err != nil {
		log.Println("categories find error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "could not retrieve categories")
		return
	}
	defer cursor.Close(ctx)

	var cats []models.Category
	if err := cursor.All(ctx, &cats); err != nil {
		log.Println("categories decode error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "error reading categories")
		return
	}
	if len(cats) == 0 {
		cats = []models.Category{}
	}
	utils.RespondWithJSON(w, http.StatusOK, cats)
}

// Get returns one category by id.
func (s *Service) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var cat models.Category
	err := s.store.Categories.FindOne(ctx, bson.M{"_id": ps.ByName("id")}).Decode(&cat)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "category not found")
		return
	}
	if err != nil {
		log.Println("categories findOne error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "could not retrieve category")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, cat)
}

// Create inserts a category.
func (s *Service) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var cat models.Category
	if err := utils.DecodeStrict(r, &cat); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if cat.Name == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "name is required")
		return
	}
	cat.ID = utils.GetUUID()

	if _, err := s.store.Categories.InsertOne(ctx, cat); err != nil {
		log.Println("categories insert error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to add category")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"insertedId": cat.ID})
}

// Update replaces name, image, and details of a category.
func (s *Service) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var cat models.Category
	if err := utils.DecodeStrict(r, &cat); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	res, err := s.store.Categories.UpdateOne(ctx,
		bson.M{"_id": ps.ByName("id")},
		bson.M{"$set": bson.M{
			"name":    cat.Name,
			"image":   cat.Image,
			"details": cat.Details,
		}},
	)
	if err != nil {
		log.Println("categories update error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to update category")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "category not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"modifiedCount": res.ModifiedCount})
}

// AddCount increments a category's listing counter, matched by name.
func (s *Service) AddCount(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := s.store.Categories.UpdateOne(ctx,
		bson.M{"name": ps.ByName("categoryName")},
		bson.M{"$inc": bson.M{"count": 1}},
	)
	if err != nil {
		log.Println("categories addCount error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to update count")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "category not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"modifiedCount": res.ModifiedCount})
}

// Delete removes a category by id.
func (s *Service) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := s.store.Categories.DeleteOne(ctx, bson.M{"_id": ps.ByName("id")})
	if err != nil {
		log.Println("categories delete error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to delete category")
		return
	}
	if res.DeletedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "category not found")
		return
	}
	utils.RespondWithMessage(w, http.StatusOK, "category deleted successfully")
}

// ListImages returns every category image record.
func (s *Service) ListImages(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cursor, err := s.store.CategoryImages.Find(ctx, bson.M{})
	if err != nil {
		log.Println("categoryImages find error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "could not retrieve images")
		return
	}
	defer cursor.Close(ctx)

	var images []models.CategoryImage
	if err := cursor.All(ctx, &images); err != nil {
		log.Println("categoryImages decode error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "error reading images")
		return
	}
	if len(images) == 0 {
		images = []models.CategoryImage{}
	}
	utils.RespondWithJSON(w, http.StatusOK, images)
}

// CreateImage inserts a category image record.
func (s *Service) CreateImage(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var img models.CategoryImage
	if err := utils.DecodeStrict(r, &img); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if img.CategoryName == "" || img.ImageURL == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "categoryName and imageUrl are required")
		return
	}

	if _, err := s.store.CategoryImages.InsertOne(ctx, img); err != nil {
		log.Println("categoryImages insert error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to add image")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"categoryName": img.CategoryName})
}

// UpsertImage sets the image URL for a category name, creating the record
// when absent.
func (s *Service) UpsertImage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var img models.CategoryImage
	if err := utils.DecodeStrict(r, &img); err != nil || img.ImageURL == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "imageUrl is required")
		return
	}

	res, err := s.store.CategoryImages.UpdateOne(ctx,
		bson.M{"categoryName": ps.ByName("name")},
		bson.M{"$set": bson.M{"imageUrl": img.ImageURL}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		log.Println("categoryImages upsert error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to update image")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"modifiedCount": res.ModifiedCount,
		"upserted":      res.UpsertedCount > 0,
	})
}
