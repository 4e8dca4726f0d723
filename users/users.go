package users

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
)

// Service owns the users collection: registration, role reads, and the
// admin-only role-change operations.
type Service struct {
	store *db.Store
}

func NewService(store *db.Store) *Service {
	return &Service{store: store}
}

// List returns every user. Admin only.
func (s *Service) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cursor, err := s.store.Users.Find(ctx, bson.M{})
	if err != nil {
		log.Println("users find error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "could not retrieve users")
		return
	}
	defer cursor.Close(ctx)

	var all []models.User
	if err := cursor.All(ctx, &all); err != nil {
		log.Println("users decode error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "error reading users")
		return
	}
	if len(all) == 0 {
		all = []models.User{}
	}
	utils.RespondWithJSON(w, http.StatusOK, all)
}

// Create registers a user. Idempotent by email: a repeat registration is
// acknowledged without inserting a second record.
func (s *Service) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var user models.User
	if err := utils.DecodeStrict(r, &user); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if user.Email == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "email is required")
		return
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if !models.ValidRole(user.Role) {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid role")
		return
	}

	err := s.store.Users.FindOne(ctx, bson.M{"email": user.Email}).Err()
	if err == nil {
		utils.RespondWithJSON(w, http.StatusOK, utils.M{
			"message":    "user already exists",
			"insertedId": nil,
		})
		return
	}
	if err != mongo.ErrNoDocuments {
		log.Println("users lookup error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	user.ID = utils.GetUUID()
	if _, err := s.store.Users.InsertOne(ctx, user); err != nil {
		log.Println("users insert error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to register user")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"insertedId": user.ID})
}

// IsAdmin reports whether the caller's stored role is admin. The route is
// ownership-gated, so the path email always equals the token email here.
func (s *Service) IsAdmin(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	s.hasRole(w, r, ps.ByName("email"), models.RoleAdmin, "admin")
}

// IsSeller reports whether the caller's stored role is seller.
func (s *Service) IsSeller(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	s.hasRole(w, r, ps.ByName("email"), models.RoleSeller, "seller")
}

func (s *Service) hasRole(w http.ResponseWriter, r *http.Request, email, role, field string) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	stored, err := s.store.UserRole(ctx, email)
	if err != nil && err != mongo.ErrNoDocuments {
		log.Println("users role lookup error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "could not retrieve user")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]bool{field: stored == role})
}

// MakeAdmin promotes a user to admin.
func (s *Service) MakeAdmin(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	s.setRole(w, r, ps.ByName("id"), models.RoleAdmin)
}

// MakeSeller changes a user's role to seller.
func (s *Service) MakeSeller(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	s.setRole(w, r, ps.ByName("id"), models.RoleSeller)
}

// MakeUser demotes a user back to the plain role.
func (s *Service) MakeUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	s.setRole(w, r, ps.ByName("id"), models.RoleUser)
}

func (s *Service) setRole(w http.ResponseWriter, r *http.Request, id, role string) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := s.store.Users.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"role": role}},
	)
	if err != nil {
		log.Println("users role update error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to update role")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "user not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"modifiedCount": res.ModifiedCount})
}

// Delete removes a user by id. Admin only; there is no self-service delete.
func (s *Service) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := s.store.Users.DeleteOne(ctx, bson.M{"_id": ps.ByName("id")})
	if err != nil {
		log.Println("users delete error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}
	if res.DeletedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "user not found")
		return
	}
	utils.RespondWithMessage(w, http.StatusOK, "user deleted successfully")
}
