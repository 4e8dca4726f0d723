package admin

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"curemedix/db"
	"curemedix/models"
	"curemedix/rdx"
	"curemedix/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	statsCacheKey = "admin:stats"
	statsCacheTTL = 30 * time.Second
)

// Service computes the admin dashboard aggregates. Read-only; counts are
// cheap estimates and need not be exact under concurrent writes.
type Service struct {
	store *db.Store
	rdx   *redis.Client
}

func NewService(store *db.Store, rdxClient *redis.Client) *Service {
	return &Service{store: store, rdx: rdxClient}
}

// Stats handles GET /admin-stats. An empty store yields all-zero fields.
func (s *Service) Stats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	if cached := rdx.GetCached(ctx, s.rdx, statsCacheKey); cached != "" {
		var stats models.AdminStats
		if err := json.Unmarshal([]byte(cached), &stats); err == nil {
			utils.RespondWithJSON(w, http.StatusOK, stats)
			return
		}
	}

	stats, err := s.compute(ctx)
	if err != nil {
		log.Println("admin stats error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}

	if blob, err := json.Marshal(stats); err == nil {
		rdx.SetCached(ctx, s.rdx, statsCacheKey, string(blob), statsCacheTTL)
	}
	utils.RespondWithJSON(w, http.StatusOK, stats)
}

func (s *Service) compute(ctx context.Context) (models.AdminStats, error) {
	var stats models.AdminStats
	var err error

	if stats.Users, err = s.store.Users.EstimatedDocumentCount(ctx); err != nil {
		return stats, err
	}
	if stats.Medicines, err = s.store.Medicines.EstimatedDocumentCount(ctx); err != nil {
		return stats, err
	}
	if stats.Orders, err = s.store.Payments.EstimatedDocumentCount(ctx); err != nil {
		return stats, err
	}

	if stats.Revenue, err = s.sumPrices(ctx, ""); err != nil {
		return stats, err
	}
	if stats.TotalPending, err = s.sumPrices(ctx, models.PaymentPending); err != nil {
		return stats, err
	}
	if stats.TotalPaid, err = s.sumPrices(ctx, models.PaymentPaid); err != nil {
		return stats, err
	}
	return stats, nil
}

// sumPrices groups the ledger and sums price, optionally filtered by status.
func (s *Service) sumPrices(ctx context.Context, status string) (float64, error) {
	pipeline := mongo.Pipeline{}
	if status != "" {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.M{"status": status}}})
	}
	pipeline = append(pipeline, bson.D{{Key: "$group", Value: bson.M{
		"_id":   nil,
		"total": bson.M{"$sum": "$price"},
	}}})

	cursor, err := s.store.Payments.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Total float64 `bson:"total"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}
