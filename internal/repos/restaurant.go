package repos

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kurtarapp/kurtar-backend/internal/logger"
	"github.com/kurtarapp/kurtar-backend/internal/types"
)

type RestaurantRepo interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*types.Restaurant, error)
	SetRatingAggregate(ctx context.Context, id primitive.ObjectID, agg types.RatingAggregate) error
	EachID(ctx context.Context, fn func(primitive.ObjectID) error) error
}

type restaurantRepo struct {
	col *mongo.Collection
	log *logger.Logger
}

func NewRestaurantRepo(col *mongo.Collection, baseLog *logger.Logger) RestaurantRepo {
	return &restaurantRepo{col: col, log: baseLog.With("repo", "RestaurantRepo")}
}

func (rr *restaurantRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*types.Restaurant, error) {
	var r types.Restaurant
	if err := rr.col.FindOne(ctx, bson.M{"_id": id}).Decode(&r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (rr *restaurantRepo) SetRatingAggregate(ctx context.Context, id primitive.ObjectID, agg types.RatingAggregate) error {
	res, err := rr.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"rating":             agg.Average,
		"ratingCount":        agg.Count,
		"ratingDistribution": agg.Distribution,
		"updatedAt":          time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (rr *restaurantRepo) EachID(ctx context.Context, fn func(primitive.ObjectID) error) error {
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cur, err := rr.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return err
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var row struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cur.Decode(&row); err != nil {
			return err
		}
		if err := fn(row.ID); err != nil {
			return err
		}
	}
	return cur.Err()
}
