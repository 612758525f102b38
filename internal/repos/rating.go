package repos

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/kurtarapp/kurtar-backend/internal/logger"
	"github.com/kurtarapp/kurtar-backend/internal/types"
)

type RatingRepo interface {
	Insert(ctx context.Context, r *types.Rating) (*types.Rating, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*types.Rating, error)
	ExistsForOrder(ctx context.Context, orderID primitive.ObjectID) (bool, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) error
	GroupByValue(ctx context.Context, restaurantID primitive.ObjectID) (map[int]int, error)
}

type ratingRepo struct {
	col *mongo.Collection
	log *logger.Logger
}

func NewRatingRepo(col *mongo.Collection, baseLog *logger.Logger) RatingRepo {
	return &ratingRepo{col: col, log: baseLog.With("repo", "RatingRepo")}
}

func (rr *ratingRepo) Insert(ctx context.Context, r *types.Rating) (*types.Rating, error) {
	res, err := rr.col.InsertOne(ctx, r)
	if err != nil {
		return nil, err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		r.ID = oid
	}
	return r, nil
}

func (rr *ratingRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*types.Rating, error) {
	var r types.Rating
	if err := rr.col.FindOne(ctx, bson.M{"_id": id}).Decode(&r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (rr *ratingRepo) ExistsForOrder(ctx context.Context, orderID primitive.ObjectID) (bool, error) {
	count, err := rr.col.CountDocuments(ctx, bson.M{"orderId": orderID})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (rr *ratingRepo) Update(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	res, err := rr.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// GroupByValue buckets the restaurant's public ratings by score. The derived
// average and distribution are always computed from this full rescan.
func (rr *ratingRepo) GroupByValue(ctx context.Context, restaurantID primitive.ObjectID) (map[int]int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"restaurantId": restaurantID, "isPublic": true}}},
		{{Key: "$group", Value: bson.M{"_id": "$rating", "count": bson.M{"$sum": 1}}}},
	}
	cur, err := rr.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	buckets := map[int]int{}
	for cur.Next(ctx) {
		var row struct {
			Value int `bson:"_id"`
			Count int `bson:"count"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		buckets[row.Value] = row.Count
	}
	return buckets, cur.Err()
}
