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

// OrderRepo reads orders as raw documents. Orders written over the years come
// in several layouts, so decoding into a typed struct happens only after the
// normalization layer has run; the repo never interprets item fields itself.
type OrderRepo interface {
	Create(ctx context.Context, o *types.Order) error
	GetRawByID(ctx context.Context, id string) (bson.M, error)
	RawByCustomer(ctx context.Context, customerID string) ([]bson.M, error)
	RawByRestaurant(ctx context.Context, restaurantID string) ([]bson.M, error)
	UpdateStatus(ctx context.Context, id, status string) (bson.M, error)
}

type orderRepo struct {
	col *mongo.Collection
	log *logger.Logger
}

func NewOrderRepo(col *mongo.Collection, baseLog *logger.Logger) OrderRepo {
	return &orderRepo{col: col, log: baseLog.With("repo", "OrderRepo")}
}

func (or *orderRepo) Create(ctx context.Context, o *types.Order) error {
	_, err := or.col.InsertOne(ctx, o)
	return err
}

// idFilter matches both id generations: documents keyed by a native ObjectID
// and documents keyed by the string orderId.
func idFilter(id string) bson.M {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.M{"$or": bson.A{bson.M{"_id": oid}, bson.M{"_id": id}}}
	}
	return bson.M{"$or": bson.A{bson.M{"_id": id}, bson.M{"orderId": id}}}
}

func (or *orderRepo) GetRawByID(ctx context.Context, id string) (bson.M, error) {
	var doc bson.M
	if err := or.col.FindOne(ctx, idFilter(id)).Decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (or *orderRepo) RawByCustomer(ctx context.Context, customerID string) ([]bson.M, error) {
	return or.rawList(ctx, bson.M{"customer.id": customerID})
}

func (or *orderRepo) RawByRestaurant(ctx context.Context, restaurantID string) ([]bson.M, error) {
	return or.rawList(ctx, bson.M{"restaurant.id": restaurantID})
}

func (or *orderRepo) rawList(ctx context.Context, filter bson.M) ([]bson.M, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := or.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (or *orderRepo) UpdateStatus(ctx context.Context, id, status string) (bson.M, error) {
	update := bson.M{"$set": bson.M{
		"status":    status,
		"updatedAt": time.Now().UTC().Format(time.RFC3339),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc bson.M
	if err := or.col.FindOneAndUpdate(ctx, idFilter(id), update, opts).Decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}
