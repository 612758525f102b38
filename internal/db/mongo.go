package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kurtarapp/kurtar-backend/internal/logger"
)

// Collection names.
const (
	UsersCollection       = "users"
	OrdersCollection      = "orders"
	RatingsCollection     = "ratings"
	RestaurantsCollection = "restaurants"
)

type MongoService struct {
	client *mongo.Client
	db     *mongo.Database
	log    *logger.Logger
}

func NewMongoService(uri, database string, baseLog *logger.Logger) (*MongoService, error) {
	log := baseLog.With("service", "MongoService")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	log.Info("connected to mongo", "database", database)
	return &MongoService{client: client, db: client.Database(database), log: log}, nil
}

func (s *MongoService) Collection(name string) *mongo.Collection {
	return s.db.Collection(name)
}

// EnsureIndexes creates the indexes the write-path invariants lean on. The
// unique index on ratings.orderId backs the one-rating-per-order rule at the
// storage level as well as in the service check.
func (s *MongoService) EnsureIndexes(ctx context.Context) error {
	ratings := s.Collection(RatingsCollection)
	_, err := ratings.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "orderId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "restaurantId", Value: 1}, {Key: "isPublic", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("create rating indexes: %w", err)
	}

	orders := s.Collection(OrdersCollection)
	if _, err := orders.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "customer.id", Value: 1}},
	}); err != nil {
		return fmt.Errorf("create order indexes: %w", err)
	}
	return nil
}

func (s *MongoService) Close(ctx context.Context) {
	if err := s.client.Disconnect(ctx); err != nil {
		s.log.Warn("mongo disconnect failed", "error", err)
	}
}
