package repos

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/kurtarapp/kurtar-backend/internal/logger"
	"github.com/kurtarapp/kurtar-backend/internal/types"
)

type UserRepo interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*types.User, error)
	GetRawByID(ctx context.Context, id primitive.ObjectID) (bson.M, error)
	Patch(ctx context.Context, id primitive.ObjectID, set bson.M) error
	AddFavorite(ctx context.Context, userID, restaurantID primitive.ObjectID) error
	RemoveFavorite(ctx context.Context, userID, restaurantID primitive.ObjectID) error
	UpsertPushToken(ctx context.Context, userID primitive.ObjectID, token types.PushToken) error
	SetNotificationPrefs(ctx context.Context, userID primitive.ObjectID, prefs types.NotificationPreferences) error
	PushInAppNotification(ctx context.Context, userID primitive.ObjectID, n types.InAppNotification) error
	EachRaw(ctx context.Context, fn func(bson.M) error) error
}

type userRepo struct {
	col *mongo.Collection
	log *logger.Logger
}

func NewUserRepo(col *mongo.Collection, baseLog *logger.Logger) UserRepo {
	return &userRepo{col: col, log: baseLog.With("repo", "UserRepo")}
}

func (ur *userRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*types.User, error) {
	var u types.User
	if err := ur.col.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetRawByID returns the profile as stored, without any schema coercion, so
// the guard can inspect the legacy shape directly.
func (ur *userRepo) GetRawByID(ctx context.Context, id primitive.ObjectID) (bson.M, error) {
	var doc bson.M
	if err := ur.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (ur *userRepo) Patch(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	if len(set) == 0 {
		return nil
	}
	res, err := ur.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (ur *userRepo) AddFavorite(ctx context.Context, userID, restaurantID primitive.ObjectID) error {
	_, err := ur.col.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{
		"$addToSet": bson.M{"favoriteRestaurants": restaurantID},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	})
	return err
}

func (ur *userRepo) RemoveFavorite(ctx context.Context, userID, restaurantID primitive.ObjectID) error {
	_, err := ur.col.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{
		"$pull": bson.M{"favoriteRestaurants": restaurantID},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
	return err
}

// UpsertPushToken replaces any prior registration of the same token string so
// a device re-registering after reinstall does not pile up duplicates.
func (ur *userRepo) UpsertPushToken(ctx context.Context, userID primitive.ObjectID, token types.PushToken) error {
	if _, err := ur.col.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{
		"$pull": bson.M{"pushTokens": bson.M{"token": token.Token}},
	}); err != nil {
		return fmt.Errorf("drop existing token: %w", err)
	}
	_, err := ur.col.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{
		"$push": bson.M{"pushTokens": token},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
	return err
}

func (ur *userRepo) SetNotificationPrefs(ctx context.Context, userID primitive.ObjectID, prefs types.NotificationPreferences) error {
	_, err := ur.col.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{
		"$set": bson.M{"notificationPreferences": prefs, "updatedAt": time.Now().UTC()},
	})
	return err
}

func (ur *userRepo) PushInAppNotification(ctx context.Context, userID primitive.ObjectID, n types.InAppNotification) error {
	_, err := ur.col.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{
		"$push": bson.M{"inAppNotifications": n},
	})
	return err
}

// EachRaw streams every profile document to fn, in storage order. Used by the
// bulk schema backfill.
func (ur *userRepo) EachRaw(ctx context.Context, fn func(bson.M) error) error {
	cur, err := ur.col.Find(ctx, bson.M{})
	if err != nil {
		return err
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			return err
		}
		if err := fn(doc); err != nil {
			return err
		}
	}
	return cur.Err()
}
