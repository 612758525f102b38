package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kurtarapp/kurtar-backend/internal/clients/rabbitmq"
	"github.com/kurtarapp/kurtar-backend/internal/clients/redis"
	"github.com/kurtarapp/kurtar-backend/internal/logger"
	"github.com/kurtarapp/kurtar-backend/internal/repos"
	"github.com/kurtarapp/kurtar-backend/internal/types"
)

type RatingService interface {
	Create(ctx context.Context, input CreateRatingInput) (*types.Rating, error)
	Update(ctx context.Context, ratingID primitive.ObjectID, input UpdateRatingInput) (*types.Rating, error)
	RestaurantAggregate(ctx context.Context, restaurantID primitive.ObjectID) (*types.RatingAggregate, error)
	Recompute(ctx context.Context, restaurantID primitive.ObjectID) error
}

type CreateRatingInput struct {
	OrderID      primitive.ObjectID `json:"orderId"`
	RestaurantID primitive.ObjectID `json:"restaurantId"`
	Value        int                `json:"rating"`
	Comment      string             `json:"comment"`
	Photos       []string           `json:"photos"`
	IsPublic     *bool              `json:"isPublic"`
}

type UpdateRatingInput struct {
	Value   int      `json:"rating"`
	Comment string   `json:"comment"`
	Photos  []string `json:"photos"`
}

type ratingService struct {
	log            *logger.Logger
	ratingRepo     repos.RatingRepo
	restaurantRepo repos.RestaurantRepo
	cache          redis.RatingCache
	publisher      rabbitmq.EventPublisher
}

func NewRatingService(
	baseLog *logger.Logger,
	ratingRepo repos.RatingRepo,
	restaurantRepo repos.RestaurantRepo,
	cache redis.RatingCache,
	publisher rabbitmq.EventPublisher,
) RatingService {
	return &ratingService{
		log:            baseLog.With("service", "RatingService"),
		ratingRepo:     ratingRepo,
		restaurantRepo: restaurantRepo,
		cache:          cache,
		publisher:      publisher,
	}
}

func validateRating(value int, comment string, photos []string) error {
	if value < 1 || value > 5 {
		return ValidationError("rating must be between 1 and 5")
	}
	if len(comment) > types.MaxRatingCommentLen {
		return ValidationError(fmt.Sprintf("comment longer than %d characters", types.MaxRatingCommentLen))
	}
	if len(photos) > 1 {
		return ErrTooManyPhotos
	}
	return nil
}

func (rs *ratingService) Create(ctx context.Context, input CreateRatingInput) (*types.Rating, error) {
	customerID, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	if input.OrderID.IsZero() || input.RestaurantID.IsZero() {
		return nil, ValidationError("orderId and restaurantId required")
	}
	input.Comment = strings.TrimSpace(input.Comment)
	if err := validateRating(input.Value, input.Comment, input.Photos); err != nil {
		return nil, err
	}

	exists, err := rs.ratingRepo.ExistsForOrder(ctx, input.OrderID)
	if err != nil {
		return nil, fmt.Errorf("check existing rating: %w", err)
	}
	if exists {
		return nil, ErrDuplicateRating
	}

	isPublic := true
	if input.IsPublic != nil {
		isPublic = *input.IsPublic
	}
	now := time.Now().UTC()
	rating := &types.Rating{
		OrderID:      input.OrderID,
		CustomerID:   customerID,
		RestaurantID: input.RestaurantID,
		Value:        input.Value,
		Comment:      input.Comment,
		Photos:       input.Photos,
		RatingText:   types.RatingTextFor(input.Value),
		IsPublic:     isPublic,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	rating, err = rs.ratingRepo.Insert(ctx, rating)
	if err != nil {
		return nil, fmt.Errorf("insert rating: %w", err)
	}

	// Explicit post-write step. A failed recompute never rolls the rating
	// back; the aggregate is corrected by the next successful write or an
	// explicit recompute pass.
	if err := rs.Recompute(ctx, rating.RestaurantID); err != nil {
		rs.log.Warn("aggregate recompute failed", "restaurant_id", rating.RestaurantID.Hex(), "error", err)
	}
	if rs.publisher != nil {
		if err := rs.publisher.Publish(rabbitmq.RouteRatingCreated, rating); err != nil {
			rs.log.Warn("rating.created publish failed", "rating_id", rating.ID.Hex(), "error", err)
		}
	}
	return rating, nil
}

func (rs *ratingService) Update(ctx context.Context, ratingID primitive.ObjectID, input UpdateRatingInput) (*types.Rating, error) {
	customerID, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	rating, err := rs.ratingRepo.GetByID(ctx, ratingID)
	if err != nil {
		return nil, fmt.Errorf("fetch rating: %w", err)
	}
	if rating.CustomerID != customerID {
		return nil, ErrForbidden
	}
	if !rating.Editable(time.Now().UTC()) {
		return nil, ErrRatingLocked
	}
	input.Comment = strings.TrimSpace(input.Comment)
	if err := validateRating(input.Value, input.Comment, input.Photos); err != nil {
		return nil, err
	}

	set := bson.M{
		"rating":     input.Value,
		"comment":    input.Comment,
		"photos":     input.Photos,
		"ratingText": types.RatingTextFor(input.Value),
		"updatedAt":  time.Now().UTC(),
	}
	if err := rs.ratingRepo.Update(ctx, ratingID, set); err != nil {
		return nil, fmt.Errorf("update rating: %w", err)
	}
	if err := rs.Recompute(ctx, rating.RestaurantID); err != nil {
		rs.log.Warn("aggregate recompute failed", "restaurant_id", rating.RestaurantID.Hex(), "error", err)
	}
	return rs.ratingRepo.GetByID(ctx, ratingID)
}

// RestaurantAggregate serves the stored summary through the read cache.
func (rs *ratingService) RestaurantAggregate(ctx context.Context, restaurantID primitive.ObjectID) (*types.RatingAggregate, error) {
	if rs.cache != nil {
		if agg, err := rs.cache.Get(ctx, restaurantID.Hex()); err != nil {
			rs.log.Warn("aggregate cache read failed", "restaurant_id", restaurantID.Hex(), "error", err)
		} else if agg != nil {
			return agg, nil
		}
	}

	restaurant, err := rs.restaurantRepo.GetByID(ctx, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("fetch restaurant: %w", err)
	}
	agg := restaurant.Aggregate()
	if rs.cache != nil {
		if err := rs.cache.Set(ctx, restaurantID.Hex(), agg); err != nil {
			rs.log.Warn("aggregate cache write failed", "restaurant_id", restaurantID.Hex(), "error", err)
		}
	}
	return &agg, nil
}

// Recompute derives the restaurant's aggregate from a full rescan of its
// public ratings and persists it. Because it always rescans, concurrent
// writers converge on the true rating set no matter how they interleave.
func (rs *ratingService) Recompute(ctx context.Context, restaurantID primitive.ObjectID) error {
	buckets, err := rs.ratingRepo.GroupByValue(ctx, restaurantID)
	if err != nil {
		return fmt.Errorf("scan ratings: %w", err)
	}
	agg := aggregateFromBuckets(buckets)
	if err := rs.restaurantRepo.SetRatingAggregate(ctx, restaurantID, agg); err != nil {
		return fmt.Errorf("store aggregate: %w", err)
	}
	if rs.cache != nil {
		if err := rs.cache.Invalidate(ctx, restaurantID.Hex()); err != nil {
			rs.log.Warn("aggregate cache invalidate failed", "restaurant_id", restaurantID.Hex(), "error", err)
		}
	}
	return nil
}

// aggregateFromBuckets turns score buckets into the stored summary: mean
// rounded to one decimal, total count, and the fixed 5-slot distribution.
func aggregateFromBuckets(buckets map[int]int) types.RatingAggregate {
	var agg types.RatingAggregate
	var sum int
	for value, count := range buckets {
		if value < 1 || value > 5 || count <= 0 {
			continue
		}
		agg.Distribution[value-1] = count
		agg.Count += count
		sum += value * count
	}
	if agg.Count > 0 {
		agg.Average = math.Round(float64(sum)/float64(agg.Count)*10) / 10
	}
	return agg
}
