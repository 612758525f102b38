package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kurtarapp/kurtar-backend/internal/logger"
	"github.com/kurtarapp/kurtar-backend/internal/requestdata"
	"github.com/kurtarapp/kurtar-backend/internal/types"
)

func TestAggregateFromBuckets(t *testing.T) {
	cases := []struct {
		name     string
		buckets  map[int]int
		wantAvg  float64
		wantN    int
		wantDist [5]int
	}{
		{
			name:     "two_fives_one_four",
			buckets:  map[int]int{5: 2, 4: 1},
			wantAvg:  4.7,
			wantN:    3,
			wantDist: [5]int{0, 0, 0, 1, 2},
		},
		{
			name:     "empty",
			buckets:  map[int]int{},
			wantAvg:  0,
			wantN:    0,
			wantDist: [5]int{},
		},
		{
			name:     "all_ones",
			buckets:  map[int]int{1: 4},
			wantAvg:  1,
			wantN:    4,
			wantDist: [5]int{4, 0, 0, 0, 0},
		},
		{
			name:     "out_of_range_ignored",
			buckets:  map[int]int{0: 3, 6: 2, 3: 2},
			wantAvg:  3,
			wantN:    2,
			wantDist: [5]int{0, 0, 2, 0, 0},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			agg := aggregateFromBuckets(tc.buckets)
			if agg.Average != tc.wantAvg {
				t.Fatalf("average=%v, want %v", agg.Average, tc.wantAvg)
			}
			if agg.Count != tc.wantN {
				t.Fatalf("count=%d, want %d", agg.Count, tc.wantN)
			}
			if agg.Distribution != tc.wantDist {
				t.Fatalf("distribution=%v, want %v", agg.Distribution, tc.wantDist)
			}
		})
	}
}

type fakeRatingRepo struct {
	ratings []*types.Rating
}

func (f *fakeRatingRepo) Insert(_ context.Context, r *types.Rating) (*types.Rating, error) {
	r.ID = primitive.NewObjectID()
	f.ratings = append(f.ratings, r)
	return r, nil
}

func (f *fakeRatingRepo) GetByID(_ context.Context, id primitive.ObjectID) (*types.Rating, error) {
	for _, r := range f.ratings {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeRatingRepo) ExistsForOrder(_ context.Context, orderID primitive.ObjectID) (bool, error) {
	for _, r := range f.ratings {
		if r.OrderID == orderID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRatingRepo) Update(_ context.Context, id primitive.ObjectID, set bson.M) error {
	for _, r := range f.ratings {
		if r.ID == id {
			if v, ok := set["rating"].(int); ok {
				r.Value = v
			}
			return nil
		}
	}
	return errors.New("not found")
}

func (f *fakeRatingRepo) GroupByValue(_ context.Context, restaurantID primitive.ObjectID) (map[int]int, error) {
	buckets := map[int]int{}
	for _, r := range f.ratings {
		if r.RestaurantID == restaurantID && r.IsPublic {
			buckets[r.Value]++
		}
	}
	return buckets, nil
}

type fakeRestaurantRepo struct {
	aggregates map[primitive.ObjectID]types.RatingAggregate
}

func (f *fakeRestaurantRepo) GetByID(_ context.Context, id primitive.ObjectID) (*types.Restaurant, error) {
	agg := f.aggregates[id]
	return &types.Restaurant{
		ID:                 id,
		Name:               "Test",
		Rating:             agg.Average,
		RatingCount:        agg.Count,
		RatingDistribution: agg.Distribution,
	}, nil
}

func (f *fakeRestaurantRepo) SetRatingAggregate(_ context.Context, id primitive.ObjectID, agg types.RatingAggregate) error {
	if f.aggregates == nil {
		f.aggregates = map[primitive.ObjectID]types.RatingAggregate{}
	}
	f.aggregates[id] = agg
	return nil
}

func (f *fakeRestaurantRepo) EachID(_ context.Context, fn func(primitive.ObjectID) error) error {
	for id := range f.aggregates {
		if err := fn(id); err != nil {
			return err
		}
	}
	return nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger init: %v", err)
	}
	return log
}

func authedCtx(userID primitive.ObjectID) context.Context {
	return requestdata.WithRequestData(context.Background(), &requestdata.RequestData{UserID: userID})
}

func TestRatingCreateRecomputesAggregate(t *testing.T) {
	ratings := &fakeRatingRepo{}
	restaurants := &fakeRestaurantRepo{}
	svc := NewRatingService(testLogger(t), ratings, restaurants, nil, nil)

	restaurantID := primitive.NewObjectID()
	ctx := authedCtx(primitive.NewObjectID())
	for _, value := range []int{5, 4, 5} {
		if _, err := svc.Create(ctx, CreateRatingInput{
			OrderID:      primitive.NewObjectID(),
			RestaurantID: restaurantID,
			Value:        value,
		}); err != nil {
			t.Fatalf("create rating %d: %v", value, err)
		}
	}

	agg := restaurants.aggregates[restaurantID]
	if agg.Average != 4.7 || agg.Count != 3 {
		t.Fatalf("aggregate = %+v, want average 4.7 count 3", agg)
	}
	if agg.Distribution != [5]int{0, 0, 0, 1, 2} {
		t.Fatalf("distribution = %v, want [0 0 0 1 2]", agg.Distribution)
	}
}

func TestRatingCreateRejectsSecondRatingForOrder(t *testing.T) {
	svc := NewRatingService(testLogger(t), &fakeRatingRepo{}, &fakeRestaurantRepo{}, nil, nil)
	ctx := authedCtx(primitive.NewObjectID())

	input := CreateRatingInput{
		OrderID:      primitive.NewObjectID(),
		RestaurantID: primitive.NewObjectID(),
		Value:        5,
	}
	if _, err := svc.Create(ctx, input); err != nil {
		t.Fatalf("first rating: %v", err)
	}
	_, err := svc.Create(ctx, input)
	if !errors.Is(err, ErrInvariant) {
		t.Fatalf("second rating for same order must be an invariant violation, got %v", err)
	}
}

func TestRatingCreateRejectsTwoPhotos(t *testing.T) {
	svc := NewRatingService(testLogger(t), &fakeRatingRepo{}, &fakeRestaurantRepo{}, nil, nil)
	_, err := svc.Create(authedCtx(primitive.NewObjectID()), CreateRatingInput{
		OrderID:      primitive.NewObjectID(),
		RestaurantID: primitive.NewObjectID(),
		Value:        4,
		Photos:       []string{"a.jpg", "b.jpg"},
	})
	if !errors.Is(err, ErrInvariant) {
		t.Fatalf("two photos must be rejected, got %v", err)
	}
}

func TestRatingCreateValidatesValue(t *testing.T) {
	svc := NewRatingService(testLogger(t), &fakeRatingRepo{}, &fakeRestaurantRepo{}, nil, nil)
	for _, value := range []int{0, 6, -1} {
		_, err := svc.Create(authedCtx(primitive.NewObjectID()), CreateRatingInput{
			OrderID:      primitive.NewObjectID(),
			RestaurantID: primitive.NewObjectID(),
			Value:        value,
		})
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("value %d must fail validation, got %v", value, err)
		}
	}
}

func TestRatingUpdateOutsideWindowLocked(t *testing.T) {
	ratings := &fakeRatingRepo{}
	svc := NewRatingService(testLogger(t), ratings, &fakeRestaurantRepo{}, nil, nil)

	customerID := primitive.NewObjectID()
	ctx := authedCtx(customerID)
	created, err := svc.Create(ctx, CreateRatingInput{
		OrderID:      primitive.NewObjectID(),
		RestaurantID: primitive.NewObjectID(),
		Value:        3,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Age the rating past the window.
	created.CreatedAt = created.CreatedAt.Add(-types.RatingEditWindow - time.Hour)

	_, err = svc.Update(ctx, created.ID, UpdateRatingInput{Value: 5})
	if !errors.Is(err, ErrRatingLocked) {
		t.Fatalf("edit past window must be locked, got %v", err)
	}
}

func TestRatingUpdateOnlyAuthor(t *testing.T) {
	ratings := &fakeRatingRepo{}
	svc := NewRatingService(testLogger(t), ratings, &fakeRestaurantRepo{}, nil, nil)

	created, err := svc.Create(authedCtx(primitive.NewObjectID()), CreateRatingInput{
		OrderID:      primitive.NewObjectID(),
		RestaurantID: primitive.NewObjectID(),
		Value:        3,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = svc.Update(authedCtx(primitive.NewObjectID()), created.ID, UpdateRatingInput{Value: 1})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("non-author edit must be forbidden, got %v", err)
	}
}

func TestRatingTextFor(t *testing.T) {
	if got := types.RatingTextFor(5); got != "excellent" {
		t.Fatalf("RatingTextFor(5)=%q", got)
	}
	if got := types.RatingTextFor(1); got != "awful" {
		t.Fatalf("RatingTextFor(1)=%q", got)
	}
}
