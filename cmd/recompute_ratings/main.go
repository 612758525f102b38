package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kurtarapp/kurtar-backend/internal/config"
	"github.com/kurtarapp/kurtar-backend/internal/db"
	"github.com/kurtarapp/kurtar-backend/internal/logger"
	"github.com/kurtarapp/kurtar-backend/internal/repos"
	"github.com/kurtarapp/kurtar-backend/internal/services"
)

// Explicit reconciliation pass: recomputes every restaurant's rating
// aggregate from its full public rating set. Normally the post-write step
// keeps aggregates current; this exists for restaurants whose last recompute
// failed or that predate the derived fields.
func main() {
	var only string
	flag.StringVar(&only, "restaurant", "", "recompute a single restaurant id")
	flag.Parse()

	log, err := logger.New("production")
	if err != nil {
		fmt.Printf("init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfg := config.Load(log)
	mongoService, err := db.NewMongoService(cfg.MongoURI, cfg.MongoDatabase, log)
	if err != nil {
		fmt.Printf("init mongo: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		mongoService.Close(ctx)
	}()

	ratingRepo := repos.NewRatingRepo(mongoService.Collection(db.RatingsCollection), log)
	restaurantRepo := repos.NewRestaurantRepo(mongoService.Collection(db.RestaurantsCollection), log)
	ratingService := services.NewRatingService(log, ratingRepo, restaurantRepo, nil, nil)

	ctx := context.Background()

	if only != "" {
		id, err := primitive.ObjectIDFromHex(only)
		if err != nil {
			fmt.Printf("invalid restaurant id %q: %v\n", only, err)
			os.Exit(1)
		}
		if err := ratingService.Recompute(ctx, id); err != nil {
			fmt.Printf("recompute failed for %s: %v\n", id.Hex(), err)
			os.Exit(1)
		}
		fmt.Printf("recomputed %s\n", id.Hex())
		return
	}

	var done, failed int
	err = restaurantRepo.EachID(ctx, func(id primitive.ObjectID) error {
		if err := ratingService.Recompute(ctx, id); err != nil {
			failed++
			fmt.Printf("recompute failed for %s: %v\n", id.Hex(), err)
			return nil
		}
		done++
		return nil
	})
	if err != nil {
		fmt.Printf("scan failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("done; recomputed=%d failed=%d\n", done, failed)
}
