package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kurtarapp/kurtar-backend/internal/config"
	"github.com/kurtarapp/kurtar-backend/internal/db"
	"github.com/kurtarapp/kurtar-backend/internal/logger"
	"github.com/kurtarapp/kurtar-backend/internal/normalization"
	"github.com/kurtarapp/kurtar-backend/internal/repos"
)

// One-time bulk pass that applies the same per-record schema patch the
// request-time guard uses, so a full collection can be brought to the current
// shape ahead of traffic instead of lazily.
func main() {
	var dryRun bool
	var limit int
	flag.BoolVar(&dryRun, "dry-run", false, "print planned patches without writing")
	flag.IntVar(&limit, "limit", 0, "stop after this many patched profiles")
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

	userRepo := repos.NewUserRepo(mongoService.Collection(db.UsersCollection), log)
	ctx := context.Background()

	var scanned, patched, skipped int
	err = userRepo.EachRaw(ctx, func(doc bson.M) error {
		scanned++
		if limit > 0 && patched >= limit {
			return nil
		}
		if normalization.ProfileConforms(doc) {
			skipped++
			return nil
		}
		patch := normalization.ProfilePatch(doc)
		if len(patch) == 0 {
			skipped++
			return nil
		}
		id, ok := doc["_id"].(primitive.ObjectID)
		if !ok {
			fmt.Printf("skipping profile with non-ObjectID _id: %v\n", doc["_id"])
			return nil
		}
		if dryRun {
			fmt.Printf("[dry-run] would patch %s with %d fields\n", id.Hex(), len(patch))
			patched++
			return nil
		}
		if err := userRepo.Patch(ctx, id, patch); err != nil {
			fmt.Printf("patch failed for %s: %v\n", id.Hex(), err)
			return nil
		}
		patched++
		return nil
	})
	if err != nil {
		fmt.Printf("scan failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("done; scanned=%d patched=%d already_conforming=%d\n", scanned, patched, skipped)
}
