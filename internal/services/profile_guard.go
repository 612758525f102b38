package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kurtarapp/kurtar-backend/internal/logger"
	"github.com/kurtarapp/kurtar-backend/internal/normalization"
	"github.com/kurtarapp/kurtar-backend/internal/repos"
)

// ProfileGuard lazily migrates a profile document to the current schema the
// first time a request touches it. The read-check-write sequence is not
// atomic; concurrent requests may both issue the same patch, which converges
// because every writer computes identical defaults.
type ProfileGuard interface {
	// EnsureSchema never fails the request: read or write errors are logged
	// and swallowed, and the caller proceeds against the record as-is.
	EnsureSchema(ctx context.Context, userID primitive.ObjectID)
}

type profileGuard struct {
	log      *logger.Logger
	userRepo repos.UserRepo
}

func NewProfileGuard(baseLog *logger.Logger, userRepo repos.UserRepo) ProfileGuard {
	return &profileGuard{
		log:      baseLog.With("service", "ProfileGuard"),
		userRepo: userRepo,
	}
}

func (g *profileGuard) EnsureSchema(ctx context.Context, userID primitive.ObjectID) {
	doc, err := g.userRepo.GetRawByID(ctx, userID)
	if err != nil {
		g.log.Warn("schema guard read failed", "user_id", userID.Hex(), "error", err)
		return
	}

	patch := normalization.ProfilePatch(doc)
	if len(patch) == 0 {
		return
	}

	if err := g.userRepo.Patch(ctx, userID, patch); err != nil {
		g.log.Warn("schema guard write failed", "user_id", userID.Hex(), "error", err)
		return
	}
	g.log.Debug("backfilled profile schema", "user_id", userID.Hex(), "fields", len(patch))
}
