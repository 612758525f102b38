package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kurtarapp/kurtar-backend/internal/logger"
	"github.com/kurtarapp/kurtar-backend/internal/repos"
	"github.com/kurtarapp/kurtar-backend/internal/requestdata"
	"github.com/kurtarapp/kurtar-backend/internal/types"
)

type ProfileService interface {
	GetMe(ctx context.Context) (*types.User, error)
	AddFavorite(ctx context.Context, restaurantID primitive.ObjectID) error
	RemoveFavorite(ctx context.Context, restaurantID primitive.ObjectID) error
	RegisterPushToken(ctx context.Context, token, platform string) error
	SetNotificationPrefs(ctx context.Context, prefs types.NotificationPreferences) error
}

type profileService struct {
	log      *logger.Logger
	userRepo repos.UserRepo
}

func NewProfileService(baseLog *logger.Logger, userRepo repos.UserRepo) ProfileService {
	return &profileService{
		log:      baseLog.With("service", "ProfileService"),
		userRepo: userRepo,
	}
}

func identity(ctx context.Context) (primitive.ObjectID, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID.IsZero() {
		return primitive.NilObjectID, fmt.Errorf("request identity not set in context")
	}
	return rd.UserID, nil
}

func (ps *profileService) GetMe(ctx context.Context) (*types.User, error) {
	userID, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	u, err := ps.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	return u, nil
}

func (ps *profileService) AddFavorite(ctx context.Context, restaurantID primitive.ObjectID) error {
	userID, err := identity(ctx)
	if err != nil {
		return err
	}
	return ps.userRepo.AddFavorite(ctx, userID, restaurantID)
}

func (ps *profileService) RemoveFavorite(ctx context.Context, restaurantID primitive.ObjectID) error {
	userID, err := identity(ctx)
	if err != nil {
		return err
	}
	return ps.userRepo.RemoveFavorite(ctx, userID, restaurantID)
}

func (ps *profileService) RegisterPushToken(ctx context.Context, token, platform string) error {
	userID, err := identity(ctx)
	if err != nil {
		return err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return ValidationError("token required")
	}
	platform = strings.ToLower(strings.TrimSpace(platform))
	if platform != types.PlatformIOS && platform != types.PlatformAndroid {
		return ValidationError("platform must be ios or android")
	}
	return ps.userRepo.UpsertPushToken(ctx, userID, types.PushToken{
		Token:      token,
		Platform:   platform,
		Active:     true,
		LastUsedAt: time.Now().UTC(),
	})
}

func (ps *profileService) SetNotificationPrefs(ctx context.Context, prefs types.NotificationPreferences) error {
	userID, err := identity(ctx)
	if err != nil {
		return err
	}
	return ps.userRepo.SetNotificationPrefs(ctx, userID, prefs)
}
