package services

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kurtarapp/kurtar-backend/internal/clients/rabbitmq"
	"github.com/kurtarapp/kurtar-backend/internal/logger"
	"github.com/kurtarapp/kurtar-backend/internal/repos"
	"github.com/kurtarapp/kurtar-backend/internal/types"
)

// pushTokenScheme is the prefix of tokens issued by the current push
// provider. Tokens from the retired provider remain in the list with
// active=false; they are filtered here, never rewritten or deleted.
const pushTokenScheme = "ExponentPushToken["

// ActivePushTokens selects the token strings dispatch may use: active entries
// carrying the supported scheme.
func ActivePushTokens(tokens []types.PushToken) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if !t.Active {
			continue
		}
		if !strings.HasPrefix(t.Token, pushTokenScheme) {
			continue
		}
		out = append(out, t.Token)
	}
	return out
}

// NotificationService fans an order update out to the customer: an in-app
// notification on the profile and a push event for the delivery workers.
// Dispatch is best-effort; failures are logged and never fail the caller.
type NotificationService interface {
	NotifyOrderUpdate(ctx context.Context, customerID primitive.ObjectID, order *types.Order)
}

type notificationService struct {
	log       *logger.Logger
	userRepo  repos.UserRepo
	publisher rabbitmq.EventPublisher
}

func NewNotificationService(baseLog *logger.Logger, userRepo repos.UserRepo, publisher rabbitmq.EventPublisher) NotificationService {
	return &notificationService{
		log:       baseLog.With("service", "NotificationService"),
		userRepo:  userRepo,
		publisher: publisher,
	}
}

func (ns *notificationService) NotifyOrderUpdate(ctx context.Context, customerID primitive.ObjectID, order *types.Order) {
	n := types.InAppNotification{
		ID:        primitive.NewObjectID(),
		Title:     "Siparişin güncellendi",
		Body:      "Sipariş durumu: " + order.Status,
		Kind:      "order",
		OrderID:   order.OrderID,
		Read:      false,
		CreatedAt: time.Now().UTC(),
	}
	if err := ns.userRepo.PushInAppNotification(ctx, customerID, n); err != nil {
		ns.log.Warn("in-app notification write failed", "user_id", customerID.Hex(), "error", err)
	}

	user, err := ns.userRepo.GetByID(ctx, customerID)
	if err != nil {
		ns.log.Warn("push lookup failed", "user_id", customerID.Hex(), "error", err)
		return
	}
	if !user.NotificationPreferences.Push {
		return
	}
	tokens := ActivePushTokens(user.PushTokens)
	if len(tokens) == 0 || ns.publisher == nil {
		return
	}
	payload := map[string]any{
		"tokens": tokens,
		"title":  n.Title,
		"body":   n.Body,
		"order":  order,
	}
	if err := ns.publisher.Publish(rabbitmq.RoutePush, payload); err != nil {
		ns.log.Warn("push publish failed", "user_id", customerID.Hex(), "error", err)
	}
}
