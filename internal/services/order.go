package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kurtarapp/kurtar-backend/internal/clients/rabbitmq"
	"github.com/kurtarapp/kurtar-backend/internal/logger"
	"github.com/kurtarapp/kurtar-backend/internal/normalization"
	"github.com/kurtarapp/kurtar-backend/internal/repos"
	"github.com/kurtarapp/kurtar-backend/internal/types"
)

// OrderService owns the order read and write paths. Every order leaving this
// service is canonical: reads pass the stored document through the
// normalization layer before anything else sees it.
type OrderService interface {
	Get(ctx context.Context, id string) (*types.Order, error)
	ListMine(ctx context.Context) ([]*types.Order, error)
	ListForRestaurant(ctx context.Context, restaurantID string) ([]*types.Order, error)
	Create(ctx context.Context, input CreateOrderInput) (*types.Order, error)
	UpdateStatus(ctx context.Context, id, status string) (*types.Order, error)
}

type CreateOrderInput struct {
	RestaurantID  primitive.ObjectID `json:"restaurantId"`
	PackageID     string             `json:"packageId"`
	PackageName   string             `json:"packageName"`
	Description   string             `json:"description"`
	OriginalPrice float64            `json:"originalPrice"`
	Price         float64            `json:"price"`
	Quantity      int                `json:"quantity"`
	PaymentMethod string             `json:"paymentMethod"`
	Notes         string             `json:"notes"`
	PickupTime    string             `json:"pickupTime"`
}

type orderService struct {
	log            *logger.Logger
	orderRepo      repos.OrderRepo
	userRepo       repos.UserRepo
	restaurantRepo repos.RestaurantRepo
	notifications  NotificationService
	publisher      rabbitmq.EventPublisher
}

func NewOrderService(
	baseLog *logger.Logger,
	orderRepo repos.OrderRepo,
	userRepo repos.UserRepo,
	restaurantRepo repos.RestaurantRepo,
	notifications NotificationService,
	publisher rabbitmq.EventPublisher,
) OrderService {
	return &orderService{
		log:            baseLog.With("service", "OrderService"),
		orderRepo:      orderRepo,
		userRepo:       userRepo,
		restaurantRepo: restaurantRepo,
		notifications:  notifications,
		publisher:      publisher,
	}
}

func (os *orderService) Get(ctx context.Context, id string) (*types.Order, error) {
	doc, err := os.orderRepo.GetRawByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch order: %w", err)
	}
	return normalization.NormalizeOrder(doc), nil
}

func (os *orderService) ListMine(ctx context.Context) ([]*types.Order, error) {
	userID, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	docs, err := os.orderRepo.RawByCustomer(ctx, userID.Hex())
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return normalizeAll(docs), nil
}

func (os *orderService) ListForRestaurant(ctx context.Context, restaurantID string) ([]*types.Order, error) {
	docs, err := os.orderRepo.RawByRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("list restaurant orders: %w", err)
	}
	return normalizeAll(docs), nil
}

func normalizeAll(docs []bson.M) []*types.Order {
	out := make([]*types.Order, 0, len(docs))
	for _, doc := range docs {
		out = append(out, normalization.NormalizeOrder(doc))
	}
	return out
}

func (os *orderService) Create(ctx context.Context, input CreateOrderInput) (*types.Order, error) {
	userID, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	if input.RestaurantID.IsZero() {
		return nil, ValidationError("restaurantId required")
	}
	if strings.TrimSpace(input.PackageName) == "" {
		return nil, ValidationError("packageName required")
	}
	if input.Price < 0 || input.OriginalPrice < 0 {
		return nil, ValidationError("prices must not be negative")
	}
	if input.Quantity <= 0 {
		input.Quantity = 1
	}

	user, err := os.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch customer: %w", err)
	}
	restaurant, err := os.restaurantRepo.GetByID(ctx, input.RestaurantID)
	if err != nil {
		return nil, fmt.Errorf("fetch restaurant: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	order := &types.Order{
		ID:         primitive.NewObjectID().Hex(),
		OrderID:    uuid.NewString(),
		PickupCode: pickupCode(),
		Customer: types.OrderCustomer{
			ID:    user.ID.Hex(),
			Name:  user.Name,
			Email: user.Email,
			Phone: user.Phone,
		},
		Restaurant: types.OrderRestaurant{
			ID:      restaurant.ID.Hex(),
			Name:    restaurant.Name,
			Address: restaurant.Address,
		},
		Items: []types.OrderItem{{
			PackageID:     input.PackageID,
			Name:          input.PackageName,
			Description:   input.Description,
			OriginalPrice: input.OriginalPrice,
			Price:         input.Price,
			Quantity:      input.Quantity,
			Total:         input.Price * float64(input.Quantity),
		}},
		PaymentMethod: input.PaymentMethod,
		PaymentStatus: "pending",
		Status:        types.OrderStatusPending,
		Notes:         input.Notes,
		PickupTime:    input.PickupTime,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	// Run the new document through the normalizer so derived totals follow
	// the exact same rules as every read path.
	order = normalization.NormalizeOrder(normalization.Document(order))

	if err := os.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	if os.publisher != nil {
		if err := os.publisher.Publish(rabbitmq.RouteOrderCreated, order); err != nil {
			os.log.Warn("order.created publish failed", "order_id", order.OrderID, "error", err)
		}
	}
	return order, nil
}

var allowedStatuses = map[string]struct{}{
	types.OrderStatusPending:   {},
	types.OrderStatusConfirmed: {},
	types.OrderStatusReady:     {},
	types.OrderStatusCompleted: {},
	types.OrderStatusCancelled: {},
}

func (os *orderService) UpdateStatus(ctx context.Context, id, status string) (*types.Order, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if _, ok := allowedStatuses[status]; !ok {
		return nil, ValidationError("unknown order status")
	}

	doc, err := os.orderRepo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	order := normalization.NormalizeOrder(doc)

	if os.publisher != nil {
		if err := os.publisher.Publish(rabbitmq.RouteOrderUpdated, order); err != nil {
			os.log.Warn("order.updated publish failed", "order_id", order.OrderID, "error", err)
		}
	}
	if os.notifications != nil {
		if customerID, err := primitive.ObjectIDFromHex(order.Customer.ID); err == nil {
			os.notifications.NotifyOrderUpdate(ctx, customerID, order)
		}
	}
	return order, nil
}

// pickupCode returns the short code the customer reads out at the counter.
func pickupCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
}
