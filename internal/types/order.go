package types

// OrderItem is one surplus package line inside a canonical order.
type OrderItem struct {
	PackageID     string  `bson:"packageId" json:"packageId"`
	Name          string  `bson:"name" json:"name"`
	Description   string  `bson:"description" json:"description"`
	OriginalPrice float64 `bson:"originalPrice" json:"originalPrice"`
	Price         float64 `bson:"price" json:"price"`
	Quantity      int     `bson:"quantity" json:"quantity"`
	Total         float64 `bson:"total" json:"total"`
}

type OrderCustomer struct {
	ID    string `bson:"id" json:"id"`
	Name  string `bson:"name" json:"name"`
	Email string `bson:"email" json:"email"`
	Phone string `bson:"phone" json:"phone"`
}

type OrderRestaurant struct {
	ID      string `bson:"id" json:"id"`
	Name    string `bson:"name" json:"name"`
	Address string `bson:"address" json:"address"`
}

// Order is the canonical order shape. Every read path returns this form and
// only this form; the normalization package folds the historical layouts into
// it. Timestamps are ISO-8601 strings on the wire.
type Order struct {
	ID             string          `bson:"_id,omitempty" json:"_id,omitempty"`
	OrderID        string          `bson:"orderId" json:"orderId"`
	PickupCode     string          `bson:"pickupCode" json:"pickupCode"`
	Customer       OrderCustomer   `bson:"customer" json:"customer"`
	Restaurant     OrderRestaurant `bson:"restaurant" json:"restaurant"`
	Items          []OrderItem     `bson:"items" json:"items"`
	TotalPrice     float64         `bson:"totalPrice" json:"totalPrice"`
	Savings        float64         `bson:"savings" json:"savings"`
	PaymentMethod  string          `bson:"paymentMethod" json:"paymentMethod"`
	PaymentStatus  string          `bson:"paymentStatus" json:"paymentStatus"`
	PaymentDetails map[string]any  `bson:"paymentDetails,omitempty" json:"paymentDetails,omitempty"`
	Status         string          `bson:"status" json:"status"`
	Notes          string          `bson:"notes,omitempty" json:"notes,omitempty"`
	PickupTime     string          `bson:"pickupTime,omitempty" json:"pickupTime,omitempty"`
	PickupDeadline string          `bson:"pickupDeadline,omitempty" json:"pickupDeadline,omitempty"`
	CreatedAt      string          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      string          `bson:"updatedAt" json:"updatedAt"`
}

// Order lifecycle statuses.
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusReady     = "ready"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)
