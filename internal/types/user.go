package types

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PushToken is one registered device token. Tokens from retired providers are
// kept with Active=false so history survives; dispatch filters them out.
type PushToken struct {
	Token      string    `bson:"token" json:"token"`
	Platform   string    `bson:"platform" json:"platform"`
	Active     bool      `bson:"active" json:"active"`
	LastUsedAt time.Time `bson:"lastUsedAt" json:"lastUsedAt"`
}

const (
	PlatformIOS     = "ios"
	PlatformAndroid = "android"
)

type NotificationPreferences struct {
	Push       bool `bson:"push" json:"push"`
	Email      bool `bson:"email" json:"email"`
	Favorites  bool `bson:"favorites" json:"favorites"`
	Proximity  bool `bson:"proximity" json:"proximity"`
	Promotions bool `bson:"promotions" json:"promotions"`
}

// DefaultNotificationPreferences is the opt-out model: everything on at signup.
func DefaultNotificationPreferences() NotificationPreferences {
	return NotificationPreferences{
		Push:       true,
		Email:      true,
		Favorites:  true,
		Proximity:  true,
		Promotions: true,
	}
}

type InAppNotification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title     string             `bson:"title" json:"title"`
	Body      string             `bson:"body" json:"body"`
	Kind      string             `bson:"kind" json:"kind"`
	OrderID   string             `bson:"orderId,omitempty" json:"orderId,omitempty"`
	Read      bool               `bson:"read" json:"read"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// User is the customer profile document. The four collection/struct fields are
// optional in old records and are backfilled by the profile schema guard.
type User struct {
	ID                      primitive.ObjectID      `bson:"_id,omitempty" json:"id"`
	Email                   string                  `bson:"email" json:"email"`
	PasswordHash            string                  `bson:"passwordHash" json:"-"`
	Name                    string                  `bson:"name" json:"name"`
	Phone                   string                  `bson:"phone,omitempty" json:"phone,omitempty"`
	FavoriteRestaurants     []primitive.ObjectID    `bson:"favoriteRestaurants" json:"favoriteRestaurants"`
	PushTokens              []PushToken             `bson:"pushTokens" json:"pushTokens"`
	InAppNotifications      []InAppNotification     `bson:"inAppNotifications" json:"inAppNotifications"`
	NotificationPreferences NotificationPreferences `bson:"notificationPreferences" json:"notificationPreferences"`
	SchemaVersion           int                     `bson:"schemaVersion" json:"-"`
	CreatedAt               time.Time               `bson:"createdAt" json:"createdAt"`
	UpdatedAt               time.Time               `bson:"updatedAt" json:"updatedAt"`
}
