package types

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Rating is a customer's review of a restaurant for a single completed order.
// There is at most one rating per order and at most one photo per rating.
type Rating struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderID      primitive.ObjectID `bson:"orderId" json:"orderId"`
	CustomerID   primitive.ObjectID `bson:"customerId" json:"customerId"`
	RestaurantID primitive.ObjectID `bson:"restaurantId" json:"restaurantId"`
	Value        int                `bson:"rating" json:"rating"`
	Comment      string             `bson:"comment,omitempty" json:"comment,omitempty"`
	Photos       []string           `bson:"photos,omitempty" json:"photos,omitempty"`
	RatingText   string             `bson:"ratingText" json:"ratingText"`
	IsPublic     bool               `bson:"isPublic" json:"isPublic"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// RatingEditWindow is how long the author may still edit a rating.
const RatingEditWindow = 24 * time.Hour

// MaxRatingCommentLen bounds the free-text comment.
const MaxRatingCommentLen = 500

// Editable reports whether the rating is still inside its edit window.
func (r *Rating) Editable(now time.Time) bool {
	return now.Sub(r.CreatedAt) <= RatingEditWindow
}

var ratingTexts = map[int]string{
	1: "awful",
	2: "bad",
	3: "okay",
	4: "good",
	5: "excellent",
}

// RatingTextFor maps an integer score to its display label.
func RatingTextFor(value int) string {
	return ratingTexts[value]
}
