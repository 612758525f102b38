package types

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RatingAggregate is the derived rating summary stored on the restaurant.
// It is always recomputed from the full public rating set, never incremented.
type RatingAggregate struct {
	Average      float64 `bson:"rating" json:"rating"`
	Count        int     `bson:"ratingCount" json:"ratingCount"`
	Distribution [5]int  `bson:"ratingDistribution" json:"ratingDistribution"`
}

// Restaurant is a seller of surplus packages.
type Restaurant struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name               string             `bson:"name" json:"name"`
	Address            string             `bson:"address" json:"address"`
	Phone              string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Rating             float64            `bson:"rating" json:"rating"`
	RatingCount        int                `bson:"ratingCount" json:"ratingCount"`
	RatingDistribution [5]int             `bson:"ratingDistribution" json:"ratingDistribution"`
	CreatedAt          time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Aggregate returns the restaurant's stored rating summary.
func (r *Restaurant) Aggregate() RatingAggregate {
	return RatingAggregate{
		Average:      r.Rating,
		Count:        r.RatingCount,
		Distribution: r.RatingDistribution,
	}
}
