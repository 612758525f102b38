package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kurtarapp/kurtar-backend/internal/services"
)

type RatingHandler struct {
	ratingService services.RatingService
}

func NewRatingHandler(ratingService services.RatingService) *RatingHandler {
	return &RatingHandler{ratingService: ratingService}
}

func (rh *RatingHandler) Create(c *gin.Context) {
	var input services.CreateRatingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "validation", err)
		return
	}
	rating, err := rh.ratingService.Create(c.Request.Context(), input)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rating)
}

func (rh *RatingHandler) Update(c *gin.Context) {
	ratingID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "validation", err)
		return
	}
	var input services.UpdateRatingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "validation", err)
		return
	}
	rating, err := rh.ratingService.Update(c.Request.Context(), ratingID, input)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, rating)
}

func (rh *RatingHandler) RestaurantAggregate(c *gin.Context) {
	restaurantID, err := primitive.ObjectIDFromHex(c.Param("restaurantId"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "validation", err)
		return
	}
	agg, err := rh.ratingService.RestaurantAggregate(c.Request.Context(), restaurantID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, agg)
}
