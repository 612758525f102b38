package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kurtarapp/kurtar-backend/internal/services"
	"github.com/kurtarapp/kurtar-backend/internal/types"
)

type UserHandler struct {
	profileService services.ProfileService
}

func NewUserHandler(profileService services.ProfileService) *UserHandler {
	return &UserHandler{profileService: profileService}
}

func (uh *UserHandler) GetMe(c *gin.Context) {
	me, err := uh.profileService.GetMe(c.Request.Context())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"me": me})
}

func restaurantIDParam(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("restaurantId"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "validation", err)
		return primitive.NilObjectID, false
	}
	return id, true
}

func (uh *UserHandler) AddFavorite(c *gin.Context) {
	id, ok := restaurantIDParam(c)
	if !ok {
		return
	}
	if err := uh.profileService.AddFavorite(c.Request.Context(), id); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"added": id.Hex()})
}

func (uh *UserHandler) RemoveFavorite(c *gin.Context) {
	id, ok := restaurantIDParam(c)
	if !ok {
		return
	}
	if err := uh.profileService.RemoveFavorite(c.Request.Context(), id); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"removed": id.Hex()})
}

func (uh *UserHandler) RegisterPushToken(c *gin.Context) {
	var body struct {
		Token    string `json:"token"`
		Platform string `json:"platform"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "validation", err)
		return
	}
	if err := uh.profileService.RegisterPushToken(c.Request.Context(), body.Token, body.Platform); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"registered": true})
}

func (uh *UserHandler) SetNotificationPrefs(c *gin.Context) {
	var prefs types.NotificationPreferences
	if err := c.ShouldBindJSON(&prefs); err != nil {
		RespondError(c, http.StatusBadRequest, "validation", err)
		return
	}
	if err := uh.profileService.SetNotificationPrefs(c.Request.Context(), prefs); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"notificationPreferences": prefs})
}
