package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kurtarapp/kurtar-backend/internal/services"
)

type OrderHandler struct {
	orderService services.OrderService
}

func NewOrderHandler(orderService services.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

func (oh *OrderHandler) Get(c *gin.Context) {
	order, err := oh.orderService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, order)
}

func (oh *OrderHandler) ListMine(c *gin.Context) {
	orders, err := oh.orderService.ListMine(c.Request.Context())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"orders": orders})
}

func (oh *OrderHandler) ListForRestaurant(c *gin.Context) {
	orders, err := oh.orderService.ListForRestaurant(c.Request.Context(), c.Param("restaurantId"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"orders": orders})
}

func (oh *OrderHandler) Create(c *gin.Context) {
	var input services.CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "validation", err)
		return
	}
	order, err := oh.orderService.Create(c.Request.Context(), input)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (oh *OrderHandler) UpdateStatus(c *gin.Context) {
	var body struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "validation", err)
		return
	}
	order, err := oh.orderService.UpdateStatus(c.Request.Context(), c.Param("id"), body.Status)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, order)
}
