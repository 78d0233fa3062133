package handlers

import (
	"net/http"
	"time"

	"github.com/nbv3/kip-ventory/internal/common"
	"github.com/nbv3/kip-ventory/internal/models"
	"github.com/nbv3/kip-ventory/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type CartHandlers struct {
	cartService services.CartService
}

func NewCartHandlers(cartService services.CartService) *CartHandlers {
	return &CartHandlers{cartService: cartService}
}

type addToCartRequest struct {
	ItemID      uuid.UUID  `json:"item_id"`
	Quantity    int        `json:"quantity"`
	RequestType string     `json:"request_type"`
	DueDate     *time.Time `json:"due_date"`
}

func (h *CartHandlers) AddToCart(c echo.Context) error {
	var req addToCartRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	cartItem := &models.CartItem{
		ItemID:      req.ItemID,
		Quantity:    req.Quantity,
		RequestType: models.RequestType(req.RequestType),
		DueDate:     req.DueDate,
	}
	if err := h.cartService.AddToCart(c.Request().Context(), cartItem); err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, cartItem)
}

func (h *CartHandlers) GetCart(c echo.Context) error {
	cartItems, err := h.cartService.GetCart(c.Request().Context())
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"cart": cartItems})
}

func (h *CartHandlers) RemoveFromCart(c echo.Context) error {
	itemID, err := uuid.Parse(c.Param("item_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid item ID")
	}
	if err := h.cartService.RemoveFromCart(c.Request().Context(), itemID); err != nil {
		return common.SendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type submitCartRequest struct {
	Comment string `json:"comment"`
}

func (h *CartHandlers) SubmitCart(c echo.Context) error {
	var req submitCartRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	request, err := h.cartService.SubmitCart(c.Request().Context(), req.Comment)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, request)
}
