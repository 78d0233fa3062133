package handlers

import (
	"net/http"

	"github.com/nbv3/kip-ventory/internal/common"
	"github.com/nbv3/kip-ventory/internal/models"
	"github.com/nbv3/kip-ventory/internal/repositories"
	"github.com/nbv3/kip-ventory/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type RequestHandlers struct {
	requestService services.RequestService
}

func NewRequestHandlers(requestService services.RequestService) *RequestHandlers {
	return &RequestHandlers{requestService: requestService}
}

func (h *RequestHandlers) GetRequest(c echo.Context) error {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request ID")
	}
	request, err := h.requestService.GetRequest(c.Request().Context(), requestID)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, request)
}

type listRequestsRequest struct {
	Status string `query:"status"`
	Limit  int    `query:"limit"`
	Offset int    `query:"offset"`
}

func (h *RequestHandlers) ListRequests(c echo.Context) error {
	var req listRequestsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}

	filter := &repositories.RequestSearchFilter{
		Status: models.RequestStatus(req.Status),
		Limit:  req.Limit,
		Offset: req.Offset,
	}
	requests, err := h.requestService.ListRequests(c.Request().Context(), filter)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"requests": requests})
}

type resolveRequestRequest struct {
	Decision string `json:"decision"`
	Comment  string `json:"comment"`
}

func (h *RequestHandlers) ResolveRequest(c echo.Context) error {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request ID")
	}
	var req resolveRequestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	request, err := h.requestService.ResolveRequest(c.Request().Context(), requestID,
		models.RequestDecision(req.Decision), req.Comment)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, request)
}

func (h *RequestHandlers) DeleteRequest(c echo.Context) error {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request ID")
	}
	if err := h.requestService.DeleteRequest(c.Request().Context(), requestID); err != nil {
		return common.SendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type disburseLine struct {
	ItemID   uuid.UUID `json:"item_id"`
	Quantity int       `json:"quantity"`
}

type directDisburseRequest struct {
	UserID  uuid.UUID      `json:"user_id"`
	Items   []disburseLine `json:"items"`
	Comment string         `json:"comment"`
}

// DirectDisburse lets an administrator hand stock to a user without the
// cart workflow; the resulting request is born approved.
func (h *RequestHandlers) DirectDisburse(c echo.Context) error {
	var req directDisburseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	lines := make([]*models.RequestedItem, 0, len(req.Items))
	for _, line := range req.Items {
		lines = append(lines, &models.RequestedItem{
			ItemID:   line.ItemID,
			Quantity: line.Quantity,
		})
	}
	request, err := h.requestService.DirectDisburse(c.Request().Context(), req.UserID, lines, req.Comment)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, request)
}
