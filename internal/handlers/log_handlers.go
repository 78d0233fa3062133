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

type LogHandlers struct {
	auditLogService services.AuditLogService
}

func NewLogHandlers(auditLogService services.AuditLogService) *LogHandlers {
	return &LogHandlers{auditLogService: auditLogService}
}

type listLogsRequest struct {
	ItemID    string `query:"item_id"`
	RequestID string `query:"request_id"`
	UserID    string `query:"user_id"`
	Category  string `query:"category"`
	From      string `query:"from"`
	To        string `query:"to"`
	Limit     int    `query:"limit"`
	Offset    int    `query:"offset"`
}

func (h *LogHandlers) ListLogs(c echo.Context) error {
	var req listLogsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}

	filter := &models.LogFilter{
		Category: req.Category,
		Limit:    req.Limit,
		Offset:   req.Offset,
	}
	var err error
	if filter.ItemID, err = parseOptionalUUID(req.ItemID); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid item ID")
	}
	if filter.RequestID, err = parseOptionalUUID(req.RequestID); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request ID")
	}
	if filter.UserID, err = parseOptionalUUID(req.UserID); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}
	if filter.From, err = parseOptionalTime(req.From); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid from timestamp")
	}
	if filter.To, err = parseOptionalTime(req.To); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid to timestamp")
	}

	logs, err := h.auditLogService.ListLogs(c.Request().Context(), filter)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"logs": logs})
}

func parseOptionalUUID(raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func parseOptionalTime(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
