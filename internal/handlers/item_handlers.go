package handlers

import (
	"net/http"
	"strings"

	"github.com/nbv3/kip-ventory/internal/common"
	"github.com/nbv3/kip-ventory/internal/models"
	"github.com/nbv3/kip-ventory/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ItemHandlers handles catalog HTTP requests: items, tags, custom fields,
// assets and stock transactions.
type ItemHandlers struct {
	catalogService services.CatalogService
}

func NewItemHandlers(catalogService services.CatalogService) *ItemHandlers {
	return &ItemHandlers{catalogService: catalogService}
}

type createItemRequest struct {
	Name         string   `json:"name"`
	ModelNumber  string   `json:"model_number"`
	Description  string   `json:"description"`
	Quantity     int      `json:"quantity"`
	MinimumStock int      `json:"minimum_stock"`
	HasAssets    bool     `json:"has_assets"`
	Tags         []string `json:"tags"`
}

func (h *ItemHandlers) CreateItem(c echo.Context) error {
	var req createItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	item := &models.Item{
		Name:         req.Name,
		ModelNumber:  req.ModelNumber,
		Description:  req.Description,
		Quantity:     req.Quantity,
		MinimumStock: req.MinimumStock,
		HasAssets:    req.HasAssets,
		Tags:         req.Tags,
	}
	if err := h.catalogService.CreateItem(c.Request().Context(), item); err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, item)
}

func (h *ItemHandlers) GetItem(c echo.Context) error {
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid item ID")
	}
	item, err := h.catalogService.GetItem(c.Request().Context(), itemID)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

type listItemsRequest struct {
	Query       string `query:"search"`
	IncludeTags string `query:"tags"`
	ExcludeTags string `query:"exclude_tags"`
	LowStock    bool   `query:"low_stock"`
	Limit       int    `query:"limit"`
	Offset      int    `query:"offset"`
}

func (h *ItemHandlers) ListItems(c echo.Context) error {
	var req listItemsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}

	filter := &models.ItemSearchFilter{
		Query:       req.Query,
		IncludeTags: splitTags(req.IncludeTags),
		ExcludeTags: splitTags(req.ExcludeTags),
		LowStock:    req.LowStock,
		Limit:       req.Limit,
		Offset:      req.Offset,
	}
	items, err := h.catalogService.SearchItems(c.Request().Context(), filter)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"items":  items,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})
}

func (h *ItemHandlers) UpdateItem(c echo.Context) error {
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid item ID")
	}

	var req createItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	item := &models.Item{
		ID:           itemID,
		Name:         req.Name,
		ModelNumber:  req.ModelNumber,
		Description:  req.Description,
		MinimumStock: req.MinimumStock,
		Tags:         req.Tags,
	}
	if err := h.catalogService.UpdateItem(c.Request().Context(), item); err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *ItemHandlers) DeleteItem(c echo.Context) error {
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid item ID")
	}
	if err := h.catalogService.DeleteItem(c.Request().Context(), itemID); err != nil {
		return common.SendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ItemHandlers) ListTags(c echo.Context) error {
	tags, err := h.catalogService.ListTags(c.Request().Context())
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"tags": tags})
}

func (h *ItemHandlers) CreateCustomField(c echo.Context) error {
	var field models.CustomField
	if err := c.Bind(&field); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := h.catalogService.CreateCustomField(c.Request().Context(), &field); err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, &field)
}

func (h *ItemHandlers) ListCustomFields(c echo.Context) error {
	fields, err := h.catalogService.ListCustomFields(c.Request().Context())
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"fields": fields})
}

func (h *ItemHandlers) DeleteCustomField(c echo.Context) error {
	if err := h.catalogService.DeleteCustomField(c.Request().Context(), c.Param("name")); err != nil {
		return common.SendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type setFieldValueRequest struct {
	Value string `json:"value"`
}

func (h *ItemHandlers) SetFieldValue(c echo.Context) error {
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid item ID")
	}
	var req setFieldValueRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	value := &models.CustomFieldValue{
		ItemID: itemID,
		Field:  c.Param("name"),
		Value:  req.Value,
	}
	if err := h.catalogService.SetFieldValue(c.Request().Context(), value); err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, value)
}

func (h *ItemHandlers) GetFieldValues(c echo.Context) error {
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid item ID")
	}
	values, err := h.catalogService.GetFieldValues(c.Request().Context(), itemID)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"values": values})
}

type createAssetRequest struct {
	Tag string `json:"tag"`
}

func (h *ItemHandlers) CreateAsset(c echo.Context) error {
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid item ID")
	}
	var req createAssetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	asset := &models.Asset{ItemID: itemID, Tag: req.Tag}
	if err := h.catalogService.CreateAsset(c.Request().Context(), asset); err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, asset)
}

func (h *ItemHandlers) ListAssets(c echo.Context) error {
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid item ID")
	}
	status := models.AssetStatus(c.QueryParam("status"))
	assets, err := h.catalogService.ListAssets(c.Request().Context(), itemID, status)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"assets": assets})
}

func (h *ItemHandlers) DeleteAsset(c echo.Context) error {
	assetID, err := uuid.Parse(c.Param("asset_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid asset ID")
	}
	if err := h.catalogService.DeleteAsset(c.Request().Context(), assetID); err != nil {
		return common.SendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ItemHandlers) GetAssetByTag(c echo.Context) error {
	asset, err := h.catalogService.GetAssetByTag(c.Request().Context(), c.Param("tag"))
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, asset)
}

type createTransactionRequest struct {
	ItemID   uuid.UUID `json:"item_id"`
	Category string    `json:"category"`
	Quantity int       `json:"quantity"`
	Comment  string    `json:"comment"`
}

func (h *ItemHandlers) CreateTransaction(c echo.Context) error {
	var req createTransactionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	transaction := &models.Transaction{
		ItemID:   req.ItemID,
		Category: models.TransactionCategory(req.Category),
		Quantity: req.Quantity,
		Comment:  req.Comment,
	}
	if err := h.catalogService.CreateTransaction(c.Request().Context(), transaction); err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, transaction)
}

type listTransactionsRequest struct {
	ItemID string `query:"item_id"`
	Limit  int    `query:"limit"`
	Offset int    `query:"offset"`
}

func (h *ItemHandlers) ListTransactions(c echo.Context) error {
	var req listTransactionsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}

	var itemID *uuid.UUID
	if req.ItemID != "" {
		parsed, err := uuid.Parse(req.ItemID)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid item ID")
		}
		itemID = &parsed
	}
	transactions, err := h.catalogService.ListTransactions(c.Request().Context(), itemID, req.Limit, req.Offset)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"transactions": transactions})
}

func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
