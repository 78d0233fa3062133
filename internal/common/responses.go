package common

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
)

// ErrorResponse is the standardized error payload.
type ErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func errorJSON(c echo.Context, status int, code, message string) error {
	var resp ErrorResponse
	resp.Error.Code = code
	resp.Error.Message = message
	return c.JSON(status, &resp)
}

// SendError maps an engine error onto an HTTP response. Unrecognized errors
// become opaque 500s so internal detail never leaks to the client.
func SendError(c echo.Context, err error) error {
	var (
		notFound      *NotFoundError
		permission    *PermissionError
		invalidState  *InvalidStateError
		insufficient  *InsufficientStockError
		overReturn    *OverReturnError
		invalidQty    *InvalidQuantityError
		emptyCart     *EmptyCartError
		validation    *ValidationError
		fulfillment   *FulfillmentError
	)
	switch {
	case errors.As(err, &notFound):
		return errorJSON(c, http.StatusNotFound, "NOT_FOUND", notFound.Error())
	case errors.As(err, &permission):
		return errorJSON(c, http.StatusForbidden, "PERMISSION_DENIED", permission.Error())
	case errors.As(err, &invalidState):
		return errorJSON(c, http.StatusConflict, "INVALID_STATE", invalidState.Error())
	case errors.As(err, &insufficient):
		return errorJSON(c, http.StatusConflict, "INSUFFICIENT_STOCK", insufficient.Error())
	case errors.As(err, &overReturn):
		return errorJSON(c, http.StatusBadRequest, "OVER_RETURN", overReturn.Error())
	case errors.As(err, &invalidQty):
		return errorJSON(c, http.StatusBadRequest, "INVALID_QUANTITY", invalidQty.Error())
	case errors.As(err, &emptyCart):
		return errorJSON(c, http.StatusBadRequest, "EMPTY_CART", emptyCart.Error())
	case errors.As(err, &validation):
		return errorJSON(c, http.StatusBadRequest, "VALIDATION_ERROR", validation.Error())
	case errors.As(err, &fulfillment):
		return errorJSON(c, http.StatusConflict, "FULFILLMENT_FAILED", fulfillment.Error())
	case errors.Is(err, pgx.ErrNoRows):
		return errorJSON(c, http.StatusNotFound, "NOT_FOUND", "record not found")
	default:
		return errorJSON(c, http.StatusInternalServerError, "SERVER_ERROR", "internal server error")
	}
}
