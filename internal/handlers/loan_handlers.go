package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/nbv3/kip-ventory/internal/common"
	"github.com/nbv3/kip-ventory/internal/models"
	"github.com/nbv3/kip-ventory/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// LoanHandlers handles loan returns, conversions, backfills and backfill
// receipt uploads.
type LoanHandlers struct {
	loanService   services.LoanService
	minioService  services.MinioService
	receiptBucket string
}

func NewLoanHandlers(loanService services.LoanService, minioService services.MinioService, receiptBucket string) *LoanHandlers {
	return &LoanHandlers{
		loanService:   loanService,
		minioService:  minioService,
		receiptBucket: receiptBucket,
	}
}

func (h *LoanHandlers) GetLoan(c echo.Context) error {
	loanID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid loan ID")
	}
	loan, err := h.loanService.GetLoan(c.Request().Context(), loanID)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, loan)
}

func (h *LoanHandlers) ListLoans(c echo.Context) error {
	var requestID *uuid.UUID
	if raw := c.QueryParam("request_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid request ID")
		}
		requestID = &parsed
	}
	loans, err := h.loanService.ListLoans(c.Request().Context(), requestID)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"loans": loans})
}

type returnLoanRequest struct {
	Quantity int `json:"quantity"`
}

func (h *LoanHandlers) ReturnLoan(c echo.Context) error {
	loanID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid loan ID")
	}
	var req returnLoanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	loan, err := h.loanService.ReturnLoan(c.Request().Context(), loanID, req.Quantity)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, loan)
}

type convertLoanRequest struct {
	Quantity int `json:"quantity"`
}

func (h *LoanHandlers) ConvertLoan(c echo.Context) error {
	loanID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid loan ID")
	}
	var req convertLoanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	disbursement, err := h.loanService.ConvertLoanToDisbursement(c.Request().Context(), loanID, req.Quantity)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, disbursement)
}

// CreateBackfillRequest accepts a multipart form with a comment and an
// optional receipt file, which is stored in object storage first.
func (h *LoanHandlers) CreateBackfillRequest(c echo.Context) error {
	loanID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid loan ID")
	}

	comment := c.FormValue("comment")
	receiptKey := ""
	if file, err := c.FormFile("receipt"); err == nil {
		src, err := file.Open()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Unreadable receipt upload")
		}
		defer src.Close()

		receiptKey = fmt.Sprintf("receipts/%s/%d-%s", loanID, time.Now().Unix(), file.Filename)
		contentType := file.Header.Get("Content-Type")
		if err := h.minioService.UploadReceipt(c.Request().Context(), h.receiptBucket, receiptKey, src, file.Size, contentType); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Receipt upload failed")
		}
	}

	backfillRequest, err := h.loanService.CreateBackfillRequest(c.Request().Context(), loanID, comment, receiptKey)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, backfillRequest)
}

type resolveBackfillRequest struct {
	Decision string `json:"decision"`
	Comment  string `json:"comment"`
}

func (h *LoanHandlers) ResolveBackfillRequest(c echo.Context) error {
	backfillRequestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid backfill request ID")
	}
	var req resolveBackfillRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	backfillRequest, err := h.loanService.ResolveBackfillRequest(c.Request().Context(), backfillRequestID,
		models.RequestDecision(req.Decision), req.Comment)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, backfillRequest)
}

func (h *LoanHandlers) DeleteBackfillRequest(c echo.Context) error {
	backfillRequestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid backfill request ID")
	}
	if err := h.loanService.DeleteBackfillRequest(c.Request().Context(), backfillRequestID); err != nil {
		return common.SendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *LoanHandlers) ListBackfillRequests(c echo.Context) error {
	loanID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid loan ID")
	}
	backfillRequests, err := h.loanService.ListBackfillRequests(c.Request().Context(), loanID)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"backfill_requests": backfillRequests})
}

func (h *LoanHandlers) ListBackfills(c echo.Context) error {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request ID")
	}
	status := models.BackfillStatus(c.QueryParam("status"))
	backfills, err := h.loanService.ListBackfills(c.Request().Context(), requestID, status)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"backfills": backfills})
}

func (h *LoanHandlers) SatisfyBackfill(c echo.Context) error {
	backfillID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid backfill ID")
	}
	backfill, err := h.loanService.SatisfyBackfill(c.Request().Context(), backfillID)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, backfill)
}

type createReminderRequest struct {
	Subject  string    `json:"subject"`
	Body     string    `json:"body"`
	SendDate time.Time `json:"send_date"`
}

func (h *LoanHandlers) CreateLoanReminder(c echo.Context) error {
	var req createReminderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	reminder := &models.LoanReminder{
		Subject:  req.Subject,
		Body:     req.Body,
		SendDate: req.SendDate,
	}
	if err := h.loanService.CreateLoanReminder(c.Request().Context(), reminder); err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, reminder)
}

func (h *LoanHandlers) ListLoanReminders(c echo.Context) error {
	reminders, err := h.loanService.ListLoanReminders(c.Request().Context())
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"reminders": reminders})
}

func (h *LoanHandlers) DeleteLoanReminder(c echo.Context) error {
	reminderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid reminder ID")
	}
	if err := h.loanService.DeleteLoanReminder(c.Request().Context(), reminderID); err != nil {
		return common.SendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
