package handlers

import (
	"net/http"

	"github.com/nbv3/kip-ventory/internal/common"
	"github.com/nbv3/kip-ventory/internal/models"
	"github.com/nbv3/kip-ventory/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type UserHandlers struct {
	userService   services.UserService
	notifications services.NotificationService
}

func NewUserHandlers(userService services.UserService, notifications services.NotificationService) *UserHandlers {
	return &UserHandlers{userService: userService, notifications: notifications}
}

type createUserRequest struct {
	Username   string `json:"username"`
	Email      string `json:"email"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	IsStaff    bool   `json:"is_staff"`
	Subscribed bool   `json:"subscribed"`
}

func (h *UserHandlers) CreateUser(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	user := &models.User{
		Username:   req.Username,
		Email:      req.Email,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		IsStaff:    req.IsStaff,
		Subscribed: req.Subscribed,
	}
	if err := h.userService.CreateUser(c.Request().Context(), user); err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, user)
}

func (h *UserHandlers) GetUser(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}
	user, err := h.userService.GetUser(c.Request().Context(), userID)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// GetCurrentUser returns the acting user resolved by the JWT middleware.
func (h *UserHandlers) GetCurrentUser(c echo.Context) error {
	user, ok := common.ActingUserFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	return c.JSON(http.StatusOK, user)
}

type listUsersRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

func (h *UserHandlers) ListUsers(c echo.Context) error {
	var req listUsersRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}
	users, err := h.userService.ListUsers(c.Request().Context(), req.Limit, req.Offset)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"users": users})
}

type setSubscribedRequest struct {
	Subscribed bool `json:"subscribed"`
}

func (h *UserHandlers) SetSubscribed(c echo.Context) error {
	var req setSubscribedRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := h.userService.SetSubscribed(c.Request().Context(), req.Subscribed); err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"subscribed": req.Subscribed})
}

type subjectPrefixRequest struct {
	Prefix string `json:"prefix"`
}

func (h *UserHandlers) GetSubjectPrefix(c echo.Context) error {
	prefix := h.notifications.SubjectPrefix(c.Request().Context())
	return c.JSON(http.StatusOK, map[string]interface{}{"prefix": prefix})
}

func (h *UserHandlers) SetSubjectPrefix(c echo.Context) error {
	var req subjectPrefixRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := h.notifications.SetSubjectPrefix(c.Request().Context(), req.Prefix); err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"prefix": h.notifications.SubjectPrefix(c.Request().Context())})
}
