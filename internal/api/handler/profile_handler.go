package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/breathscope/identity-api/internal/core/domain"
	"github.com/breathscope/identity-api/internal/core/ports"
)

type ProfileHandler struct {
	profile ports.ProfileService
}

func NewProfileHandler(profile ports.ProfileService) *ProfileHandler {
	return &ProfileHandler{profile: profile}
}

// currentUserID extracts the user id injected by the Auth middleware.
func currentUserID(c echo.Context) (string, error) {
	id, _ := c.Get("user_id").(string)
	if id == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return id, nil
}

type updateProfileRequest struct {
	CurrentEmail string `json:"currentEmail" validate:"required,email"`
	NewEmail     string `json:"newEmail" validate:"required,email"`
	Username     string `json:"username" validate:"required"`
	Phone        string `json:"phone"`
}

type changePasswordRequest struct {
	Username        string `json:"username" validate:"required"`
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required"`
}

type deleteAccountRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Me returns the authenticated user's record.
//
// @Summary      Current user
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.User
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /me [get]
func (h *ProfileHandler) Me(c echo.Context) error {
	id, err := currentUserID(c)
	if err != nil {
		return err
	}

	user, err := h.profile.Me(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateProfile changes the account's email, username and phone.
//
// @Summary      Update profile
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  messageResponse
// @Failure      400  {object}  map[string]string
// @Router       /users [put]
func (h *ProfileHandler) UpdateProfile(c echo.Context) error {
	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	err := h.profile.UpdateProfile(c.Request().Context(), req.CurrentEmail, ports.ProfileUpdate{
		Email:    req.NewEmail,
		Username: req.Username,
		Phone:    req.Phone,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Profile updated successfully"})
}

// ChangePassword replaces the password after re-proving the current one.
//
// @Summary      Change password
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  map[string]string
// @Router       /change-password [put]
func (h *ProfileHandler) ChangePassword(c echo.Context) error {
	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	err := h.profile.ChangePassword(c.Request().Context(), req.Username, req.CurrentPassword, req.NewPassword)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Password changed successfully"})
}

// DeleteAccount removes the account after verifying the password.
//
// @Summary      Delete account
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  map[string]string
// @Router       /delete-account [delete]
func (h *ProfileHandler) DeleteAccount(c echo.Context) error {
	var req deleteAccountRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.profile.DeleteAccount(c.Request().Context(), req.Username, req.Password); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Account deleted successfully"})
}

// ListUsers returns every account. Admin only.
//
// @Summary      List users
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.User
// @Failure      403  {object}  map[string]string
// @Router       /users [get]
func (h *ProfileHandler) ListUsers(c echo.Context) error {
	users, err := h.profile.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	if users == nil {
		users = []*domain.User{}
	}
	return c.JSON(http.StatusOK, users)
}

// SignupsOverTime returns daily signup counts. Admin only.
//
// @Summary      Signup analytics
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  ports.SignupBucket
// @Failure      403  {object}  map[string]string
// @Router       /user-signups-over-time [get]
func (h *ProfileHandler) SignupsOverTime(c echo.Context) error {
	buckets, err := h.profile.SignupsOverTime(c.Request().Context())
	if err != nil {
		return err
	}
	if buckets == nil {
		buckets = []ports.SignupBucket{}
	}
	return c.JSON(http.StatusOK, buckets)
}
