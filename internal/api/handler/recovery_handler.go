package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/breathscope/identity-api/internal/api/metrics"
	"github.com/breathscope/identity-api/internal/core/domain"
	"github.com/breathscope/identity-api/internal/core/ports"
)

type RecoveryHandler struct {
	recovery ports.RecoveryService
}

func NewRecoveryHandler(recovery ports.RecoveryService) *RecoveryHandler {
	return &RecoveryHandler{recovery: recovery}
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type verifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6"`
}

type verifyOTPResponse struct {
	Message    string `json:"message"`
	ResetToken string `json:"resetToken"`
}

type resetPasswordRequest struct {
	ResetToken  string `json:"resetToken" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

// ForgotPassword issues a recovery OTP for the account.
//
// @Summary      Request a password recovery OTP
// @Tags         recovery
// @Accept       json
// @Produce      json
// @Param        body  body      forgotPasswordRequest  true  "Account email"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /forgot-password [post]
func (h *RecoveryHandler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.recovery.RequestOTP(c.Request().Context(), req.Email); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusBadRequest, "user not found with this email")
		}
		return err
	}

	metrics.OTPRequestsTotal.Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "OTP sent to your email"})
}

// VerifyOTP checks the recovery code and returns a reset token.
//
// @Summary      Verify a recovery OTP
// @Tags         recovery
// @Accept       json
// @Produce      json
// @Param        body  body      verifyOTPRequest  true  "Email and OTP"
// @Success      200   {object}  verifyOTPResponse
// @Failure      400   {object}  map[string]string
// @Router       /verify-otp [post]
func (h *RecoveryHandler) VerifyOTP(c echo.Context) error {
	var req verifyOTPRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	resetToken, err := h.recovery.VerifyOTP(c.Request().Context(), req.Email, req.OTP)
	if err != nil {
		metrics.OTPVerifiesTotal.WithLabelValues(otpResult(err)).Inc()
		return err
	}

	metrics.OTPVerifiesTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, verifyOTPResponse{
		Message:    "OTP verified",
		ResetToken: resetToken,
	})
}

func otpResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrOTPMismatch):
		return "mismatch"
	case errors.Is(err, domain.ErrOTPExpired):
		return "expired"
	case errors.Is(err, domain.ErrOTPNotRequested):
		return "missing"
	default:
		return "error"
	}
}

// ResetPassword consumes a reset token and sets the new password.
//
// @Summary      Reset the account password
// @Tags         recovery
// @Accept       json
// @Produce      json
// @Param        body  body      resetPasswordRequest  true  "Reset token and new password"
// @Success      200   {object}  messageResponse
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /reset-password [post]
func (h *RecoveryHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.recovery.ResetPassword(c.Request().Context(), req.ResetToken, req.NewPassword); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "Password updated successfully"})
}
