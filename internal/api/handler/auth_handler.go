package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/breathscope/identity-api/internal/api/metrics"
	"github.com/breathscope/identity-api/internal/core/domain"
	"github.com/breathscope/identity-api/internal/core/ports"
)

type AuthHandler struct {
	registration ports.RegistrationService
	auth         ports.AuthService
}

func NewAuthHandler(registration ports.RegistrationService, auth ports.AuthService) *AuthHandler {
	return &AuthHandler{registration: registration, auth: auth}
}

type signupRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"omitempty,oneof=user admin"`
}

type signupResponse struct {
	Message string     `json:"message"`
	User    publicUser `json:"user"`
}

// publicUser is the subset of the account safe to return from signup.
type publicUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Signup creates a new account and triggers the verification email.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signupRequest  true  "Registration details"
// @Success      201   {object}  signupResponse
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.registration.Register(c.Request().Context(), ports.RegistrationInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     domain.Role(req.Role),
	})
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues(registrationResult(err)).Inc()
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues("created").Inc()
	return c.JSON(http.StatusCreated, signupResponse{
		Message: "User created successfully. Verification email sent.",
		User: publicUser{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
			Role:     string(user.Role),
		},
	})
}

func registrationResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidEmail),
		errors.Is(err, domain.ErrInvalidUsername),
		errors.Is(err, domain.ErrInvalidPassword),
		errors.Is(err, domain.ErrInvalidRole),
		errors.Is(err, domain.ErrEmailRegistered),
		errors.Is(err, domain.ErrUsernameTaken):
		return "rejected"
	default:
		return "error"
	}
}

// Verify consumes an email verification token.
//
// @Summary      Verify an email address
// @Tags         auth
// @Produce      json
// @Param        token  path      string  true  "Verification token"
// @Success      200    {object}  messageResponse
// @Failure      400    {object}  map[string]string
// @Failure      404    {object}  map[string]string
// @Router       /verify/{token} [get]
func (h *AuthHandler) Verify(c echo.Context) error {
	token := c.Param("token")

	err := h.registration.VerifyEmail(c.Request().Context(), token)
	if err != nil {
		// Token failures on this endpoint are a 400 for the browser link,
		// not the 401 a bearer check would produce.
		switch {
		case errors.Is(err, domain.ErrTokenInvalid),
			errors.Is(err, domain.ErrTokenExpired),
			errors.Is(err, domain.ErrTokenPurpose):
			metrics.VerificationsTotal.WithLabelValues("rejected").Inc()
			return echo.NewHTTPError(http.StatusBadRequest, "invalid or expired token")
		case errors.Is(err, domain.ErrAlreadyVerified):
			metrics.VerificationsTotal.WithLabelValues("rejected").Inc()
		case errors.Is(err, domain.ErrUserNotFound):
			metrics.VerificationsTotal.WithLabelValues("rejected").Inc()
		default:
			metrics.VerificationsTotal.WithLabelValues("error").Inc()
		}
		return err
	}

	metrics.VerificationsTotal.WithLabelValues("verified").Inc()
	return c.JSON(http.StatusOK, messageResponse{
		Message: "Email successfully verified. You can now log in.",
	})
}

// Login authenticates credentials and returns a session token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, user, err := h.auth.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, loginResponse{Token: token, User: user})
}
