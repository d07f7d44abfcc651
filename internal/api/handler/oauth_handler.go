package handler

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/breathscope/identity-api/internal/api/metrics"
	"github.com/breathscope/identity-api/internal/core/ports"
	"github.com/breathscope/identity-api/internal/infrastructure/oauth"
)

const stateCookie = "oauthstate"

// OAuthProvider is the slice of the provider client the handler needs.
type OAuthProvider interface {
	AuthCodeURL(state string) string
	FetchProfile(ctx context.Context, code string) (ports.ProviderProfile, error)
}

type OAuthHandler struct {
	provider   OAuthProvider
	service    ports.OAuthService
	successURL string
	failureURL string
	log        zerolog.Logger
}

func NewOAuthHandler(provider OAuthProvider, service ports.OAuthService, successURL, failureURL string, log zerolog.Logger) *OAuthHandler {
	return &OAuthHandler{
		provider:   provider,
		service:    service,
		successURL: successURL,
		failureURL: failureURL,
		log:        log,
	}
}

// Login redirects the client to the provider's consent screen.
//
// @Summary      Start the Google OAuth flow
// @Tags         oauth
// @Success      307
// @Router       /auth/google [get]
func (h *OAuthHandler) Login(c echo.Context) error {
	state, err := oauth.GenerateState()
	if err != nil {
		return err
	}

	c.SetCookie(&http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		Expires:  time.Now().Add(10 * time.Minute),
		HttpOnly: true,
	})

	return c.Redirect(http.StatusTemporaryRedirect, h.provider.AuthCodeURL(state))
}

// Callback handles the provider redirect: it validates the CSRF state,
// exchanges the code, reconciles the profile with a local account and sends
// the client to the app deep link carrying the session token. Every failure
// redirects to the fallback route; nothing is retried.
//
// @Summary      Google OAuth callback
// @Tags         oauth
// @Success      307
// @Router       /auth/google/callback [get]
func (h *OAuthHandler) Callback(c echo.Context) error {
	cookie, err := c.Cookie(stateCookie)
	if err != nil || cookie.Value == "" || c.QueryParam("state") != cookie.Value {
		h.log.Warn().Msg("oauth callback with missing or mismatched state")
		metrics.OAuthLoginsTotal.WithLabelValues("failure").Inc()
		return c.Redirect(http.StatusTemporaryRedirect, h.failureURL)
	}

	profile, err := h.provider.FetchProfile(c.Request().Context(), c.QueryParam("code"))
	if err != nil {
		h.log.Error().Err(err).Msg("oauth code exchange failed")
		metrics.OAuthLoginsTotal.WithLabelValues("failure").Inc()
		return c.Redirect(http.StatusTemporaryRedirect, h.failureURL)
	}

	token, user, err := h.service.LinkProfile(c.Request().Context(), profile)
	if err != nil {
		h.log.Error().Err(err).Str("email", profile.Email).Msg("oauth account linkage failed")
		metrics.OAuthLoginsTotal.WithLabelValues("failure").Inc()
		return c.Redirect(http.StatusTemporaryRedirect, h.failureURL)
	}

	metrics.OAuthLoginsTotal.WithLabelValues("success").Inc()

	q := url.Values{}
	q.Set("token", token)
	q.Set("username", user.Username)
	q.Set("profilePicture", user.ProfilePicture)
	return c.Redirect(http.StatusTemporaryRedirect, h.successURL+"?"+q.Encode())
}
