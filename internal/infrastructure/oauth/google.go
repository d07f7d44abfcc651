package oauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/breathscope/identity-api/internal/core/ports"
)

const userInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// GoogleProvider wraps the Google OAuth2 redirect/exchange flow and turns the
// userinfo response into a provider profile.
type GoogleProvider struct {
	config oauth2.Config
}

func NewGoogleProvider(clientID, clientSecret, callbackURL string) *GoogleProvider {
	return &GoogleProvider{
		config: oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Endpoint:     google.Endpoint,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
		},
	}
}

// AuthCodeURL returns the provider authorize URL carrying the given CSRF state.
func (g *GoogleProvider) AuthCodeURL(state string) string {
	return g.config.AuthCodeURL(state)
}

// FetchProfile exchanges the callback code for an access token and fetches the
// user's profile from the userinfo endpoint.
func (g *GoogleProvider) FetchProfile(ctx context.Context, code string) (ports.ProviderProfile, error) {
	token, err := g.config.Exchange(ctx, code)
	if err != nil {
		return ports.ProviderProfile{}, fmt.Errorf("code exchange: %w", err)
	}

	resp, err := g.config.Client(ctx, token).Get(userInfoURL)
	if err != nil {
		return ports.ProviderProfile{}, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return ports.ProviderProfile{}, fmt.Errorf("fetch userinfo: status %d: %s", resp.StatusCode, body)
	}

	var info struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return ports.ProviderProfile{}, fmt.Errorf("decode userinfo: %w", err)
	}

	return ports.ProviderProfile{
		ProviderID:  info.ID,
		Email:       info.Email,
		DisplayName: info.Name,
		PhotoURL:    info.Picture,
	}, nil
}

// GenerateState returns a random CSRF state value for the authorize redirect.
func GenerateState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate oauth state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
