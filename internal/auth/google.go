package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// GoogleUserInfoURL returns the profile of the signed-in Google user.
const GoogleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

// ErrEmailNotVerified is returned for Google accounts with an unverified email.
var ErrEmailNotVerified = errors.New("google account email is not verified")

// GoogleProfile is the part of the Google user info the app uses.
type GoogleProfile struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
}

// Google runs the OAuth2 authorization code flow against Google.
type Google struct {
	Config      *oauth2.Config
	UserInfoURL string
}

// NewGoogle returns nil when the client ID or secret is empty.
func NewGoogle(clientID, clientSecret, redirectURL string) *Google {
	if clientID == "" || clientSecret == "" {
		return nil
	}
	return &Google{
		Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     google.Endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
		UserInfoURL: GoogleUserInfoURL,
	}
}

// NewState returns a random value for the OAuth2 state parameter.
func NewState() string {
	return uuid.NewString()
}

// AuthCodeURL returns the Google consent page URL.
func (g *Google) AuthCodeURL(state string) string {
	return g.Config.AuthCodeURL(state, oauth2.AccessTypeOnline, oauth2.SetAuthURLParam("prompt", "select_account"))
}

// Exchange trades an authorization code for the user's verified profile.
func (g *Google) Exchange(ctx context.Context, code string) (*GoogleProfile, error) {
	tok, err := g.Config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchanging code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.UserInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building userinfo request: %w", err)
	}
	resp, err := g.Config.Client(ctx, tok).Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching userinfo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching userinfo: status %d", resp.StatusCode)
	}

	var profile GoogleProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("decoding userinfo: %w", err)
	}
	if !profile.EmailVerified {
		return nil, ErrEmailNotVerified
	}
	return &profile, nil
}
