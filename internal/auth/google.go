package auth

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	googleAuthURL     = "https://accounts.google.com/o/oauth2/v2/auth"
	googleTokenURL    = "https://oauth2.googleapis.com/token"
	googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"
)

// GoogleProfile is the subset of the userinfo answer the app relies on.
type GoogleProfile struct {
	Subject       string `json:"sub"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Picture       string `json:"picture"`
}

type GoogleClient struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	AuthURL     string
	TokenURL    string
	UserInfoURL string

	http *resty.Client
}

func NewGoogleClient(clientID, clientSecret, redirectURL string) *GoogleClient {
	return &GoogleClient{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		AuthURL:      googleAuthURL,
		TokenURL:     googleTokenURL,
		UserInfoURL:  googleUserInfoURL,
		http:         resty.New().SetTimeout(10 * time.Second),
	}
}

// ConsentURL is where the browser is sent to sign in.
func (g *GoogleClient) ConsentURL(state string) string {
	q := url.Values{}
	q.Set("client_id", g.ClientID)
	q.Set("redirect_uri", g.RedirectURL)
	q.Set("response_type", "code")
	q.Set("scope", "openid profile")
	q.Set("state", state)
	q.Set("prompt", "select_account")
	return g.AuthURL + "?" + q.Encode()
}

// Exchange trades the authorization code for a token and fetches the profile.
func (g *GoogleClient) Exchange(ctx context.Context, code string) (*GoogleProfile, error) {
	var token struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	var oauthErr struct {
		Error       string `json:"error"`
		Description string `json:"error_description"`
	}

	resp, err := g.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"code":          code,
			"client_id":     g.ClientID,
			"client_secret": g.ClientSecret,
			"redirect_uri":  g.RedirectURL,
			"grant_type":    "authorization_code",
		}).
		SetResult(&token).
		SetError(&oauthErr).
		Post(g.TokenURL)
	if err != nil {
		return nil, fmt.Errorf("échange du code Google: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("échange du code Google: %s %s (%d)", oauthErr.Error, oauthErr.Description, resp.StatusCode())
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("échange du code Google: access_token absent")
	}

	var profile GoogleProfile
	resp, err = g.http.R().
		SetContext(ctx).
		SetAuthToken(token.AccessToken).
		SetResult(&profile).
		Get(g.UserInfoURL)
	if err != nil {
		return nil, fmt.Errorf("profil Google: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("profil Google: statut %d", resp.StatusCode())
	}
	if profile.Subject == "" {
		return nil, fmt.Errorf("profil Google: identifiant absent")
	}
	return &profile, nil
}
