package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

var ErrProviderRejected = errors.New("identity provider rejected the credential")

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
const facebookProfileURL = "https://graph.facebook.com/me"

// GoogleProvider exchanges an authorization code for the account's email.
type GoogleProvider interface {
	ExchangeCode(ctx context.Context, code string) (email string, err error)
}

// FacebookProvider verifies a client-side access token against the Graph API.
type FacebookProvider interface {
	VerifyToken(ctx context.Context, accessToken string) (*FacebookProfile, error)
}

type FacebookProfile struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Gender string `json:"gender"`
}

type GoogleOAuth struct {
	config *oauth2.Config
}

func NewGoogleOAuth(clientID, clientSecret, redirectURL string) *GoogleOAuth {
	return &GoogleOAuth{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
	}
}

func (g *GoogleOAuth) ExchangeCode(ctx context.Context, code string) (string, error) {
	token, err := g.config.Exchange(ctx, code)
	if err != nil {
		return "", ErrProviderRejected
	}

	resp, err := g.config.Client(ctx, token).Get(googleUserInfoURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", ErrProviderRejected
	}

	var info struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return "", err
	}
	if info.Email == "" {
		return "", ErrProviderRejected
	}
	return info.Email, nil
}

type FacebookGraph struct {
	client *http.Client
}

func NewFacebookGraph() *FacebookGraph {
	return &FacebookGraph{client: http.DefaultClient}
}

func (f *FacebookGraph) VerifyToken(ctx context.Context, accessToken string) (*FacebookProfile, error) {
	q := url.Values{}
	q.Set("fields", "id,name,gender")
	q.Set("access_token", accessToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s?%s", facebookProfileURL, q.Encode()), nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ErrProviderRejected
	}

	var profile FacebookProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, err
	}
	if profile.ID == "" {
		return nil, ErrProviderRejected
	}
	return &profile, nil
}
