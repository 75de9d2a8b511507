package youtube

import (
	"errors"

	"golang.org/x/oauth2"
)

const (
	defaultAuthURL  = "https://accounts.google.com/o/oauth2/v2/auth"
	defaultTokenURL = "https://oauth2.googleapis.com/token"
	defaultAPIURL   = "https://www.googleapis.com/youtube/v3"
)

var scopes = []string{
	"https://www.googleapis.com/auth/youtube.readonly",
	"https://www.googleapis.com/auth/yt-analytics.readonly",
}

// Config holds the Google OAuth client for the YouTube connection flow.
type Config struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`

	// FrontendURL is where the callback redirects the browser, carrying a
	// success or error query parameter.
	FrontendURL string `toml:"frontend_url"`

	// AuthURL, TokenURL and APIURL default to the Google endpoints;
	// overridable for tests.
	AuthURL  string `toml:"auth_url"`
	TokenURL string `toml:"token_url"`
	APIURL   string `toml:"api_url"`
}

func (c *Config) Validate() error {
	if c.ClientID == "" {
		return errors.New("youtube: client_id is required")
	}
	if c.ClientSecret == "" {
		return errors.New("youtube: client_secret is required")
	}
	if c.RedirectURI == "" {
		return errors.New("youtube: redirect_uri is required")
	}
	if c.FrontendURL == "" {
		return errors.New("youtube: frontend_url is required")
	}
	if c.AuthURL == "" {
		c.AuthURL = defaultAuthURL
	}
	if c.TokenURL == "" {
		c.TokenURL = defaultTokenURL
	}
	if c.APIURL == "" {
		c.APIURL = defaultAPIURL
	}
	return nil
}

// AuthCodeURL builds the Google consent URL. Offline access plus forced
// consent so Google returns a refresh token on every connect, not only the
// first one.
func (c *Config) AuthCodeURL(state string) string {
	oc := &oauth2.Config{
		ClientID:    c.ClientID,
		RedirectURL: c.RedirectURI,
		Scopes:      scopes,
		Endpoint:    oauth2.Endpoint{AuthURL: c.AuthURL, TokenURL: c.TokenURL},
	}
	return oc.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"))
}
