package instagram

import (
	"errors"

	"golang.org/x/oauth2"
)

const (
	defaultGraphURL = "https://graph.facebook.com/v18.0"
	defaultAuthURL  = "https://www.facebook.com/v18.0/dialog/oauth"
)

// Scopes requested during the Facebook login dialog. Page listing and
// engagement read are needed for business account discovery.
var scopes = []string{"instagram_basic", "pages_show_list", "pages_read_engagement"}

// Config holds the Facebook app credentials for the Instagram connection
// flow. Validated once at startup and passed in at construction; nothing
// reads it from ambient state.
type Config struct {
	AppID       string `toml:"app_id"`
	AppSecret   string `toml:"app_secret"`
	RedirectURI string `toml:"redirect_uri"`

	// GraphURL and AuthURL default to the v18.0 Graph API endpoints;
	// overridable for tests.
	GraphURL string `toml:"graph_url"`
	AuthURL  string `toml:"auth_url"`
}

func (c *Config) Validate() error {
	if c.AppID == "" {
		return errors.New("instagram: app_id is required")
	}
	if c.AppSecret == "" {
		return errors.New("instagram: app_secret is required")
	}
	if c.RedirectURI == "" {
		return errors.New("instagram: redirect_uri is required")
	}
	if c.GraphURL == "" {
		c.GraphURL = defaultGraphURL
	}
	if c.AuthURL == "" {
		c.AuthURL = defaultAuthURL
	}
	return nil
}

// AuthCodeURL builds the Facebook login dialog URL carrying the correlation
// state token.
func (c *Config) AuthCodeURL(state string) string {
	oc := &oauth2.Config{
		ClientID:    c.AppID,
		RedirectURL: c.RedirectURI,
		Scopes:      scopes,
		Endpoint:    oauth2.Endpoint{AuthURL: c.AuthURL},
	}
	return oc.AuthCodeURL(state)
}
