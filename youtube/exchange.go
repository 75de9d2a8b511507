package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/startzy/social-connect/connection"
	"github.com/startzy/social-connect/platform"
)

// errIncompleteTokens means the token endpoint answered 200 but the grant
// lacks an access or refresh token. Stored credentials must be refreshable,
// so an incomplete grant aborts the connection attempt.
var errIncompleteTokens = errors.New("token response missing access or refresh token")

type tokenGrant struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

func (g *tokenGrant) expiresAt(now time.Time) time.Time {
	secs := g.ExpiresIn
	if secs <= 0 {
		secs = 3600
	}
	return now.Add(time.Duration(secs) * time.Second)
}

// exchangeCode trades the authorization code for an access + refresh token
// pair at the Google token endpoint.
func (s *Service) exchangeCode(ctx context.Context, code string) (*tokenGrant, error) {
	form := url.Values{}
	form.Set("client_id", s.cfg.ClientID)
	form.Set("client_secret", s.cfg.ClientSecret)
	form.Set("code", code)
	form.Set("grant_type", "authorization_code")
	form.Set("redirect_uri", s.cfg.RedirectURI)

	resp, err := s.api.PostForm(ctx, s.cfg.TokenURL, form)
	if err != nil {
		return nil, err
	}
	if !resp.OK {
		return nil, fmt.Errorf("%w: %s", connection.ErrExchange, platform.OAuthErrorMessage(resp.Body))
	}

	var grant tokenGrant
	if err := json.Unmarshal(resp.Body, &grant); err != nil {
		return nil, fmt.Errorf("decoding token response: %w", err)
	}
	if grant.AccessToken == "" || grant.RefreshToken == "" {
		return nil, errIncompleteTokens
	}
	return &grant, nil
}

// Refresh mints a new access token from a refresh token. Google may or may
// not rotate the refresh token; an empty RefreshToken in the result means
// "unchanged" and the caller keeps the old one. A remote rejection of the
// refresh token itself is terminal (ErrRefresh): the user must reconnect.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*connection.RefreshResult, error) {
	form := url.Values{}
	form.Set("client_id", s.cfg.ClientID)
	form.Set("client_secret", s.cfg.ClientSecret)
	form.Set("refresh_token", refreshToken)
	form.Set("grant_type", "refresh_token")

	resp, err := s.api.PostForm(ctx, s.cfg.TokenURL, form)
	if err != nil {
		return nil, err
	}
	if !resp.OK {
		return nil, fmt.Errorf("%w: %s", connection.ErrRefresh, platform.OAuthErrorMessage(resp.Body))
	}

	var grant tokenGrant
	if err := json.Unmarshal(resp.Body, &grant); err != nil {
		return nil, fmt.Errorf("decoding refresh response: %w", err)
	}
	if grant.AccessToken == "" {
		return nil, fmt.Errorf("%w: no access token returned", connection.ErrRefresh)
	}

	return &connection.RefreshResult{
		AccessToken:  grant.AccessToken,
		RefreshToken: grant.RefreshToken,
		ExpiresAt:    grant.expiresAt(time.Now().UTC()),
	}, nil
}
