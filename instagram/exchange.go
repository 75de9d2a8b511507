package instagram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/startzy/social-connect/connection"
	"github.com/startzy/social-connect/platform"
)

// exchangeCode trades a one-time authorization code for a short-lived user
// access token. A rejection (expired code, redirect mismatch) is terminal
// for the callback and surfaces as ErrExchange.
func (s *Service) exchangeCode(ctx context.Context, code string) (string, error) {
	params := url.Values{}
	params.Set("client_id", s.cfg.AppID)
	params.Set("client_secret", s.cfg.AppSecret)
	params.Set("redirect_uri", s.cfg.RedirectURI)
	params.Set("code", code)

	resp, err := s.api.Get(ctx, s.cfg.GraphURL+"/oauth/access_token", params, nil)
	if err != nil {
		return "", err
	}
	if !resp.OK {
		return "", fmt.Errorf("%w: %s", connection.ErrExchange, platform.GraphErrorMessage(resp.Body))
	}
	return accessTokenFrom(resp.Body)
}

// upgradeLongLived exchanges a short-lived token for a long-lived one. A
// short-lived token alone is never stored: it cannot be refreshed later, so
// failure here aborts the whole connection attempt.
func (s *Service) upgradeLongLived(ctx context.Context, shortLived string) (string, error) {
	params := url.Values{}
	params.Set("grant_type", "fb_exchange_token")
	params.Set("client_id", s.cfg.AppID)
	params.Set("client_secret", s.cfg.AppSecret)
	params.Set("fb_exchange_token", shortLived)

	resp, err := s.api.Get(ctx, s.cfg.GraphURL+"/oauth/access_token", params, nil)
	if err != nil {
		return "", err
	}
	if !resp.OK {
		return "", fmt.Errorf("%w: %s", connection.ErrExchange, platform.GraphErrorMessage(resp.Body))
	}
	return accessTokenFrom(resp.Body)
}

func accessTokenFrom(body []byte) (string, error) {
	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decoding token response: %w", err)
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("%w: response has no access token", connection.ErrExchange)
	}
	return out.AccessToken, nil
}
