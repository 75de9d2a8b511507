package instagram

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/startzy/social-connect/connection"
	"github.com/startzy/social-connect/platform"
)

// page is one Facebook page the authenticated identity administers. Each
// page carries its own access token, used for lookups against that page.
type page struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	AccessToken string `json:"access_token"`
}

// discoverBusinessAccount finds the Instagram business/creator account
// linked to one of the user's pages. Pages are checked in listed order and
// the first match wins. A lookup failing for one page (permissions differ
// per page) is logged and skipped, not fatal; only exhausting every page
// without a match fails, with ErrNoLinkedAccount.
func (s *Service) discoverBusinessAccount(ctx context.Context, accessToken string) (igUserID, pageToken string, err error) {
	pages, err := s.listPages(ctx, accessToken)
	if err != nil {
		return "", "", err
	}

	for _, p := range pages {
		igID, err := s.linkedBusinessAccount(ctx, p.ID, p.AccessToken)
		if err != nil {
			slog.Info("page lookup failed, trying next", "page_id", p.ID, "err", err)
			continue
		}
		if igID != "" {
			return igID, p.AccessToken, nil
		}
	}
	return "", "", connection.ErrNoLinkedAccount
}

func (s *Service) listPages(ctx context.Context, accessToken string) ([]page, error) {
	params := url.Values{}
	params.Set("access_token", accessToken)

	resp, err := s.api.Get(ctx, s.cfg.GraphURL+"/me/accounts", params, nil)
	if err != nil {
		return nil, err
	}
	if !resp.OK {
		return nil, fmt.Errorf("listing pages: %s", platform.GraphErrorMessage(resp.Body))
	}

	var out struct {
		Data []page `json:"data"`
	}
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return nil, fmt.Errorf("decoding pages response: %w", err)
	}
	return out.Data, nil
}

// linkedBusinessAccount returns the Instagram business account id linked to
// the page, or "" when the page has none.
func (s *Service) linkedBusinessAccount(ctx context.Context, pageID, pageToken string) (string, error) {
	params := url.Values{}
	params.Set("fields", "instagram_business_account")
	params.Set("access_token", pageToken)

	resp, err := s.api.Get(ctx, s.cfg.GraphURL+"/"+pageID, params, nil)
	if err != nil {
		return "", err
	}
	if !resp.OK {
		return "", fmt.Errorf("page %s lookup: %s", pageID, platform.GraphErrorMessage(resp.Body))
	}

	var out struct {
		InstagramBusinessAccount *struct {
			ID string `json:"id"`
		} `json:"instagram_business_account"`
	}
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return "", fmt.Errorf("decoding page response: %w", err)
	}
	if out.InstagramBusinessAccount == nil {
		return "", nil
	}
	return out.InstagramBusinessAccount.ID, nil
}
