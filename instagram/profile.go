package instagram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/startzy/social-connect/connection"
	"github.com/startzy/social-connect/platform"
)

// fetchProfile reads the business account's profile fields. Uses the page
// access token: the business account is reachable through the page that
// links it, not the user token.
func (s *Service) fetchProfile(ctx context.Context, igUserID, pageToken string) (*connection.Profile, error) {
	params := url.Values{}
	params.Set("fields", "username,followers_count,media_count,profile_picture_url")
	params.Set("access_token", pageToken)

	resp, err := s.api.Get(ctx, s.cfg.GraphURL+"/"+igUserID, params, nil)
	if err != nil {
		return nil, err
	}
	if !resp.OK {
		return nil, fmt.Errorf("fetching profile: %s", platform.GraphErrorMessage(resp.Body))
	}

	var out struct {
		ID                string `json:"id"`
		Username          string `json:"username"`
		FollowersCount    int64  `json:"followers_count"`
		MediaCount        int64  `json:"media_count"`
		ProfilePictureURL string `json:"profile_picture_url"`
	}
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return nil, fmt.Errorf("decoding profile response: %w", err)
	}
	if out.ID == "" {
		out.ID = igUserID
	}

	return &connection.Profile{
		ID:           out.ID,
		DisplayName:  out.Username,
		Followers:    out.FollowersCount,
		MediaCount:   out.MediaCount,
		AvatarURL:    out.ProfilePictureURL,
		LastSyncedAt: time.Now().UTC(),
	}, nil
}
