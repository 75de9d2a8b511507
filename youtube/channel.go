package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/startzy/social-connect/connection"
)

var errNoChannel = errors.New("no YouTube channel found for this account")

// fetchChannel reads the authenticated user's channel statistics and
// snippet, producing the profile snapshot to cache.
func (s *Service) fetchChannel(ctx context.Context, accessToken string) (*connection.Profile, error) {
	params := url.Values{}
	params.Set("part", "statistics,snippet")
	params.Set("mine", "true")

	headers := http.Header{}
	headers.Set("Authorization", "Bearer "+accessToken)

	resp, err := s.api.Get(ctx, s.cfg.APIURL+"/channels", params, headers)
	if err != nil {
		return nil, err
	}
	if !resp.OK {
		return nil, fmt.Errorf("channel request failed with status %d", resp.Status)
	}

	var out struct {
		Items []struct {
			ID      string `json:"id"`
			Snippet struct {
				Title      string `json:"title"`
				Thumbnails struct {
					Default struct {
						URL string `json:"url"`
					} `json:"default"`
				} `json:"thumbnails"`
			} `json:"snippet"`
			Statistics struct {
				SubscriberCount string `json:"subscriberCount"`
				ViewCount       string `json:"viewCount"`
				VideoCount      string `json:"videoCount"`
			} `json:"statistics"`
		} `json:"items"`
	}
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return nil, fmt.Errorf("decoding channel response: %w", err)
	}
	if len(out.Items) == 0 {
		return nil, errNoChannel
	}

	ch := out.Items[0]
	return &connection.Profile{
		ID:           ch.ID,
		DisplayName:  ch.Snippet.Title,
		Followers:    parseCount(ch.Statistics.SubscriberCount),
		MediaCount:   parseCount(ch.Statistics.VideoCount),
		Views:        parseCount(ch.Statistics.ViewCount),
		AvatarURL:    ch.Snippet.Thumbnails.Default.URL,
		LastSyncedAt: time.Now().UTC(),
	}, nil
}

// parseCount tolerates the YouTube API reporting counters as strings;
// hidden counters come back as 0.
func parseCount(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
