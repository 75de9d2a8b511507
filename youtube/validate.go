package youtube

import (
	"context"
	"net/http"
	"net/url"
)

// ValidateToken probes a lightweight authenticated endpoint with the bearer
// token and reports whether the remote accepted it, along with the status
// code. Only transport failure is an error.
func (s *Service) ValidateToken(ctx context.Context, accessToken string) (bool, int, error) {
	params := url.Values{}
	params.Set("part", "id")
	params.Set("mine", "true")

	headers := http.Header{}
	headers.Set("Authorization", "Bearer "+accessToken)

	resp, err := s.api.Get(ctx, s.cfg.APIURL+"/channels", params, headers)
	if err != nil {
		return false, 0, err
	}
	return resp.OK, resp.Status, nil
}
