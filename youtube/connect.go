package youtube

import (
	"context"
	"fmt"
	"time"

	"github.com/startzy/social-connect/connection"
	"github.com/startzy/social-connect/platform"
)

// Service runs the YouTube connection flow against the Google OAuth and
// YouTube Data APIs. It also implements connection.Refresher, so the state
// evaluator can refresh expired credentials through it.
type Service struct {
	cfg   Config
	api   *platform.Client
	store connection.Store
}

var _ connection.Refresher = &Service{}

func NewService(cfg Config, api *platform.Client, store connection.Store) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Service{cfg: cfg, api: api, store: store}, nil
}

// Connect drives the connection attempt for one authorization code:
//
//	code exchange -> channel fetch -> store
//
// Nothing is persisted unless every step succeeds.
func (s *Service) Connect(ctx context.Context, userID, code string) error {
	grant, err := s.exchangeCode(ctx, code)
	if err != nil {
		return connection.FailStep(connection.StepCodeExchange, err)
	}

	profile, err := s.fetchChannel(ctx, grant.AccessToken)
	if err != nil {
		return connection.FailStep(connection.StepChannelFetch, err)
	}

	now := time.Now().UTC()
	expiresAt := grant.expiresAt(now)
	err = s.store.Update(ctx, userID, connection.PlatformYouTube, map[string]any{
		"credential": &connection.Credential{
			AccessToken:  grant.AccessToken,
			RefreshToken: grant.RefreshToken,
			ExpiresAt:    &expiresAt,
			TokenType:    "Bearer",
		},
		"profile":        profile,
		"connected_at":   now,
		"last_validated": now,
	})
	if err != nil {
		return connection.FailStep(connection.StepStore, err)
	}
	return nil
}
