package instagram

import (
	"context"
	"fmt"
	"time"

	"github.com/startzy/social-connect/connection"
	"github.com/startzy/social-connect/platform"
)

// Service runs the Instagram connection flow against the Facebook Graph
// API and writes the result through the connection store.
type Service struct {
	cfg   Config
	api   *platform.Client
	store connection.Store
}

func NewService(cfg Config, api *platform.Client, store connection.Store) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Service{cfg: cfg, api: api, store: store}, nil
}

// Connect drives the full connection attempt for one authorization code:
//
//	code exchange -> long-lived upgrade -> account discovery ->
//	profile fetch -> store
//
// Any step failing aborts the attempt with a StepError naming it; nothing
// is persisted until the final store write. The long-lived token is stored
// without an expiry (non-expiring semantics) and without a refresh token,
// since the Graph API has no refresh exchange for it.
func (s *Service) Connect(ctx context.Context, userID, code string) (*connection.Profile, error) {
	shortLived, err := s.exchangeCode(ctx, code)
	if err != nil {
		return nil, connection.FailStep(connection.StepCodeExchange, err)
	}

	longLived, err := s.upgradeLongLived(ctx, shortLived)
	if err != nil {
		return nil, connection.FailStep(connection.StepTokenUpgrade, err)
	}

	igUserID, pageToken, err := s.discoverBusinessAccount(ctx, longLived)
	if err != nil {
		return nil, connection.FailStep(connection.StepAccountDiscovery, err)
	}

	profile, err := s.fetchProfile(ctx, igUserID, pageToken)
	if err != nil {
		return nil, connection.FailStep(connection.StepProfileFetch, err)
	}

	now := time.Now().UTC()
	err = s.store.Update(ctx, userID, connection.PlatformInstagram, map[string]any{
		"credential": &connection.Credential{
			AccessToken: longLived,
			TokenType:   "Bearer",
		},
		"profile":        profile,
		"connected_at":   now,
		"last_validated": now,
	})
	if err != nil {
		return nil, connection.FailStep(connection.StepStore, err)
	}
	return profile, nil
}
