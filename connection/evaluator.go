package connection

import (
	"context"
	"log/slog"
	"time"
)

// RefreshResult is what a platform's token refresh exchange returns. An
// empty RefreshToken means the remote service did not rotate it, which is
// "unchanged", not "revoked": the caller keeps the previous one.
type RefreshResult struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Refresher mints a new access token from a refresh token. Returns
// ErrRefresh (wrapped) when the remote reports the refresh token invalid or
// revoked; transport failures come back as plain errors.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error)
}

// Evaluator decides, on every status check, whether a stored connection is
// usable as-is, refreshable, only good for cached data, or broken.
type Evaluator struct {
	store     Store
	platform  Platform
	refresher Refresher // nil when the platform has no refresh exchange
	now       func() time.Time
}

func NewEvaluator(store Store, platform Platform, refresher Refresher) *Evaluator {
	return &Evaluator{
		store:     store,
		platform:  platform,
		refresher: refresher,
		now:       time.Now,
	}
}

// Evaluate derives the connection status for one user. It prefers returning
// something usable over an error: an expired credential with a failing
// refresh still serves the cached profile snapshot with a staleness warning
// instead of failing hard. Only store access errors propagate.
func (e *Evaluator) Evaluate(ctx context.Context, userID string) (*Status, error) {
	rec, err := e.store.Get(ctx, userID, e.platform)
	if err != nil {
		return nil, err
	}

	if rec.Credential == nil || rec.Credential.AccessToken == "" {
		return &Status{
			State:          StateDisconnected,
			NeedsReconnect: true,
			Error:          "no connection found",
		}, nil
	}

	if !rec.Credential.Expired(e.now()) {
		// Valid token: cheap path, no network calls, no writes.
		return &Status{
			State:       StateConnected,
			IsConnected: true,
			Profile:     rec.Profile,
		}, nil
	}

	if rec.Credential.RefreshToken != "" && e.refresher != nil {
		_, err := e.RefreshCredential(ctx, userID, rec.Credential)
		if err == nil {
			return &Status{
				State:          StateConnected,
				IsConnected:    true,
				TokenRefreshed: true,
				Profile:        rec.Profile,
			}, nil
		}
		slog.Warn("token refresh failed",
			"platform", e.platform,
			"user_id", userID,
			"err", err)
		return e.fallback(rec, "Using cached data - token refresh failed"), nil
	}

	return e.fallback(rec, "Using cached data - token expired"), nil
}

// RefreshCredential runs the refresh exchange and persists the replacement
// credential as one merge write. When the remote omits a rotated refresh
// token the previous one is retained.
func (e *Evaluator) RefreshCredential(ctx context.Context, userID string, cred *Credential) (*Credential, error) {
	res, err := e.refresher.Refresh(ctx, cred.RefreshToken)
	if err != nil {
		return nil, err
	}

	refreshToken := res.RefreshToken
	if refreshToken == "" {
		refreshToken = cred.RefreshToken
	}
	updated := &Credential{
		AccessToken:  res.AccessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    &res.ExpiresAt,
		TokenType:    "Bearer",
	}

	err = e.store.Update(ctx, userID, e.platform, map[string]any{
		"credential":     updated,
		"last_validated": e.now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (e *Evaluator) fallback(rec *Record, warning string) *Status {
	if rec.Profile.Usable() {
		return &Status{
			State:          StateStale,
			IsConnected:    true,
			NeedsReconnect: true,
			Warning:        warning,
			Profile:        rec.Profile,
		}
	}
	return &Status{
		State:          StateDisconnected,
		NeedsReconnect: true,
		Error:          "Token expired and refresh failed",
	}
}
