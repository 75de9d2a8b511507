package connection

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"
)

type fakeStore struct {
	records   map[string]*Record
	getErr    error
	updates   []map[string]any
	updateErr error
}

func (f *fakeStore) Get(_ context.Context, userID string, _ Platform) (*Record, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	rec, ok := f.records[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	return rec, nil
}

func (f *fakeStore) Update(_ context.Context, userID string, _ Platform, fields map[string]any) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates = append(f.updates, fields)
	return nil
}

type fakeRefresher struct {
	result *RefreshResult
	err    error
	calls  int
}

func (f *fakeRefresher) Refresh(context.Context, string) (*RefreshResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestEvaluator(store Store, refresher Refresher) *Evaluator {
	e := NewEvaluator(store, PlatformYouTube, refresher)
	e.now = func() time.Time { return testNow }
	return e
}

func expiredAt(t time.Time) *time.Time { return &t }

func validProfile() *Profile {
	return &Profile{ID: "ch_1", DisplayName: "My Channel", Followers: 100}
}

func TestEvaluateNoCredential(t *testing.T) {
	store := &fakeStore{records: map[string]*Record{"u1": {}}}
	e := newTestEvaluator(store, nil)

	status, err := e.Evaluate(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if status.State != StateDisconnected || !status.NeedsReconnect {
		t.Errorf("got state=%q needsReconnect=%v, want disconnected/true", status.State, status.NeedsReconnect)
	}
}

func TestEvaluateUserNotFound(t *testing.T) {
	store := &fakeStore{records: map[string]*Record{}}
	e := newTestEvaluator(store, nil)

	_, err := e.Evaluate(context.Background(), "missing")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("got err=%v, want ErrUserNotFound", err)
	}
}

func TestEvaluateValidTokenNoSideEffects(t *testing.T) {
	refresher := &fakeRefresher{}
	future := testNow.Add(time.Hour)
	store := &fakeStore{records: map[string]*Record{
		"u1": {
			Credential: &Credential{AccessToken: "tok", RefreshToken: "ref", ExpiresAt: &future},
			Profile:    validProfile(),
		},
	}}
	e := newTestEvaluator(store, refresher)

	status, err := e.Evaluate(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if status.State != StateConnected {
		t.Errorf("got state=%q, want connected", status.State)
	}
	if refresher.calls != 0 {
		t.Errorf("refresher called %d times on valid token, want 0", refresher.calls)
	}
	if len(store.updates) != 0 {
		t.Errorf("store written %d times on valid token, want 0", len(store.updates))
	}
}

func TestEvaluateIdempotentReads(t *testing.T) {
	future := testNow.Add(time.Hour)
	store := &fakeStore{records: map[string]*Record{
		"u1": {
			Credential: &Credential{AccessToken: "tok", ExpiresAt: &future},
			Profile:    validProfile(),
		},
	}}
	e := newTestEvaluator(store, nil)

	first, err := e.Evaluate(context.Background(), "u1")
	if err != nil {
		t.Fatal(err)
	}
	second, err := e.Evaluate(context.Background(), "u1")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("consecutive evaluations differ: %+v vs %+v", first, second)
	}
}

func TestEvaluateExpiryBoundaryInclusive(t *testing.T) {
	refresher := &fakeRefresher{result: &RefreshResult{AccessToken: "new", ExpiresAt: testNow.Add(time.Hour)}}
	store := &fakeStore{records: map[string]*Record{
		"u1": {
			// Expires exactly now: must be treated as expired.
			Credential: &Credential{AccessToken: "tok", RefreshToken: "ref", ExpiresAt: expiredAt(testNow)},
			Profile:    validProfile(),
		},
	}}
	e := newTestEvaluator(store, refresher)

	status, err := e.Evaluate(context.Background(), "u1")
	if err != nil {
		t.Fatal(err)
	}
	if refresher.calls != 1 {
		t.Errorf("refresher called %d times, want 1 (expiresAt == now is expired)", refresher.calls)
	}
	if !status.TokenRefreshed {
		t.Error("TokenRefreshed not set after successful refresh")
	}
}

func TestEvaluateRefreshSuccessPersists(t *testing.T) {
	refresher := &fakeRefresher{result: &RefreshResult{
		AccessToken:  "new-access",
		RefreshToken: "new-refresh",
		ExpiresAt:    testNow.Add(time.Hour),
	}}
	store := &fakeStore{records: map[string]*Record{
		"u1": {
			Credential: &Credential{AccessToken: "old", RefreshToken: "old-refresh", ExpiresAt: expiredAt(testNow.Add(-time.Minute))},
			Profile:    validProfile(),
		},
	}}
	e := newTestEvaluator(store, refresher)

	status, err := e.Evaluate(context.Background(), "u1")
	if err != nil {
		t.Fatal(err)
	}
	if status.State != StateConnected || !status.TokenRefreshed {
		t.Errorf("got state=%q refreshed=%v, want connected/true", status.State, status.TokenRefreshed)
	}
	if len(store.updates) != 1 {
		t.Fatalf("store written %d times, want 1", len(store.updates))
	}
	cred, ok := store.updates[0]["credential"].(*Credential)
	if !ok {
		t.Fatal("update did not include a credential")
	}
	if cred.AccessToken != "new-access" || cred.RefreshToken != "new-refresh" {
		t.Errorf("persisted credential = %+v", cred)
	}
}

func TestRefreshTokenRetention(t *testing.T) {
	// The remote omitted a rotated refresh token: the stored one must be
	// the previous value, not empty.
	refresher := &fakeRefresher{result: &RefreshResult{
		AccessToken: "new-access",
		ExpiresAt:   testNow.Add(time.Hour),
	}}
	store := &fakeStore{records: map[string]*Record{
		"u1": {
			Credential: &Credential{AccessToken: "old", RefreshToken: "keep-me", ExpiresAt: expiredAt(testNow.Add(-time.Minute))},
			Profile:    validProfile(),
		},
	}}
	e := newTestEvaluator(store, refresher)

	if _, err := e.Evaluate(context.Background(), "u1"); err != nil {
		t.Fatal(err)
	}
	cred := store.updates[0]["credential"].(*Credential)
	if cred.RefreshToken != "keep-me" {
		t.Errorf("stored refresh token = %q, want %q", cred.RefreshToken, "keep-me")
	}
}

func TestEvaluateFallbackPrecedence(t *testing.T) {
	// Refresh fails terminally but a usable snapshot exists: the result is
	// connected-stale with needsReconnect, never disconnected.
	refresher := &fakeRefresher{err: ErrRefresh}
	store := &fakeStore{records: map[string]*Record{
		"u1": {
			Credential: &Credential{AccessToken: "old", RefreshToken: "dead", ExpiresAt: expiredAt(testNow.Add(-time.Minute))},
			Profile:    validProfile(),
		},
	}}
	e := newTestEvaluator(store, refresher)

	status, err := e.Evaluate(context.Background(), "u1")
	if err != nil {
		t.Fatal(err)
	}
	if status.State != StateStale {
		t.Errorf("got state=%q, want connected-stale", status.State)
	}
	if !status.NeedsReconnect {
		t.Error("NeedsReconnect not set on stale fallback")
	}
	if status.Warning == "" {
		t.Error("stale fallback carries no warning")
	}
	if status.Profile == nil {
		t.Error("stale fallback lost the cached profile")
	}
	if len(store.updates) != 0 {
		t.Errorf("stale credential was written to, want untouched")
	}
}

func TestEvaluateRefreshFailsNoCache(t *testing.T) {
	refresher := &fakeRefresher{err: ErrRefresh}
	store := &fakeStore{records: map[string]*Record{
		"u1": {
			Credential: &Credential{AccessToken: "old", RefreshToken: "dead", ExpiresAt: expiredAt(testNow.Add(-time.Minute))},
		},
	}}
	e := newTestEvaluator(store, refresher)

	status, err := e.Evaluate(context.Background(), "u1")
	if err != nil {
		t.Fatal(err)
	}
	if status.State != StateDisconnected || !status.NeedsReconnect {
		t.Errorf("got state=%q needsReconnect=%v, want disconnected/true", status.State, status.NeedsReconnect)
	}
}

func TestEvaluateExpiredNoRefreshToken(t *testing.T) {
	refresher := &fakeRefresher{}
	store := &fakeStore{records: map[string]*Record{
		"u1": {
			Credential: &Credential{AccessToken: "old", ExpiresAt: expiredAt(testNow.Add(-time.Minute))},
			Profile:    validProfile(),
		},
	}}
	e := newTestEvaluator(store, refresher)

	status, err := e.Evaluate(context.Background(), "u1")
	if err != nil {
		t.Fatal(err)
	}
	if status.State != StateStale {
		t.Errorf("got state=%q, want connected-stale via cache", status.State)
	}
	if refresher.calls != 0 {
		t.Errorf("refresher called %d times with no refresh token, want 0", refresher.calls)
	}
}

func TestEvaluateNonExpiringCredential(t *testing.T) {
	// nil ExpiresAt means the token does not expire (long-lived token),
	// never "already expired".
	store := &fakeStore{records: map[string]*Record{
		"u1": {
			Credential: &Credential{AccessToken: "long-lived"},
			Profile:    validProfile(),
		},
	}}
	e := newTestEvaluator(store, nil)

	status, err := e.Evaluate(context.Background(), "u1")
	if err != nil {
		t.Fatal(err)
	}
	if status.State != StateConnected {
		t.Errorf("got state=%q, want connected for non-expiring credential", status.State)
	}
}
