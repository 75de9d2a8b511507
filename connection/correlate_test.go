package connection

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	redis "github.com/redis/go-redis/v9"
)

func TestIdentityCorrelatorRoundTrip(t *testing.T) {
	c := IdentityCorrelator{}
	ctx := context.Background()

	state, err := c.Issue(ctx, "user1")
	if err != nil {
		t.Fatal(err)
	}
	if state != "user1" {
		t.Errorf("Issue = %q, want the raw user id", state)
	}

	userID, err := c.Resolve(ctx, state)
	if err != nil {
		t.Fatal(err)
	}
	if userID != "user1" {
		t.Errorf("Resolve = %q, want user1", userID)
	}
}

func TestIdentityCorrelatorEmptyState(t *testing.T) {
	_, err := IdentityCorrelator{}.Resolve(context.Background(), "")
	if !errors.Is(err, ErrBadState) {
		t.Errorf("got err=%v, want ErrBadState", err)
	}
}

// fakeRedis implements only the commands the correlator issues; everything
// else panics through the embedded nil interface.
type fakeRedis struct {
	redis.Cmdable
	data map[string]string
	ttls map[string]time.Duration
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{
		data: make(map[string]string),
		ttls: make(map[string]time.Duration),
	}
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd {
	f.data[key] = fmt.Sprint(value)
	f.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) GetDel(_ context.Context, key string) *redis.StringCmd {
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	delete(f.data, key)
	return redis.NewStringResult(v, nil)
}

func TestRedisCorrelatorRoundTrip(t *testing.T) {
	rdb := newFakeRedis()
	c := NewRedisCorrelator(rdb, 10*time.Minute)
	ctx := context.Background()

	state, err := c.Issue(ctx, "user1")
	if err != nil {
		t.Fatal(err)
	}
	if state == "user1" || state == "" {
		t.Errorf("Issue = %q, want an opaque token, not the user id", state)
	}
	if got := rdb.ttls[stateKey(state)]; got != 10*time.Minute {
		t.Errorf("stored TTL = %v, want 10m", got)
	}

	userID, err := c.Resolve(ctx, state)
	if err != nil {
		t.Fatal(err)
	}
	if userID != "user1" {
		t.Errorf("Resolve = %q, want user1", userID)
	}
}

func TestRedisCorrelatorSingleUse(t *testing.T) {
	c := NewRedisCorrelator(newFakeRedis(), 10*time.Minute)
	ctx := context.Background()

	state, err := c.Issue(ctx, "user1")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Resolve(ctx, state); err != nil {
		t.Fatal(err)
	}
	// Replaying the same state token must fail: resolution consumes it.
	if _, err := c.Resolve(ctx, state); !errors.Is(err, ErrBadState) {
		t.Errorf("second resolve got err=%v, want ErrBadState", err)
	}
}

func TestRedisCorrelatorUnknownState(t *testing.T) {
	c := NewRedisCorrelator(newFakeRedis(), 0) // 0 falls back to the default TTL
	_, err := c.Resolve(context.Background(), "never-issued")
	if !errors.Is(err, ErrBadState) {
		t.Errorf("got err=%v, want ErrBadState", err)
	}
}

func TestRedisCorrelatorDefaultTTL(t *testing.T) {
	rdb := newFakeRedis()
	c := NewRedisCorrelator(rdb, 0)

	state, err := c.Issue(context.Background(), "user1")
	if err != nil {
		t.Fatal(err)
	}
	if got := rdb.ttls[stateKey(state)]; got != 10*time.Minute {
		t.Errorf("default TTL = %v, want 10m", got)
	}
}
