package connection

import "time"

// Platform identifies a third-party platform a user can connect.
type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformYouTube   Platform = "youtube"
)

// Credential holds the tokens persisted for one user+platform connection.
type Credential struct {
	AccessToken  string     `bson:"access_token" json:"accessToken"`
	RefreshToken string     `bson:"refresh_token,omitempty" json:"refreshToken,omitempty"`
	ExpiresAt    *time.Time `bson:"expires_at,omitempty" json:"expiresAt,omitempty"`
	TokenType    string     `bson:"token_type" json:"tokenType"`
}

// Expired reports whether the credential's access token has expired at t.
// A nil ExpiresAt means the token does not expire (long-lived semantics).
// The boundary is inclusive: a token expiring exactly at t is expired.
func (c *Credential) Expired(t time.Time) bool {
	if c.ExpiresAt == nil {
		return false
	}
	return !c.ExpiresAt.After(t)
}

// Profile is a denormalized snapshot of the remote account, cached so the
// consumer can still render something when the credential goes bad.
type Profile struct {
	ID           string    `bson:"id" json:"id"`
	DisplayName  string    `bson:"display_name" json:"displayName"`
	Followers    int64     `bson:"followers" json:"followers"`
	MediaCount   int64     `bson:"media_count" json:"mediaCount"`
	Views        int64     `bson:"views,omitempty" json:"views,omitempty"`
	AvatarURL    string    `bson:"avatar_url,omitempty" json:"avatarUrl,omitempty"`
	LastSyncedAt time.Time `bson:"last_synced_at" json:"lastSyncedAt"`
}

// Usable reports whether the snapshot carries enough data to serve as a
// fallback when the credential cannot be refreshed.
func (p *Profile) Usable() bool {
	return p != nil && p.DisplayName != ""
}

// Record is the stored per-user, per-platform connection document.
type Record struct {
	Credential    *Credential `bson:"credential,omitempty"`
	Profile       *Profile    `bson:"profile,omitempty"`
	ConnectedAt   time.Time   `bson:"connected_at,omitempty"`
	LastValidated time.Time   `bson:"last_validated,omitempty"`
}

// Connection status states, derived on every status check and never stored.
const (
	StateConnected    = "connected"
	StateStale        = "connected-stale"
	StateDisconnected = "disconnected"
)

// Status is the user-facing result of a connection status check.
type Status struct {
	State          string   `json:"state"`
	IsConnected    bool     `json:"isConnected"`
	NeedsReconnect bool     `json:"needsReconnect"`
	TokenRefreshed bool     `json:"tokenRefreshed,omitempty"`
	Warning        string   `json:"warning,omitempty"`
	Error          string   `json:"error,omitempty"`
	Profile        *Profile `json:"profile,omitempty"`
}
