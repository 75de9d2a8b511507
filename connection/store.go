package connection

import "context"

// Store is the durable per-user connection document store.
//
// Updates are always partial merges: only the given fields are written, so
// unrelated fields on the same user record are preserved. The store performs
// atomic per-document read-modify-write; no optimistic versioning is done,
// so a concurrent write to the same credential is last-writer-wins.
type Store interface {
	// Get loads the connection record for one user+platform. Returns
	// ErrUserNotFound if the user document does not exist. A user that
	// exists but has never connected the platform yields an empty Record.
	Get(ctx context.Context, userID string, platform Platform) (*Record, error)

	// Update merges the given fields into the user's platform connection
	// subdocument. Field keys are relative to the connection record, e.g.
	// "credential.access_token". Returns ErrUserNotFound if the user
	// document does not exist; it is never created here.
	Update(ctx context.Context, userID string, platform Platform, fields map[string]any) error
}
