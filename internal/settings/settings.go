package settings

import "context"

// Name is the fixed key the settings record is stored under.
const Name = "koraki_settings"

// OptInMetaKey is the per-post meta key holding the notification opt-in flag.
const OptInMetaKey = "_koraki_post_field"

// OptInEnabled is the only flag value that opts a post in.
const OptInEnabled = "true"

// Record is the singleton credential link record.
// ID is non-empty only when the credentials were validated by Koraki.
type Record struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	ID           string `json:"id,omitempty"`
	Success      bool   `json:"success"`
}

// Linked reports whether the record represents a validated link.
func (r Record) Linked() bool {
	return r.ID != ""
}

// HasCredentials reports whether both credential halves are present.
func (r Record) HasCredentials() bool {
	return r.ClientID != "" && r.ClientSecret != ""
}

// Store persists the settings record and per-post opt-in flags.
type Store interface {
	// Load returns the stored record, or the zero Record when none exists.
	Load(ctx context.Context) (Record, error)
	Save(ctx context.Context, r Record) error
	Clear(ctx context.Context) error

	// OptIn returns the raw flag value for a post, "" when unset.
	OptIn(ctx context.Context, postID int64) (string, error)
	SetOptIn(ctx context.Context, postID int64, value string) error

	Close() error
}
