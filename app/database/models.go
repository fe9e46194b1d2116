package database

import (
	"time"
)

// ShortLink is one persisted key→configuration row. The mapping is
// immutable once created; CreatedAt is informational only, no expiry is
// enforced here.
type ShortLink struct {
	Key       string
	Config    string
	CreatedAt time.Time
}
