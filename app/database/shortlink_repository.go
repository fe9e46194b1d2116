package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// ShortLinkRepository handles database operations for short links
type ShortLinkRepository struct {
	db *DB
}

// NewShortLinkRepository creates a new short link repository
func NewShortLinkRepository(db *DB) *ShortLinkRepository {
	return &ShortLinkRepository{db: db}
}

// Insert adds a new short link row. It reports whether the row was
// inserted; false means another row already holds the same config, which
// a caller resolves by re-reading that row's key. A collision on the key
// itself surfaces as an error recognizable via IsKeyConflict.
func (r *ShortLinkRepository) Insert(key, config string) (bool, error) {
	result, err := r.db.Exec(`
		INSERT INTO short_links (key, config, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT (config) DO NOTHING
	`, key, config, time.Now().UTC())
	if err != nil {
		if IsKeyConflict(err) {
			return false, err
		}
		return false, fmt.Errorf("failed to insert short link: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read insert result: %w", err)
	}

	return affected > 0, nil
}

// GetByKey retrieves a short link by its key
func (r *ShortLinkRepository) GetByKey(key string) (*ShortLink, error) {
	var link ShortLink
	err := r.db.QueryRow(`
		SELECT key, config, created_at
		FROM short_links
		WHERE key = ?
	`, key).Scan(&link.Key, &link.Config, &link.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get short link by key: %w", err)
	}

	return &link, nil
}

// GetByConfig retrieves a short link by its stored configuration
func (r *ShortLinkRepository) GetByConfig(config string) (*ShortLink, error) {
	var link ShortLink
	err := r.db.QueryRow(`
		SELECT key, config, created_at
		FROM short_links
		WHERE config = ?
	`, config).Scan(&link.Key, &link.Config, &link.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get short link by config: %w", err)
	}

	return &link, nil
}

// GetCount returns the total number of short links
func (r *ShortLinkRepository) GetCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM short_links").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get short link count: %w", err)
	}
	return count, nil
}

// IsKeyConflict reports whether an insert failed on the key's uniqueness
// constraint, as opposed to the config one handled by ON CONFLICT.
func IsKeyConflict(err error) bool {
	return err != nil && strings.Contains(err.Error(), "short_links.key")
}
