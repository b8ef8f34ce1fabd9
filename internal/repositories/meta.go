package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/postify/postify/internal/shared"
)

// playlistsKey is the fixed meta row holding the playlist registry.
const playlistsKey = "playlists"

// MetaRepository persists small key/value metadata, currently just the
// ordered playlist name registry.
type MetaRepository struct {
	db *sql.DB
}

// NewMetaRepository creates a new MetaRepository with the given database connection
func NewMetaRepository(db *sql.DB) *MetaRepository {
	return &MetaRepository{db: db}
}

// GetPlaylists reads the persisted playlist registry. A missing row yields an
// empty registry, not an error.
func (r *MetaRepository) GetPlaylists() ([]string, error) {
	var value string
	err := r.db.QueryRow("SELECT value FROM meta WHERE key = ?", playlistsKey).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read playlist registry: %v", shared.ErrStorage, err)
	}

	var names []string
	if err := json.Unmarshal([]byte(value), &names); err != nil {
		return nil, fmt.Errorf("%w: failed to decode playlist registry: %v", shared.ErrStorage, err)
	}

	return names, nil
}

// SetPlaylists atomically replaces the playlist registry.
func (r *MetaRepository) SetPlaylists(names []string) error {
	if names == nil {
		names = []string{}
	}
	value, err := json.Marshal(names)
	if err != nil {
		return fmt.Errorf("%w: failed to encode playlist registry: %v", shared.ErrStorage, err)
	}

	query := "INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)"
	if _, err := r.db.Exec(query, playlistsKey, string(value)); err != nil {
		return fmt.Errorf("%w: failed to write playlist registry: %v", shared.ErrStorage, err)
	}

	return nil
}
