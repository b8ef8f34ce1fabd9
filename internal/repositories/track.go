package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/postify/postify/internal/models"
	"github.com/postify/postify/internal/shared"
)

// TrackRepository persists full [models.Track] records, payloads included.
//
// Put is an upsert: a "replace" of a payload is a whole-record rewrite, never
// an in-place byte mutation. Each operation is a single statement and
// therefore atomic with respect to itself.
type TrackRepository struct {
	db *sql.DB
}

// NewTrackRepository creates a new TrackRepository with the given database connection
func NewTrackRepository(db *sql.DB) *TrackRepository {
	return &TrackRepository{db: db}
}

// Put upserts a full track record.
func (r *TrackRepository) Put(track *models.Track) error {
	if err := track.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	playlists, err := json.Marshal(track.Playlists)
	if err != nil {
		return fmt.Errorf("%w: failed to encode playlists: %v", shared.ErrStorage, err)
	}

	query := `
		INSERT OR REPLACE INTO tracks (id, title, artist, type, stream_locator, audio_payload, cover_payload, playlists, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		track.ID,
		track.Title,
		track.Artist,
		string(track.Type),
		track.StreamLocator,
		track.AudioPayload,
		track.CoverPayload,
		string(playlists),
		track.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: failed to write track %s: %v", shared.ErrStorage, track.ID, err)
	}

	return nil
}

// Get retrieves a track by ID.
func (r *TrackRepository) Get(id string) (*models.Track, error) {
	query := `
		SELECT id, title, artist, type, stream_locator, audio_payload, cover_payload, playlists, created_at
		FROM tracks
		WHERE id = ?
	`

	track, err := scanTrack(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", shared.ErrTrackNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read track %s: %v", shared.ErrStorage, id, err)
	}

	return track, nil
}

// Delete removes a track record. Deleting an absent id is a no-op.
func (r *TrackRepository) Delete(id string) error {
	if _, err := r.db.Exec("DELETE FROM tracks WHERE id = ?", id); err != nil {
		return fmt.Errorf("%w: failed to delete track %s: %v", shared.ErrStorage, id, err)
	}
	return nil
}

// ListAll retrieves every track record. The store imposes no order; callers
// sort by CreatedAt when they need a stable listing.
func (r *TrackRepository) ListAll() ([]*models.Track, error) {
	query := `
		SELECT id, title, artist, type, stream_locator, audio_payload, cover_payload, playlists, created_at
		FROM tracks
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query tracks: %v", shared.ErrStorage, err)
	}
	defer rows.Close()

	var tracks []*models.Track
	for rows.Next() {
		track, err := scanTrack(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to scan track: %v", shared.ErrStorage, err)
		}
		tracks = append(tracks, track)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: row iteration error: %v", shared.ErrStorage, err)
	}

	return tracks, nil
}

// scanner is satisfied by both [sql.Row] and [sql.Rows].
type scanner interface {
	Scan(dest ...any) error
}

func scanTrack(row scanner) (*models.Track, error) {
	var (
		id            string
		title         string
		artist        string
		trackType     string
		streamLocator string
		audioPayload  []byte
		coverPayload  []byte
		playlists     string
		createdAt     time.Time
	)

	err := row.Scan(&id, &title, &artist, &trackType, &streamLocator, &audioPayload, &coverPayload, &playlists, &createdAt)
	if err != nil {
		return nil, err
	}

	track := &models.Track{
		ID:            id,
		Title:         title,
		Artist:        artist,
		Type:          models.TrackType(trackType),
		StreamLocator: streamLocator,
		AudioPayload:  audioPayload,
		CoverPayload:  coverPayload,
		CreatedAt:     createdAt,
	}

	if err := json.Unmarshal([]byte(playlists), &track.Playlists); err != nil {
		return nil, fmt.Errorf("failed to decode playlists for %s: %w", id, err)
	}

	return track, nil
}
