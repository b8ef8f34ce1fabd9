package repositories

import (
	"bytes"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/postify/postify/internal/models"
	"github.com/postify/postify/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func localTrack(id string) *models.Track {
	return &models.Track{
		ID:           id,
		Title:        "Test Song",
		Artist:       "Test Artist",
		Type:         models.TypeLocalAudio,
		AudioPayload: []byte{0x49, 0x44, 0x33, 0x04, 0x00},
		CoverPayload: []byte{0xFF, 0xD8, 0xFF},
		Playlists:    []string{"Rock"},
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
}

func TestTrackRepository(t *testing.T) {
	t.Run("Put & Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewTrackRepository(db)
		track := localTrack("t1")

		if err := repo.Put(track); err != nil {
			t.Fatalf("failed to put track: %v", err)
		}

		retrieved, err := repo.Get("t1")
		if err != nil {
			t.Fatalf("failed to get track: %v", err)
		}

		if retrieved.Title != "Test Song" {
			t.Errorf("expected title 'Test Song', got %s", retrieved.Title)
		}
		if !bytes.Equal(retrieved.AudioPayload, track.AudioPayload) {
			t.Error("audio payload bytes not recovered")
		}
		if !bytes.Equal(retrieved.CoverPayload, track.CoverPayload) {
			t.Error("cover payload bytes not recovered")
		}
		if len(retrieved.Playlists) != 1 || retrieved.Playlists[0] != "Rock" {
			t.Errorf("expected playlists [Rock], got %v", retrieved.Playlists)
		}
	})

	t.Run("Put is an upsert", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewTrackRepository(db)
		track := localTrack("t1")

		if err := repo.Put(track); err != nil {
			t.Fatalf("failed to put track: %v", err)
		}

		track.Title = "Renamed"
		track.AudioPayload = []byte{0x01, 0x02}
		if err := repo.Put(track); err != nil {
			t.Fatalf("failed to re-put track: %v", err)
		}

		retrieved, err := repo.Get("t1")
		if err != nil {
			t.Fatalf("failed to get track: %v", err)
		}
		if retrieved.Title != "Renamed" {
			t.Errorf("expected title 'Renamed', got %s", retrieved.Title)
		}
		if !bytes.Equal(retrieved.AudioPayload, []byte{0x01, 0x02}) {
			t.Error("replaced payload not recovered")
		}

		all, err := repo.ListAll()
		if err != nil {
			t.Fatalf("failed to list tracks: %v", err)
		}
		if len(all) != 1 {
			t.Errorf("expected 1 track after upsert, got %d", len(all))
		}
	})

	t.Run("Put rejects invalid record", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewTrackRepository(db)
		track := &models.Track{
			ID:        "bad",
			Type:      models.TypeLocalAudio,
			CreatedAt: time.Now(),
		}

		err := repo.Put(track)
		if !errors.Is(err, shared.ErrInvalidTrack) {
			t.Errorf("expected ErrInvalidTrack, got %v", err)
		}

		if _, err := repo.Get("bad"); !errors.Is(err, shared.ErrTrackNotFound) {
			t.Error("invalid record should never reach the store")
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewTrackRepository(db)
		track := localTrack("t1")

		if err := repo.Put(track); err != nil {
			t.Fatalf("failed to put track: %v", err)
		}
		if err := repo.Delete("t1"); err != nil {
			t.Fatalf("failed to delete track: %v", err)
		}
		if _, err := repo.Get("t1"); !errors.Is(err, shared.ErrTrackNotFound) {
			t.Error("expected ErrTrackNotFound after delete")
		}

		// absent id is a no-op, not an error
		if err := repo.Delete("missing"); err != nil {
			t.Errorf("deleting absent track should be a no-op: %v", err)
		}
	})

	t.Run("ListAll", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewTrackRepository(db)
		for _, id := range []string{"a", "b", "c"} {
			track := localTrack(id)
			if err := repo.Put(track); err != nil {
				t.Fatalf("failed to put track %s: %v", id, err)
			}
		}

		stream := &models.Track{
			ID:            "d",
			Title:         "Stream Song",
			Type:          models.TypeRemoteStream,
			StreamLocator: "https://drive.example.com/uc?id=xyz",
			CreatedAt:     time.Now(),
		}
		if err := repo.Put(stream); err != nil {
			t.Fatalf("failed to put stream track: %v", err)
		}

		all, err := repo.ListAll()
		if err != nil {
			t.Fatalf("failed to list tracks: %v", err)
		}
		if len(all) != 4 {
			t.Errorf("expected 4 tracks, got %d", len(all))
		}

		for _, track := range all {
			if err := track.Validate(); err != nil {
				t.Errorf("stored track %s violates source invariant: %v", track.ID, err)
			}
		}
	})
}

func TestMetaRepository(t *testing.T) {
	t.Run("empty registry", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewMetaRepository(db)
		names, err := repo.GetPlaylists()
		if err != nil {
			t.Fatalf("failed to read empty registry: %v", err)
		}
		if len(names) != 0 {
			t.Errorf("expected empty registry, got %v", names)
		}
	})

	t.Run("set and replace", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewMetaRepository(db)
		if err := repo.SetPlaylists([]string{"Rock", "Jazz"}); err != nil {
			t.Fatalf("failed to set registry: %v", err)
		}

		names, err := repo.GetPlaylists()
		if err != nil {
			t.Fatalf("failed to read registry: %v", err)
		}
		if len(names) != 2 || names[0] != "Rock" || names[1] != "Jazz" {
			t.Errorf("expected [Rock Jazz], got %v", names)
		}

		if err := repo.SetPlaylists([]string{"Jazz"}); err != nil {
			t.Fatalf("failed to replace registry: %v", err)
		}
		names, err = repo.GetPlaylists()
		if err != nil {
			t.Fatalf("failed to re-read registry: %v", err)
		}
		if len(names) != 1 || names[0] != "Jazz" {
			t.Errorf("expected [Jazz], got %v", names)
		}
	})
}
