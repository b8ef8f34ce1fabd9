// Package catalog holds the in-memory projection of the track library and is
// the only component permitted to mutate persisted state.
package catalog

import (
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/postify/postify/internal/models"
	"github.com/postify/postify/internal/repositories"
	"github.com/postify/postify/internal/shared"
)

// Unbinder is notified when a track disappears from the catalog so a playback
// controller bound to it never points at a dangling id.
type Unbinder interface {
	TrackRemoved(id string)
}

// Catalog is the explicitly owned read-through cache over the payload store.
//
// One instance is created at process start via [Catalog.LoadAll] and passed
// by reference to the projector, controller and task engine. The cache is
// updated only after the underlying write succeeded.
type Catalog struct {
	tracks *repositories.TrackRepository
	meta   *repositories.MetaRepository
	logger *log.Logger

	mu       sync.Mutex
	cache    []*models.Track
	registry []string // persisted playlist names, Tous excluded
	active   string
	unbinder Unbinder
}

// New creates a Catalog over the given repositories. The active playlist
// starts at [models.AllPlaylist].
func New(tracks *repositories.TrackRepository, meta *repositories.MetaRepository, logger *log.Logger) *Catalog {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Catalog{
		tracks: tracks,
		meta:   meta,
		logger: logger,
		active: models.AllPlaylist,
	}
}

// SetUnbinder registers the controller notified on deletions of bound tracks.
func (c *Catalog) SetUnbinder(u Unbinder) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unbinder = u
}

// LoadAll hydrates the in-memory cache from the payload store.
//
// Tracks are ordered by creation time for stable display. The reserved
// pseudo-playlist is conceptually present but never stored, so it is filtered
// out of whatever the registry row contains.
func (c *Catalog) LoadAll() error {
	tracks, err := c.tracks.ListAll()
	if err != nil {
		return fmt.Errorf("failed to load tracks: %w", err)
	}
	sort.SliceStable(tracks, func(i, j int) bool {
		return tracks[i].CreatedAt.Before(tracks[j].CreatedAt)
	})

	names, err := c.meta.GetPlaylists()
	if err != nil {
		return fmt.Errorf("failed to load playlist registry: %w", err)
	}
	registry := make([]string, 0, len(names))
	for _, name := range names {
		if !models.IsReservedPlaylist(name) {
			registry = append(registry, name)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = tracks
	c.registry = registry
	if c.active != models.AllPlaylist && !slices.Contains(registry, c.active) {
		c.active = models.AllPlaylist
	}

	c.logger.Info("catalog loaded", "tracks", len(tracks), "playlists", len(registry))
	return nil
}

// AddTrack validates, finalizes and persists a track, then appends it to the
// cache. When the catalog is scoped to a real playlist and the caller gave no
// membership, the track joins the active playlist.
func (c *Catalog) AddTrack(track *models.Track) (*models.Track, error) {
	if track == nil {
		return nil, fmt.Errorf("%w: nil track", shared.ErrInvalidInput)
	}
	if err := track.Validate(); err != nil {
		return nil, err
	}

	if track.ID == "" {
		track.ID = shared.GenerateID()
	}
	if track.CreatedAt.IsZero() {
		track.CreatedAt = time.Now()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// nil means the caller chose nothing and the active scope applies; an
	// explicit empty slice (an imported membership-less track) stays empty
	if track.Playlists == nil && c.active != models.AllPlaylist {
		track.Playlists = []string{c.active}
	}
	if track.Playlists == nil {
		track.Playlists = []string{}
	}

	if err := c.tracks.Put(track); err != nil {
		return nil, err
	}

	// the store upserts by id; mirror that in the cache
	replaced := false
	for i, t := range c.cache {
		if t.ID == track.ID {
			c.cache[i] = track
			replaced = true
			break
		}
	}
	if !replaced {
		c.cache = append(c.cache, track)
	}

	c.logger.Info("track added", "id", track.ID, "title", track.DisplayTitle(), "type", track.Type)
	return track, nil
}

// DeleteTrack removes a track from the store and the cache, then lets the
// registered unbinder know so a bound sink is released.
func (c *Catalog) DeleteTrack(id string) error {
	c.mu.Lock()
	if err := c.tracks.Delete(id); err != nil {
		c.mu.Unlock()
		return err
	}
	for i, t := range c.cache {
		if t.ID == id {
			c.cache = append(c.cache[:i], c.cache[i+1:]...)
			break
		}
	}
	unbinder := c.unbinder
	c.mu.Unlock()

	if unbinder != nil {
		unbinder.TrackRemoved(id)
	}

	c.logger.Info("track deleted", "id", id)
	return nil
}

// CreatePlaylist appends a name to the registry and persists it. Creating an
// existing playlist is a no-op; the reserved name is rejected.
func (c *Catalog) CreatePlaylist(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty playlist name", shared.ErrInvalidInput)
	}
	if models.IsReservedPlaylist(name) {
		return fmt.Errorf("%w: %q", shared.ErrReservedPlaylist, name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if slices.Contains(c.registry, name) {
		return nil
	}

	next := append(slices.Clone(c.registry), name)
	if err := c.meta.SetPlaylists(next); err != nil {
		return err
	}
	c.registry = next

	c.logger.Info("playlist created", "name", name)
	return nil
}

// SetActive switches the active playlist selection. Unknown names fall back
// to the reserved all-tracks selection.
func (c *Catalog) SetActive(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if name == models.AllPlaylist || slices.Contains(c.registry, name) {
		c.active = name
		return
	}
	c.active = models.AllPlaylist
}

// Active returns the current playlist selection.
func (c *Catalog) Active() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Tracks returns a copy of the cached track list in creation order.
func (c *Catalog) Tracks() []*models.Track {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.cache)
}

// Playlists enumerates the registry with the reserved name implicitly first.
func (c *Catalog) Playlists() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string{models.AllPlaylist}, c.registry...)
}

// Get looks up a cached track by id.
func (c *Catalog) Get(id string) (*models.Track, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range c.cache {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}
