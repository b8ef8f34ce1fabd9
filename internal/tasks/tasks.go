// Package tasks implements the catalog's long-running operations: adding a
// track from a remote URL, importing a local file, and moving the whole
// library through the export/import bridge.
//
// Operations emit progress updates via channels for non-blocking status
// reporting to CLI/UI layers. Every mutation goes through the catalog so the
// payload store is never bypassed.
package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/postify/postify/internal/bridge"
	"github.com/postify/postify/internal/catalog"
	"github.com/postify/postify/internal/models"
	"github.com/postify/postify/internal/services"
	"github.com/postify/postify/internal/shared"
)

// AddRemoteOptions configures an add-from-URL operation.
//
// A track may join several playlists at creation time: the explicitly chosen
// ones plus NewPlaylist, created on the fly when it does not exist yet. When
// none are given the catalog's active playlist scoping applies.
type AddRemoteOptions struct {
	URL         string
	Title       string
	Artist      string
	Playlists   []string
	NewPlaylist string
	CoverPath   string
}

// AddLocalOptions configures a local file import.
type AddLocalOptions struct {
	Path      string
	Title     string
	Artist    string
	CoverPath string
}

// ImportResult summarizes a library import.
type ImportResult struct {
	TracksImported   int
	PlaylistsCreated int
}

// Engine orchestrates acquisition, catalog and bridge.
type Engine struct {
	acquirer services.Acquirer
	catalog  *catalog.Catalog
	logger   *log.Logger
}

// NewEngine creates an Engine over the given collaborators.
func NewEngine(acquirer services.Acquirer, cat *catalog.Catalog, logger *log.Logger) *Engine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Engine{acquirer: acquirer, catalog: cat, logger: logger}
}

// AddFromURL resolves a remote URL through the acquisition backend and
// persists the resulting stream track. A backend failure aborts the whole
// flow: no track is created and the registry is untouched.
func (e *Engine) AddFromURL(ctx context.Context, progress chan<- ProgressUpdate, opts AddRemoteOptions) (*models.Track, error) {
	if e.acquirer == nil {
		return nil, fmt.Errorf("%w: acquisition backend not configured", shared.ErrServiceUnavailable)
	}

	e.sendProgress(progress, acquireUpdate(opts.URL))

	result, err := e.acquirer.Fetch(ctx, services.AcquisitionRequest{URL: opts.URL, Title: opts.Title})
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(opts.Title)
	if title == "" {
		title = result.Title
	}

	memberships, err := e.resolveMemberships(opts.Playlists, opts.NewPlaylist)
	if err != nil {
		return nil, err
	}

	var cover []byte
	if opts.CoverPath != "" {
		if cover, err = os.ReadFile(opts.CoverPath); err != nil {
			return nil, fmt.Errorf("%w: failed to read cover %s: %v", shared.ErrInvalidInput, opts.CoverPath, err)
		}
	}

	e.sendProgress(progress, persistUpdate(title))

	track := &models.Track{
		Title:         title,
		Artist:        opts.Artist,
		Type:          models.TypeRemoteStream,
		StreamLocator: result.DirectLink,
		CoverPayload:  cover,
		Playlists:     memberships,
	}
	return e.catalog.AddTrack(track)
}

// AddLocalFile imports an audio file from disk as a local track. The title
// defaults to the file name without its extension.
func (e *Engine) AddLocalFile(ctx context.Context, progress chan<- ProgressUpdate, opts AddLocalOptions) (*models.Track, error) {
	e.sendProgress(progress, readPayloadUpdate(opts.Path))

	payload, err := os.ReadFile(opts.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %v", shared.ErrInvalidInput, opts.Path, err)
	}

	var cover []byte
	if opts.CoverPath != "" {
		if cover, err = os.ReadFile(opts.CoverPath); err != nil {
			return nil, fmt.Errorf("%w: failed to read cover %s: %v", shared.ErrInvalidInput, opts.CoverPath, err)
		}
	}

	title := strings.TrimSpace(opts.Title)
	if title == "" {
		base := filepath.Base(opts.Path)
		title = strings.TrimSuffix(base, filepath.Ext(base))
	}

	e.sendProgress(progress, persistUpdate(title))

	track := &models.Track{
		Title:        title,
		Artist:       opts.Artist,
		Type:         models.TypeLocalAudio,
		AudioPayload: payload,
		CoverPayload: cover,
	}
	return e.catalog.AddTrack(track)
}

// ExportLibrary writes the whole catalog as a JSON document.
func (e *Engine) ExportLibrary(ctx context.Context, progress chan<- ProgressUpdate, w io.Writer) error {
	tracks := e.catalog.Tracks()
	e.sendProgress(progress, exportUpdate(1, len(tracks)))

	doc := bridge.ExportLibrary(tracks, e.catalog.Playlists())

	enc := json.NewEncoder(w)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to write export document: %w", err)
	}

	e.logger.Info("library exported", "tracks", len(doc.Tracks), "playlists", len(doc.Playlists))
	return nil
}

// ExportLibraryFile is ExportLibrary against a file path.
func (e *Engine) ExportLibraryFile(ctx context.Context, progress chan<- ProgressUpdate, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()
	return e.ExportLibrary(ctx, progress, f)
}

// ImportLibrary merges a JSON export document into the catalog: playlists
// are deduplicated into the registry, tracks are upserted additively.
// Entries that fail to decode are skipped and counted, not fatal.
func (e *Engine) ImportLibrary(ctx context.Context, progress chan<- ProgressUpdate, r io.Reader) (*ImportResult, error) {
	var doc bridge.LibraryDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: malformed import document: %v", shared.ErrInvalidInput, err)
	}

	result := &ImportResult{}

	e.sendProgress(progress, ProgressUpdate{Phase: MergeRegistry, Total: len(doc.Playlists), Message: "Merging playlists..."})
	existing := e.catalog.Playlists()
	known := make(map[string]struct{}, len(existing))
	for _, name := range existing {
		known[name] = struct{}{}
	}
	for _, name := range bridge.MergePlaylists(doc.Playlists) {
		if _, ok := known[name]; ok {
			continue
		}
		if err := e.catalog.CreatePlaylist(name); err != nil {
			return result, err
		}
		result.PlaylistsCreated++
	}

	for i, entry := range doc.Tracks {
		e.sendProgress(progress, importUpdate(i+1, len(doc.Tracks), entry.Title))

		track, err := bridge.DecodeTrack(entry)
		if err != nil {
			e.logger.Warn("skipping invalid track entry", "title", entry.Title, "error", err)
			continue
		}
		if _, err := e.catalog.AddTrack(track); err != nil {
			return result, err
		}
		result.TracksImported++
	}

	e.logger.Info("library imported", "tracks", result.TracksImported, "playlists", result.PlaylistsCreated)
	return result, nil
}

// ImportLibraryFile is ImportLibrary against a file path.
func (e *Engine) ImportLibraryFile(ctx context.Context, progress chan<- ProgressUpdate, path string) (*ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open import file: %v", shared.ErrInvalidInput, err)
	}
	defer f.Close()
	return e.ImportLibrary(ctx, progress, f)
}

// resolveMemberships combines chosen playlist names with an optionally
// created new one. Creation happens before the track write, matching the
// registry-first order of the original flow.
func (e *Engine) resolveMemberships(chosen []string, newName string) ([]string, error) {
	memberships := make([]string, 0, len(chosen)+1)
	for _, name := range chosen {
		name = strings.TrimSpace(name)
		if name == "" || models.IsReservedPlaylist(name) {
			continue
		}
		memberships = append(memberships, name)
	}

	newName = strings.TrimSpace(newName)
	if newName != "" {
		if err := e.catalog.CreatePlaylist(newName); err != nil {
			return nil, err
		}
		memberships = append(memberships, newName)
	}

	// nil means "nothing chosen" so the catalog's active-playlist default
	// still applies
	if len(memberships) == 0 {
		return nil, nil
	}
	return memberships, nil
}

// sendProgress delivers an update without blocking when nobody listens.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}
