package main

import (
	"context"
	"fmt"

	"github.com/postify/postify/internal/catalog"
	"github.com/postify/postify/internal/formatter"
	"github.com/postify/postify/internal/models"
	"github.com/postify/postify/internal/shared"
	"github.com/postify/postify/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Add imports a local audio file into the catalog.
func (r *Runner) Add(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: file path", shared.ErrMissingArgument)
	}

	engine, db, err := r.newEngine()
	if err != nil {
		return err
	}
	defer db.Close()

	progress := make(chan tasks.ProgressUpdate, 16)
	done := r.reportProgress(progress)

	track, err := engine.AddLocalFile(ctx, progress, tasks.AddLocalOptions{
		Path:      path,
		Title:     cmd.String("title"),
		Artist:    cmd.String("artist"),
		CoverPath: cmd.String("cover"),
	})
	close(progress)
	<-done
	if err != nil {
		return fmt.Errorf("failed to add file: %w", err)
	}

	r.writePlain("✓ Added %s - %s (%s)\n", track.DisplayArtist(), track.DisplayTitle(), track.ID)
	return nil
}

// Fetch resolves a remote URL through the acquisition backend and stores the
// resulting stream track. Nothing is created when the backend fails.
func (r *Runner) Fetch(ctx context.Context, cmd *cli.Command) error {
	url := cmd.StringArg("url")
	if url == "" {
		return fmt.Errorf("%w: source URL", shared.ErrMissingArgument)
	}

	engine, db, err := r.newEngine()
	if err != nil {
		return err
	}
	defer db.Close()

	progress := make(chan tasks.ProgressUpdate, 16)
	done := r.reportProgress(progress)

	track, err := engine.AddFromURL(ctx, progress, tasks.AddRemoteOptions{
		URL:         url,
		Title:       cmd.String("title"),
		Artist:      cmd.String("artist"),
		Playlists:   cmd.StringSlice("playlist"),
		NewPlaylist: cmd.String("new-playlist"),
		CoverPath:   cmd.String("cover"),
	})
	close(progress)
	<-done
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", url, err)
	}

	r.writePlain("✓ Added %s - %s (%s)\n", track.DisplayArtist(), track.DisplayTitle(), track.ID)
	return nil
}

// Remove deletes a track by id. Unknown ids fail before touching the store.
func (r *Runner) Remove(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: track id", shared.ErrMissingArgument)
	}

	cat, db, err := r.openCatalog()
	if err != nil {
		return err
	}
	defer db.Close()

	track, ok := cat.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", shared.ErrTrackNotFound, id)
	}
	if err := cat.DeleteTrack(id); err != nil {
		return fmt.Errorf("failed to remove track: %w", err)
	}

	r.writePlain("✓ Removed %s - %s\n", track.DisplayArtist(), track.DisplayTitle())
	return nil
}

// List renders the catalog, optionally scoped to a playlist and filtered by a
// search query, in the requested format.
func (r *Runner) List(ctx context.Context, cmd *cli.Command) error {
	cat, db, err := r.openCatalog()
	if err != nil {
		return err
	}
	defer db.Close()

	playlist := cmd.String("playlist")
	if playlist == "" {
		playlist = models.AllPlaylist
	}
	projected := catalog.Project(cat.Tracks(), playlist, cmd.String("query"))

	var data []byte
	switch format := cmd.String("format"); format {
	case "table":
		data, err = formatter.TracksToTable(projected)
	case "csv":
		data, err = formatter.TracksToCSV(projected)
	case "markdown", "md":
		data, err = formatter.TracksToMarkdown(projected, playlist)
	case "json":
		data, err = formatter.TracksToJSON(projected)
	default:
		return fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, format)
	}
	if err != nil {
		return err
	}

	return r.writePlain("%s", data)
}

// Export writes the whole library to JSON, to a file or stdout.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	engine, db, err := r.newEngine()
	if err != nil {
		return err
	}
	defer db.Close()

	progress := make(chan tasks.ProgressUpdate, 16)
	done := r.reportProgress(progress)
	defer func() { <-done }()
	defer close(progress)

	if output := cmd.String("output"); output != "" {
		if err := engine.ExportLibraryFile(ctx, progress, output); err != nil {
			return err
		}
		return r.writePlain("✓ Library exported to %s\n", output)
	}
	return engine.ExportLibrary(ctx, progress, r.output)
}

// Import merges a library export document into the catalog.
func (r *Runner) Import(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: import file path", shared.ErrMissingArgument)
	}

	engine, db, err := r.newEngine()
	if err != nil {
		return err
	}
	defer db.Close()

	progress := make(chan tasks.ProgressUpdate, 16)
	done := r.reportProgress(progress)

	result, err := engine.ImportLibraryFile(ctx, progress, path)
	close(progress)
	<-done
	if err != nil {
		return fmt.Errorf("failed to import %s: %w", path, err)
	}

	r.writePlain("✓ Imported %d tracks, created %d playlists\n", result.TracksImported, result.PlaylistsCreated)
	return nil
}
