package main

import (
	"context"
	"fmt"

	"github.com/postify/postify/internal/models"
	"github.com/postify/postify/internal/shared"
	"github.com/urfave/cli/v3"
)

// PlaylistCreate adds a name to the playlist registry.
func (r *Runner) PlaylistCreate(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("name")
	if name == "" {
		return fmt.Errorf("%w: playlist name", shared.ErrMissingArgument)
	}

	cat, db, err := r.openCatalog()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := cat.CreatePlaylist(name); err != nil {
		return fmt.Errorf("failed to create playlist: %w", err)
	}

	r.writePlain("✓ Playlist %q created\n", name)
	return nil
}

// PlaylistList prints the registry with the all-tracks pseudo-playlist first
// and a per-playlist track count.
func (r *Runner) PlaylistList(ctx context.Context, cmd *cli.Command) error {
	cat, db, err := r.openCatalog()
	if err != nil {
		return err
	}
	defer db.Close()

	tracks := cat.Tracks()
	for _, name := range cat.Playlists() {
		count := 0
		for _, track := range tracks {
			if name == models.AllPlaylist || track.InPlaylist(name) {
				count++
			}
		}
		r.writePlain("%s (%d)\n", name, count)
	}
	return nil
}
