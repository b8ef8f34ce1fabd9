package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/postify/postify/internal/catalog"
	"github.com/postify/postify/internal/models"
	"github.com/postify/postify/internal/player"
	"github.com/postify/postify/internal/shared"
	"github.com/urfave/cli/v3"
)

// Play builds a queue from the filtered catalog and drives the configured
// external player over it, looping until interrupted.
func (r *Runner) Play(ctx context.Context, cmd *cli.Command) error {
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
	if len(projected) == 0 {
		return fmt.Errorf("%w: nothing matches playlist %q", shared.ErrEmptyQueue, playlist)
	}

	ids := make([]string, len(projected))
	for i, track := range projected {
		ids[i] = track.ID
	}

	index := cmd.Int("index")
	if index < 0 || index >= len(ids) {
		return fmt.Errorf("%w: index %d out of range [0, %d)", shared.ErrInvalidFlag, index, len(ids))
	}

	controller := player.NewController(cat, r.logger)
	cat.SetUnbinder(controller)
	sink := player.NewExecSink(r.config.Player.Command, r.config.Player.Args, controller, r.logger)
	controller.SetSink(sink)

	events := make(chan struct {
		state   player.State
		trackID string
		err     error
	}, 16)
	controller.SetNotifier(func(state player.State, trackID string, err error) {
		select {
		case events <- struct {
			state   player.State
			trackID string
			err     error
		}{state, trackID, err}:
		default:
		}
	})

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := controller.PlayAt(ctx, ids, index); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return controller.Stop()
		case ev := <-events:
			switch ev.state {
			case player.StatePlaying:
				if track, ok := cat.Get(ev.trackID); ok {
					r.writePlain("▶ %s - %s\n", track.DisplayArtist(), track.DisplayTitle())
				}
			case player.StatePaused:
				r.writePlain("⏸ paused\n")
			case player.StateEnded:
				if ev.err != nil {
					return ev.err
				}
				return nil
			case player.StateIdle:
				return nil
			}
		}
	}
}
