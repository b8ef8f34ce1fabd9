package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/postify/postify/internal/catalog"
	"github.com/postify/postify/internal/repositories"
	"github.com/postify/postify/internal/services"
	"github.com/postify/postify/internal/shared"
	"github.com/postify/postify/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config   *shared.Config
	acquirer services.Acquirer
	logger   *log.Logger
	output   io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config   *shared.Config
	Acquirer services.Acquirer
	Logger   *log.Logger
	Output   io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Acquirer == nil {
		opts.Acquirer = services.NewAcquisitionService(services.AcquisitionOpts{
			BaseURL:   opts.Config.Backend.BaseURL,
			APIToken:  opts.Config.Backend.APIToken,
			RateLimit: opts.Config.Backend.RateLimit,
		})
	}

	return &Runner{
		config:   opts.Config,
		acquirer: opts.Acquirer,
		logger:   opts.Logger,
		output:   opts.Output,
	}
}

// SetLogger replaces the runner's logger.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, addCommand, fetchCommand, listCommand, removeCommand, playlistCommand, playCommand, exportCommand, importCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// openCatalog opens the configured database and hydrates the catalog from it.
// The caller closes the returned handle.
func (r *Runner) openCatalog() (*catalog.Catalog, *sql.DB, error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	cat := catalog.New(repositories.NewTrackRepository(db), repositories.NewMetaRepository(db), r.logger)
	if err := cat.LoadAll(); err != nil {
		db.Close()
		return nil, nil, err
	}
	return cat, db, nil
}

// newEngine builds a task engine over a freshly opened catalog.
func (r *Runner) newEngine() (*tasks.Engine, *sql.DB, error) {
	cat, db, err := r.openCatalog()
	if err != nil {
		return nil, nil, err
	}
	return tasks.NewEngine(r.acquirer, cat, r.logger), db, nil
}

// reportProgress drains a progress channel to stderr until it is closed.
func (r *Runner) reportProgress(progress <-chan tasks.ProgressUpdate) chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			fmt.Fprintf(os.Stderr, "[%s] %s\n", update.Phase, update.Message)
		}
	}()
	return done
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
