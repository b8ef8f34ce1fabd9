// Package player implements the playback queue and the finite-state
// controller that drives a single media sink against it.
package player

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/postify/postify/internal/models"
	"github.com/postify/postify/internal/shared"
)

// State is the playback controller state.
type State int

const (
	StateIdle State = iota
	StateLoading
	StatePlaying
	StatePaused
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateEnded:
		return "ended"
	default:
		return ""
	}
}

// Resolver looks up tracks by id. The catalog satisfies this.
type Resolver interface {
	Get(id string) (*models.Track, bool)
}

// Notifier receives state change notifications for display layers.
// Calls arrive with no controller lock held.
type Notifier func(state State, trackID string, err error)

// Controller is the finite-state playback engine.
//
// Transport commands and sink events are serialized on one mutex, so the
// controller never observes sink state that does not match its own. It owns
// at most one live payload handle, released on every rebind, stop and unbind.
type Controller struct {
	mu       sync.Mutex
	sink     Sink
	resolver Resolver
	logger   *log.Logger
	notify   Notifier

	queue   Queue
	state   State
	boundID string
	source  *Source
	lastErr error
}

// NewController creates a controller over the given resolver. The sink is
// attached afterwards with [Controller.SetSink] because concrete sinks report
// their events back into the controller.
func NewController(resolver Resolver, logger *log.Logger) *Controller {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Controller{
		resolver: resolver,
		logger:   logger,
		queue:    NewQueue(),
		state:    StateIdle,
	}
}

// SetSink attaches the media output.
func (c *Controller) SetSink(s Sink) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sink = s
}

// SetNotifier registers a state change observer.
func (c *Controller) SetNotifier(n Notifier) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notify = n
}

// PlayAt snapshots the given id list as the new queue, sets the cursor and
// binds the referenced track. An out-of-range index is a no-op.
func (c *Controller) PlayAt(ctx context.Context, ids []string, index int) error {
	if index < 0 || index >= len(ids) {
		return nil
	}

	c.mu.Lock()
	c.queue = Snapshot(ids, index)
	err := c.bindLocked(ctx, +1)
	notify := c.notifyLocked()
	c.mu.Unlock()

	notify()
	return err
}

// TogglePlayPause pauses a playing sink or resumes a paused one. Any other
// state is a no-op.
func (c *Controller) TogglePlayPause() error {
	c.mu.Lock()
	var err error
	switch c.state {
	case StatePlaying:
		if c.sink == nil {
			err = fmt.Errorf("%w", shared.ErrSinkNotReady)
		} else if err = c.sink.Pause(); err == nil {
			c.state = StatePaused
		}
	case StatePaused:
		if c.sink == nil {
			err = fmt.Errorf("%w", shared.ErrSinkNotReady)
		} else if err = c.sink.Resume(); err == nil {
			c.state = StatePlaying
		}
	}
	notify := c.notifyLocked()
	c.mu.Unlock()

	notify()
	return err
}

// Stop halts the sink and returns to Idle. The queue snapshot and cursor are
// retained so playback can restart where it was.
func (c *Controller) Stop() error {
	c.mu.Lock()
	var err error
	if c.sink != nil {
		err = c.sink.Stop()
	}
	c.unbindLocked()
	c.state = StateIdle
	c.lastErr = nil
	notify := c.notifyLocked()
	c.mu.Unlock()

	notify()
	return err
}

// Advance moves the cursor by direction (+1 or -1), wrapping both ways, and
// binds the track it lands on. Ids the resolver no longer knows are skipped.
func (c *Controller) Advance(ctx context.Context, direction int) error {
	c.mu.Lock()
	if c.queue.Len() == 0 {
		c.mu.Unlock()
		return nil
	}
	c.queue.Advance(direction)
	err := c.bindLocked(ctx, direction)
	notify := c.notifyLocked()
	c.mu.Unlock()

	notify()
	return err
}

// HandleEnded is the sink-driven natural end of media: the same path as
// Advance(+1), wrapping from the last track to the first.
func (c *Controller) HandleEnded() {
	c.mu.Lock()
	if c.state != StatePlaying && c.state != StateLoading {
		// stale event from a superseded bind
		c.mu.Unlock()
		return
	}
	if c.queue.Len() == 0 {
		c.unbindLocked()
		c.state = StateEnded
		notify := c.notifyLocked()
		c.mu.Unlock()
		notify()
		return
	}
	c.queue.Advance(+1)
	c.bindLocked(context.Background(), +1)
	notify := c.notifyLocked()
	c.mu.Unlock()

	notify()
}

// HandleFault is the sink-driven decode or network failure: the controller
// enters Ended carrying the error and does not retry. Faults are accepted
// while Paused too: a suspended player process can still be killed under it.
func (c *Controller) HandleFault(err error) {
	c.mu.Lock()
	if c.state != StatePlaying && c.state != StateLoading && c.state != StatePaused {
		c.mu.Unlock()
		return
	}
	c.releaseLocked()
	c.state = StateEnded
	c.lastErr = fmt.Errorf("%w: %v", shared.ErrSink, err)
	c.logger.Error("sink fault", "track", c.boundID, "error", err)
	notify := c.notifyLocked()
	c.mu.Unlock()

	notify()
}

// TrackRemoved unbinds and idles the controller when the bound track is
// deleted from the catalog. The queue snapshot keeps the stale id; Advance
// skips it later because the resolver no longer knows it.
func (c *Controller) TrackRemoved(id string) {
	c.mu.Lock()
	if c.boundID != id {
		c.mu.Unlock()
		return
	}
	if c.sink != nil {
		c.sink.Stop()
	}
	c.unbindLocked()
	c.state = StateIdle
	notify := c.notifyLocked()
	c.mu.Unlock()

	notify()
}

// State returns the current controller state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// BoundID returns the id of the track currently bound to the sink, or "".
func (c *Controller) BoundID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.boundID
}

// Err returns the surfaced sink error, if the controller is Ended with one.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Cursor returns the queue cursor position.
func (c *Controller) Cursor() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queue.Cursor()
}

// QueueIDs returns a copy of the current queue snapshot.
func (c *Controller) QueueIDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queue.IDs()
}

// bindLocked resolves the id under the cursor and binds the sink to it,
// skipping ids that no longer resolve (at most one full pass over the queue,
// so a fully deleted queue terminates).
func (c *Controller) bindLocked(ctx context.Context, direction int) error {
	if c.sink == nil {
		return fmt.Errorf("%w", shared.ErrSinkNotReady)
	}

	for range c.queue.Len() {
		id, ok := c.queue.Current()
		if !ok {
			break
		}
		track, found := c.resolver.Get(id)
		if !found {
			c.queue.Advance(direction)
			continue
		}

		src, err := NewSource(track)
		if err != nil {
			c.unbindLocked()
			c.state = StateEnded
			c.lastErr = err
			return err
		}

		// the previous handle is superseded; release before rebinding
		c.releaseLocked()
		c.source = src
		c.boundID = track.ID
		c.state = StateLoading
		c.lastErr = nil

		if err := c.sink.Load(ctx, src); err != nil {
			c.releaseLocked()
			c.state = StateEnded
			c.lastErr = fmt.Errorf("%w: %v", shared.ErrSink, err)
			return c.lastErr
		}

		c.state = StatePlaying
		c.logger.Debug("sink bound", "track", track.ID, "cursor", c.queue.Cursor())
		return nil
	}

	// nothing in the snapshot resolves anymore
	c.unbindLocked()
	c.state = StateIdle
	return nil
}

// releaseLocked frees the live payload handle, if any.
func (c *Controller) releaseLocked() {
	if c.source != nil {
		c.source.release()
		c.source = nil
	}
}

// unbindLocked releases the handle and clears the bound track.
func (c *Controller) unbindLocked() {
	c.releaseLocked()
	c.boundID = ""
}

// notifyLocked captures the observer and current state for invocation after
// the lock is dropped.
func (c *Controller) notifyLocked() func() {
	if c.notify == nil {
		return func() {}
	}
	n, state, id, err := c.notify, c.state, c.boundID, c.lastErr
	return func() { n(state, id, err) }
}
