package player

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/postify/postify/internal/models"
	"github.com/postify/postify/internal/shared"
)

// fakeResolver resolves tracks from a map, like the catalog cache does.
type fakeResolver struct {
	tracks map[string]*models.Track
}

func (r *fakeResolver) Get(id string) (*models.Track, bool) {
	t, ok := r.tracks[id]
	return t, ok
}

func (r *fakeResolver) remove(id string) {
	delete(r.tracks, id)
}

// fakeSink records transport calls and can be told to fail loads.
type fakeSink struct {
	mu       sync.Mutex
	loaded   []string
	paused   int
	resumed  int
	stopped  int
	failLoad error
}

func (s *fakeSink) Load(ctx context.Context, src *Source) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failLoad != nil {
		return s.failLoad
	}
	s.loaded = append(s.loaded, src.TrackID)
	return nil
}

func (s *fakeSink) Pause() error  { s.mu.Lock(); defer s.mu.Unlock(); s.paused++; return nil }
func (s *fakeSink) Resume() error { s.mu.Lock(); defer s.mu.Unlock(); s.resumed++; return nil }
func (s *fakeSink) Stop() error   { s.mu.Lock(); defer s.mu.Unlock(); s.stopped++; return nil }

func (s *fakeSink) loadedIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.loaded))
	copy(out, s.loaded)
	return out
}

func setupController(ids ...string) (*Controller, *fakeResolver, *fakeSink) {
	resolver := &fakeResolver{tracks: map[string]*models.Track{}}
	for _, id := range ids {
		resolver.tracks[id] = &models.Track{
			ID:            id,
			Title:         id,
			Type:          models.TypeRemoteStream,
			StreamLocator: "https://stream.example.com/" + id,
		}
	}
	ctrl := NewController(resolver, nil)
	sink := &fakeSink{}
	ctrl.SetSink(sink)
	return ctrl, resolver, sink
}

func TestQueueWrap(t *testing.T) {
	t.Run("advancing L times returns to the start cursor", func(t *testing.T) {
		q := Snapshot([]string{"a", "b", "c"}, 1)
		for range 3 {
			q.Advance(+1)
		}
		if q.Cursor() != 1 {
			t.Errorf("expected cursor 1 after full wrap, got %d", q.Cursor())
		}
	})

	t.Run("backwards from zero wraps to the end", func(t *testing.T) {
		q := Snapshot([]string{"a", "b", "c"}, 0)
		q.Advance(-1)
		if q.Cursor() != 2 {
			t.Errorf("expected cursor 2, got %d", q.Cursor())
		}
	})

	t.Run("empty queue never moves", func(t *testing.T) {
		q := NewQueue()
		q.Advance(+1)
		if q.Cursor() != -1 {
			t.Errorf("expected cursor -1, got %d", q.Cursor())
		}
		if _, ok := q.Current(); ok {
			t.Error("empty queue has no current id")
		}
	})
}

func TestPlayAt(t *testing.T) {
	t.Run("binds and plays", func(t *testing.T) {
		ctrl, _, sink := setupController("a", "b", "c")

		if err := ctrl.PlayAt(context.Background(), []string{"a", "b", "c"}, 1); err != nil {
			t.Fatalf("PlayAt failed: %v", err)
		}
		if ctrl.State() != StatePlaying {
			t.Errorf("expected playing, got %s", ctrl.State())
		}
		if ctrl.BoundID() != "b" {
			t.Errorf("expected bound track b, got %s", ctrl.BoundID())
		}
		if got := sink.loadedIDs(); len(got) != 1 || got[0] != "b" {
			t.Errorf("expected sink load of b, got %v", got)
		}
	})

	t.Run("out of range index is a no-op", func(t *testing.T) {
		ctrl, _, sink := setupController("a")

		for _, idx := range []int{-1, 1, 5} {
			if err := ctrl.PlayAt(context.Background(), []string{"a"}, idx); err != nil {
				t.Fatalf("PlayAt(%d) errored: %v", idx, err)
			}
		}
		if ctrl.State() != StateIdle {
			t.Errorf("expected idle, got %s", ctrl.State())
		}
		if len(sink.loadedIDs()) != 0 {
			t.Error("sink should never have been bound")
		}
	})

	t.Run("snapshot survives later list changes", func(t *testing.T) {
		ctrl, _, _ := setupController("a", "b")

		list := []string{"a", "b"}
		if err := ctrl.PlayAt(context.Background(), list, 0); err != nil {
			t.Fatalf("PlayAt failed: %v", err)
		}
		list[1] = "mutated"

		got := ctrl.QueueIDs()
		if len(got) != 2 || got[1] != "b" {
			t.Errorf("queue snapshot shares memory with the caller: %v", got)
		}
	})
}

func TestTogglePlayPause(t *testing.T) {
	ctrl, _, sink := setupController("a")

	// no-op from idle
	if err := ctrl.TogglePlayPause(); err != nil {
		t.Fatalf("toggle from idle errored: %v", err)
	}
	if ctrl.State() != StateIdle {
		t.Errorf("expected idle, got %s", ctrl.State())
	}

	if err := ctrl.PlayAt(context.Background(), []string{"a"}, 0); err != nil {
		t.Fatalf("PlayAt failed: %v", err)
	}

	if err := ctrl.TogglePlayPause(); err != nil {
		t.Fatalf("pause failed: %v", err)
	}
	if ctrl.State() != StatePaused || sink.paused != 1 {
		t.Errorf("expected paused state with one sink pause, got %s/%d", ctrl.State(), sink.paused)
	}

	if err := ctrl.TogglePlayPause(); err != nil {
		t.Fatalf("resume failed: %v", err)
	}
	if ctrl.State() != StatePlaying || sink.resumed != 1 {
		t.Errorf("expected playing state with one sink resume, got %s/%d", ctrl.State(), sink.resumed)
	}
}

func TestStop(t *testing.T) {
	ctrl, _, sink := setupController("a", "b")

	if err := ctrl.PlayAt(context.Background(), []string{"a", "b"}, 1); err != nil {
		t.Fatalf("PlayAt failed: %v", err)
	}
	if err := ctrl.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	if ctrl.State() != StateIdle {
		t.Errorf("expected idle, got %s", ctrl.State())
	}
	if ctrl.BoundID() != "" {
		t.Error("stop should unbind the sink")
	}
	if sink.stopped != 1 {
		t.Errorf("expected one sink stop, got %d", sink.stopped)
	}

	// queue and cursor are retained
	if got := ctrl.QueueIDs(); len(got) != 2 {
		t.Errorf("queue should survive stop, got %v", got)
	}
	if ctrl.Cursor() != 1 {
		t.Errorf("cursor should survive stop, got %d", ctrl.Cursor())
	}
}

func TestAdvance(t *testing.T) {
	t.Run("wraps both directions", func(t *testing.T) {
		ctrl, _, _ := setupController("a", "b", "c")

		if err := ctrl.PlayAt(context.Background(), []string{"a", "b", "c"}, 0); err != nil {
			t.Fatalf("PlayAt failed: %v", err)
		}

		if err := ctrl.Advance(context.Background(), -1); err != nil {
			t.Fatalf("Advance failed: %v", err)
		}
		if ctrl.BoundID() != "c" {
			t.Errorf("expected wrap to c, got %s", ctrl.BoundID())
		}

		if err := ctrl.Advance(context.Background(), +1); err != nil {
			t.Fatalf("Advance failed: %v", err)
		}
		if ctrl.BoundID() != "a" {
			t.Errorf("expected wrap to a, got %s", ctrl.BoundID())
		}
	})

	t.Run("skips ids deleted from the catalog", func(t *testing.T) {
		ctrl, resolver, sink := setupController("a", "b", "c")

		if err := ctrl.PlayAt(context.Background(), []string{"a", "b", "c"}, 0); err != nil {
			t.Fatalf("PlayAt failed: %v", err)
		}
		resolver.remove("b")

		if err := ctrl.Advance(context.Background(), +1); err != nil {
			t.Fatalf("Advance failed: %v", err)
		}
		if ctrl.BoundID() != "c" {
			t.Errorf("expected skip to c, got %s", ctrl.BoundID())
		}
		if got := sink.loadedIDs(); got[len(got)-1] != "c" {
			t.Errorf("sink bound to %s, expected c", got[len(got)-1])
		}
	})

	t.Run("fully deleted queue idles", func(t *testing.T) {
		ctrl, resolver, _ := setupController("a", "b")

		if err := ctrl.PlayAt(context.Background(), []string{"a", "b"}, 0); err != nil {
			t.Fatalf("PlayAt failed: %v", err)
		}
		resolver.remove("a")
		resolver.remove("b")

		if err := ctrl.Advance(context.Background(), +1); err != nil {
			t.Fatalf("Advance failed: %v", err)
		}
		if ctrl.State() != StateIdle || ctrl.BoundID() != "" {
			t.Errorf("expected idle and unbound, got %s/%q", ctrl.State(), ctrl.BoundID())
		}
	})
}

func TestSinkEvents(t *testing.T) {
	t.Run("ended advances and wraps to the first track", func(t *testing.T) {
		ctrl, _, _ := setupController("a", "b", "c")

		if err := ctrl.PlayAt(context.Background(), []string{"a", "b", "c"}, 2); err != nil {
			t.Fatalf("PlayAt failed: %v", err)
		}
		ctrl.HandleEnded()

		if ctrl.BoundID() != "a" {
			t.Errorf("expected wrap to a, got %s", ctrl.BoundID())
		}
		if ctrl.State() != StatePlaying {
			t.Errorf("expected playing, got %s", ctrl.State())
		}
	})

	t.Run("fault ends with a surfaced error and no retry", func(t *testing.T) {
		ctrl, _, sink := setupController("a")

		if err := ctrl.PlayAt(context.Background(), []string{"a"}, 0); err != nil {
			t.Fatalf("PlayAt failed: %v", err)
		}
		ctrl.HandleFault(errors.New("decode error"))

		if ctrl.State() != StateEnded {
			t.Errorf("expected ended, got %s", ctrl.State())
		}
		if !errors.Is(ctrl.Err(), shared.ErrSink) {
			t.Errorf("expected ErrSink, got %v", ctrl.Err())
		}
		if got := sink.loadedIDs(); len(got) != 1 {
			t.Errorf("fault must not trigger a rebind, sink loads: %v", got)
		}
	})

	t.Run("fault while paused still ends playback", func(t *testing.T) {
		ctrl, _, _ := setupController("a")

		if err := ctrl.PlayAt(context.Background(), []string{"a"}, 0); err != nil {
			t.Fatalf("PlayAt failed: %v", err)
		}
		if err := ctrl.TogglePlayPause(); err != nil {
			t.Fatalf("pause failed: %v", err)
		}
		ctrl.HandleFault(errors.New("process killed"))

		if ctrl.State() != StateEnded {
			t.Errorf("expected ended, got %s", ctrl.State())
		}
		if !errors.Is(ctrl.Err(), shared.ErrSink) {
			t.Errorf("expected ErrSink, got %v", ctrl.Err())
		}
	})

	t.Run("stale events after stop are discarded", func(t *testing.T) {
		ctrl, _, _ := setupController("a", "b")

		if err := ctrl.PlayAt(context.Background(), []string{"a", "b"}, 0); err != nil {
			t.Fatalf("PlayAt failed: %v", err)
		}
		if err := ctrl.Stop(); err != nil {
			t.Fatalf("Stop failed: %v", err)
		}

		ctrl.HandleEnded()
		if ctrl.State() != StateIdle {
			t.Errorf("stale ended event changed state to %s", ctrl.State())
		}

		ctrl.HandleFault(errors.New("late"))
		if ctrl.State() != StateIdle || ctrl.Err() != nil {
			t.Error("stale fault event should be ignored")
		}
	})
}

func TestTrackRemoved(t *testing.T) {
	ctrl, resolver, sink := setupController("a", "b")

	if err := ctrl.PlayAt(context.Background(), []string{"a", "b"}, 0); err != nil {
		t.Fatalf("PlayAt failed: %v", err)
	}

	// deleting an unrelated track changes nothing
	ctrl.TrackRemoved("b")
	if ctrl.State() != StatePlaying || ctrl.BoundID() != "a" {
		t.Errorf("unrelated delete disturbed playback: %s/%s", ctrl.State(), ctrl.BoundID())
	}

	// deleting the bound track idles and unbinds
	resolver.remove("a")
	ctrl.TrackRemoved("a")
	if ctrl.State() != StateIdle || ctrl.BoundID() != "" {
		t.Errorf("expected idle and unbound, got %s/%q", ctrl.State(), ctrl.BoundID())
	}
	if sink.stopped != 1 {
		t.Errorf("expected sink stop on unbind, got %d", sink.stopped)
	}

	// the snapshot keeps the stale id but advance skips it
	if got := ctrl.QueueIDs(); len(got) != 2 {
		t.Errorf("snapshot should keep the stale id, got %v", got)
	}
	if err := ctrl.Advance(context.Background(), +1); err != nil {
		t.Fatalf("Advance failed: %v", err)
	}
	if ctrl.BoundID() != "b" {
		t.Errorf("expected b after skipping the stale id, got %s", ctrl.BoundID())
	}
}

func TestLocalPayloadHandles(t *testing.T) {
	resolver := &fakeResolver{tracks: map[string]*models.Track{
		"local": {
			ID:           "local",
			Type:         models.TypeLocalAudio,
			AudioPayload: []byte("payload bytes"),
		},
		"stream": {
			ID:            "stream",
			Type:          models.TypeRemoteStream,
			StreamLocator: "https://stream.example.com/s",
		},
	}}
	ctrl := NewController(resolver, nil)
	sink := &fakeSink{}
	ctrl.SetSink(sink)

	if err := ctrl.PlayAt(context.Background(), []string{"local", "stream"}, 0); err != nil {
		t.Fatalf("PlayAt failed: %v", err)
	}

	ctrl.mu.Lock()
	path := ctrl.source.Path()
	ctrl.mu.Unlock()
	if path == "" {
		t.Fatal("local track should be bound through a file handle")
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("handle file missing: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "payload bytes" {
		t.Errorf("handle does not expose the payload bytes: %v", err)
	}

	// rebinding to the stream releases the superseded handle
	if err := ctrl.Advance(context.Background(), +1); err != nil {
		t.Fatalf("Advance failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("superseded handle was not released")
	}
}

func TestHandleRelease(t *testing.T) {
	h, err := NewHandle([]byte{0x01, 0x02})
	if err != nil {
		t.Fatalf("failed to create handle: %v", err)
	}

	path := h.Path()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("handle file missing: %v", err)
	}

	h.Release()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("release did not remove the backing file")
	}

	// double release is safe
	h.Release()
}
