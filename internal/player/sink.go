package player

import (
	"context"
	"fmt"
	"os"

	"github.com/postify/postify/internal/models"
	"github.com/postify/postify/internal/shared"
)

// Sink is the single media output the controller drives.
//
// Load binds a source and begins playback; a nil return confirms the start.
// Completion and faults are reported back asynchronously through [Events].
type Sink interface {
	Load(ctx context.Context, src *Source) error
	Pause() error
	Resume() error
	Stop() error
}

// Events receives sink-driven transitions on the controller.
type Events interface {
	HandleEnded()
	HandleFault(err error)
}

// Source is what a sink can actually play: a stream URL for remote tracks,
// or a transient file handle materialized from a stored audio payload.
type Source struct {
	TrackID string
	url     string
	handle  *Handle
}

// Path returns the location the sink should open.
func (s *Source) Path() string {
	if s.handle != nil {
		return s.handle.Path()
	}
	return s.url
}

// release frees the transient handle, if any.
func (s *Source) release() {
	if s != nil && s.handle != nil {
		s.handle.Release()
		s.handle = nil
	}
}

// NewSource derives a playable source from a track. Local payloads become a
// temp-file handle the caller must release when superseded.
func NewSource(track *models.Track) (*Source, error) {
	switch track.Type {
	case models.TypeRemoteStream:
		if track.StreamLocator == "" {
			return nil, fmt.Errorf("%w: %s", shared.ErrNoSource, track.ID)
		}
		return &Source{TrackID: track.ID, url: track.StreamLocator}, nil
	case models.TypeLocalAudio:
		if len(track.AudioPayload) == 0 {
			return nil, fmt.Errorf("%w: %s", shared.ErrNoSource, track.ID)
		}
		h, err := NewHandle(track.AudioPayload)
		if err != nil {
			return nil, err
		}
		return &Source{TrackID: track.ID, handle: h}, nil
	default:
		return nil, fmt.Errorf("%w: %s", shared.ErrNoSource, track.ID)
	}
}

// Handle is a short-lived file view over a stored payload, the Go analogue of
// an object URL. At most one handle per track is live at a time; Release
// removes the backing file so the bytes can be reclaimed.
type Handle struct {
	path string
}

// NewHandle writes the payload to a temp file and returns its handle.
func NewHandle(payload []byte) (*Handle, error) {
	f, err := os.CreateTemp("", "postify-*.media")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create payload handle: %v", shared.ErrSink, err)
	}
	if _, err := f.Write(payload); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, fmt.Errorf("%w: failed to write payload handle: %v", shared.ErrSink, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return nil, fmt.Errorf("%w: failed to close payload handle: %v", shared.ErrSink, err)
	}
	return &Handle{path: f.Name()}, nil
}

// Path returns the backing file path.
func (h *Handle) Path() string {
	return h.path
}

// Release removes the backing file. Safe to call more than once.
func (h *Handle) Release() {
	if h == nil || h.path == "" {
		return
	}
	os.Remove(h.path)
	h.path = ""
}
