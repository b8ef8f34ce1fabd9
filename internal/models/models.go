// package models defines the data model for the Postify media catalog
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/postify/postify/internal/shared"
)

// AllPlaylist is the reserved pseudo-playlist meaning "all tracks".
//
// It is always enumerated first, cannot be created or deleted, and is never
// written to the persisted registry.
const AllPlaylist = "Tous"

// Placeholder strings used when a track carries no title or artist.
const (
	UntitledTrack = "Sans titre"
	UnknownArtist = "—"
)

// TrackType discriminates between the two playable source kinds.
type TrackType string

const (
	TypeLocalAudio   TrackType = "audio"  // bytes stored in the record
	TypeRemoteStream TrackType = "stream" // locator URL, bytes stay remote
)

// Track is a single catalog entry.
//
// AudioPayload is present iff Type is [TypeLocalAudio]; StreamLocator is
// present iff Type is [TypeRemoteStream]. CoverPayload is optional artwork,
// independent of the source kind.
type Track struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Artist        string    `json:"artist"`
	Type          TrackType `json:"type"`
	AudioPayload  []byte    `json:"-"`
	StreamLocator string    `json:"streamUrl,omitempty"`
	CoverPayload  []byte    `json:"-"`
	Playlists     []string  `json:"playlists"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Validate checks that the track has exactly one playable source and that it
// matches the declared type.
func (t *Track) Validate() error {
	switch t.Type {
	case TypeLocalAudio:
		if len(t.AudioPayload) == 0 {
			return fmt.Errorf("%w: local track has no audio payload", shared.ErrInvalidTrack)
		}
		if t.StreamLocator != "" {
			return fmt.Errorf("%w: local track carries a stream locator", shared.ErrInvalidTrack)
		}
	case TypeRemoteStream:
		if t.StreamLocator == "" {
			return fmt.Errorf("%w: stream track has no locator", shared.ErrInvalidTrack)
		}
		if len(t.AudioPayload) > 0 {
			return fmt.Errorf("%w: stream track carries an audio payload", shared.ErrInvalidTrack)
		}
	default:
		return fmt.Errorf("%w: unknown track type %q", shared.ErrInvalidTrack, t.Type)
	}
	return nil
}

// DisplayTitle returns the title or the untitled placeholder.
func (t *Track) DisplayTitle() string {
	if strings.TrimSpace(t.Title) == "" {
		return UntitledTrack
	}
	return t.Title
}

// DisplayArtist returns the artist or the unknown placeholder.
func (t *Track) DisplayArtist() string {
	if strings.TrimSpace(t.Artist) == "" {
		return UnknownArtist
	}
	return t.Artist
}

// InPlaylist reports whether the track is a member of the named playlist.
// Every track is a member of [AllPlaylist].
func (t *Track) InPlaylist(name string) bool {
	if name == "" || name == AllPlaylist {
		return true
	}
	for _, p := range t.Playlists {
		if p == name {
			return true
		}
	}
	return false
}

// IsReservedPlaylist reports whether name collides with [AllPlaylist],
// case-insensitively.
func IsReservedPlaylist(name string) bool {
	return strings.EqualFold(strings.TrimSpace(name), AllPlaylist)
}
