// Package bridge implements the portable export/import document for the
// catalog.
//
// The document is plain JSON; binary payloads cross the boundary as data
// URLs (base64), the only place where payload bytes take a textual form. The
// shape matches what earlier Postify clients produced, so old exports import
// cleanly.
package bridge

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/postify/postify/internal/models"
	"github.com/postify/postify/internal/shared"
)

// LibraryDocument is the exported catalog: every track plus the playlist
// registry (reserved name included for compatibility, ignored on import).
type LibraryDocument struct {
	Tracks    []TrackDocument `json:"tracks"`
	Playlists []string        `json:"playlists"`
}

// TrackDocument is one track entry in the export document.
type TrackDocument struct {
	ID           string   `json:"id,omitempty"`
	Title        string   `json:"title"`
	Artist       string   `json:"artist"`
	Type         string   `json:"type"`
	Playlists    []string `json:"playlists"`
	CreatedAt    int64    `json:"createdAt,omitempty"`
	AudioDataURL string   `json:"audioDataURL,omitempty"`
	CoverDataURL string   `json:"coverDataURL,omitempty"`
	StreamURL    string   `json:"streamUrl,omitempty"`
}

const (
	audioMIME = "application/octet-stream"
	coverMIME = "image/jpeg"
)

// EncodeDataURL renders payload bytes as a data URL with the given MIME type.
func EncodeDataURL(mime string, data []byte) string {
	if mime == "" {
		mime = audioMIME
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURL parses a data URL back into payload bytes. Bare base64
// without the data: prefix is accepted for resilience against hand-edited
// documents.
func DecodeDataURL(s string) ([]byte, error) {
	payload := s
	if strings.HasPrefix(s, "data:") {
		_, rest, ok := strings.Cut(s, ",")
		if !ok {
			return nil, fmt.Errorf("%w: malformed data URL", shared.ErrInvalidInput)
		}
		payload = rest
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: bad base64 payload: %v", shared.ErrInvalidInput, err)
	}
	return data, nil
}

// EncodeTrack converts a catalog track into its document form.
func EncodeTrack(t *models.Track) TrackDocument {
	doc := TrackDocument{
		ID:        t.ID,
		Title:     t.Title,
		Artist:    t.Artist,
		Type:      string(t.Type),
		Playlists: t.Playlists,
		CreatedAt: t.CreatedAt.UnixMilli(),
	}
	if doc.Playlists == nil {
		doc.Playlists = []string{}
	}
	if t.Type == models.TypeLocalAudio && len(t.AudioPayload) > 0 {
		doc.AudioDataURL = EncodeDataURL(audioMIME, t.AudioPayload)
	}
	if len(t.CoverPayload) > 0 {
		doc.CoverDataURL = EncodeDataURL(coverMIME, t.CoverPayload)
	}
	if t.Type == models.TypeRemoteStream {
		doc.StreamURL = t.StreamLocator
	}
	return doc
}

// DecodeTrack converts a document entry back into a catalog track. A missing
// id or creation time is left for the catalog to assign.
func DecodeTrack(doc TrackDocument) (*models.Track, error) {
	trackType := models.TrackType(doc.Type)
	if doc.Type == "" {
		trackType = models.TypeLocalAudio
	}

	track := &models.Track{
		ID:        doc.ID,
		Title:     doc.Title,
		Artist:    doc.Artist,
		Type:      trackType,
		Playlists: doc.Playlists,
	}
	if doc.CreatedAt > 0 {
		track.CreatedAt = time.UnixMilli(doc.CreatedAt)
	}
	if track.Playlists == nil {
		track.Playlists = []string{}
	}

	if trackType == models.TypeLocalAudio && doc.AudioDataURL != "" {
		data, err := DecodeDataURL(doc.AudioDataURL)
		if err != nil {
			return nil, fmt.Errorf("audio payload: %w", err)
		}
		track.AudioPayload = data
	}
	if doc.CoverDataURL != "" {
		data, err := DecodeDataURL(doc.CoverDataURL)
		if err != nil {
			return nil, fmt.Errorf("cover payload: %w", err)
		}
		track.CoverPayload = data
	}
	if trackType == models.TypeRemoteStream {
		track.StreamLocator = doc.StreamURL
	}

	if err := track.Validate(); err != nil {
		return nil, err
	}
	return track, nil
}

// ExportLibrary builds a document from the given tracks and registry.
func ExportLibrary(tracks []*models.Track, playlists []string) *LibraryDocument {
	doc := &LibraryDocument{
		Tracks:    make([]TrackDocument, 0, len(tracks)),
		Playlists: playlists,
	}
	if doc.Playlists == nil {
		doc.Playlists = []string{}
	}
	for _, t := range tracks {
		doc.Tracks = append(doc.Tracks, EncodeTrack(t))
	}
	return doc
}

// MergePlaylists returns the playlist names from a document worth importing:
// deduplicated, reserved name dropped.
func MergePlaylists(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	merged := make([]string, 0, len(names))
	for _, name := range names {
		if name == "" || models.IsReservedPlaylist(name) {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		merged = append(merged, name)
	}
	return merged
}
