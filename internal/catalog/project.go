package catalog

import (
	"strings"

	"github.com/postify/postify/internal/models"
)

// Project computes the visible subset of tracks for a playlist selection and
// a free-text query.
//
// The filter is stable: survivors keep the relative order they were handed in
// with, and no sort is imposed. The function is pure, so the UI can call it
// on every keystroke without side effects.
func Project(tracks []*models.Track, activePlaylist, query string) []*models.Track {
	list := make([]*models.Track, 0, len(tracks))

	byPlaylist := activePlaylist != "" && activePlaylist != models.AllPlaylist
	q := strings.ToLower(strings.TrimSpace(query))

	for _, t := range tracks {
		if byPlaylist && !t.InPlaylist(activePlaylist) {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(t.Title), q) &&
			!strings.Contains(strings.ToLower(t.Artist), q) {
			continue
		}
		list = append(list, t)
	}

	return list
}
