// package formatter renders track listings to various formats (table, CSV, Markdown, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/postify/postify/internal/models"
	"github.com/postify/postify/internal/shared"
)

// trackSummary is the JSON projection of a track. Payload bytes are replaced
// by their sizes so listings stay small.
type trackSummary struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Artist    string   `json:"artist"`
	Type      string   `json:"type"`
	Source    string   `json:"source"`
	CoverSize int      `json:"coverSize"`
	Playlists []string `json:"playlists"`
	CreatedAt string   `json:"createdAt"`
}

func summarize(track *models.Track) trackSummary {
	source := track.StreamLocator
	if track.Type == models.TypeLocalAudio {
		source = shared.FormatSize(len(track.AudioPayload))
	}
	return trackSummary{
		ID:        track.ID,
		Title:     track.DisplayTitle(),
		Artist:    track.DisplayArtist(),
		Type:      string(track.Type),
		Source:    source,
		CoverSize: len(track.CoverPayload),
		Playlists: track.Playlists,
		CreatedAt: track.CreatedAt.Format("2006-01-02 15:04"),
	}
}

// TracksToTable renders tracks as an aligned text table
func TracksToTable(tracks []*models.Track) ([]byte, error) {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)

	fmt.Fprintln(w, "#\tTITLE\tARTIST\tTYPE\tSOURCE\tPLAYLISTS\tADDED")
	for i, track := range tracks {
		s := summarize(track)
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			i+1, s.Title, s.Artist, s.Type, s.Source,
			strings.Join(s.Playlists, ", "), s.CreatedAt)
	}

	if err := w.Flush(); err != nil {
		return nil, fmt.Errorf("failed to render table: %w", err)
	}
	return buf.Bytes(), nil
}

// TracksToCSV renders tracks as CSV with columns: ID, Title, Artist, Type, Source, Playlists, Added
func TracksToCSV(tracks []*models.Track) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Artist", "Type", "Source", "Playlists", "Added"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range tracks {
		s := summarize(track)
		record := []string{
			s.ID,
			s.Title,
			s.Artist,
			s.Type,
			s.Source,
			strings.Join(s.Playlists, ";"),
			s.CreatedAt,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// TracksToMarkdown renders tracks as a Markdown listing
func TracksToMarkdown(tracks []*models.Track, heading string) ([]byte, error) {
	var buf bytes.Buffer

	if heading == "" {
		heading = models.AllPlaylist
	}
	buf.WriteString(fmt.Sprintf("# %s\n\n", heading))
	buf.WriteString(fmt.Sprintf("**Tracks**: %d\n\n", len(tracks)))

	for i, track := range tracks {
		s := summarize(track)
		extra := ""
		if len(s.Playlists) > 0 {
			extra = fmt.Sprintf(" (%s)", strings.Join(s.Playlists, ", "))
		}
		buf.WriteString(fmt.Sprintf("%d. %s - %s%s [%s]\n", i+1, s.Artist, s.Title, extra, s.Type))
	}

	return buf.Bytes(), nil
}

// TracksToJSON renders tracks as indented JSON summaries without payload bytes
func TracksToJSON(tracks []*models.Track) ([]byte, error) {
	summaries := make([]trackSummary, 0, len(tracks))
	for _, track := range tracks {
		summaries = append(summaries, summarize(track))
	}
	return shared.MarshalJSON(summaries, true)
}
