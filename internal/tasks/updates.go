package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
}

// Operation phase enumeration
type Phase int

const (
	AcquireLink Phase = iota
	ReadPayload
	PersistTrack
	ExportTracks
	ImportTracks
	MergeRegistry
)

func (p Phase) String() string {
	switch p {
	case AcquireLink:
		return "acquire_link"
	case ReadPayload:
		return "read_payload"
	case PersistTrack:
		return "persist_track"
	case ExportTracks:
		return "export_tracks"
	case ImportTracks:
		return "import_tracks"
	case MergeRegistry:
		return "merge_registry"
	default:
		return ""
	}
}

func acquireUpdate(url string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AcquireLink,
		Step:    1,
		Total:   2,
		Message: fmt.Sprintf("Requesting stream link for %s...", url),
	}
}

func persistUpdate(title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PersistTrack,
		Step:    2,
		Total:   2,
		Message: fmt.Sprintf("Saving track: %s", title),
	}
}

func readPayloadUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ReadPayload,
		Step:    1,
		Total:   2,
		Message: fmt.Sprintf("Reading %s...", path),
	}
}

func importUpdate(step, total int, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ImportTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Importing: %s", step, total, title),
	}
}

func exportUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Exporting %d tracks...", total),
	}
}
