package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Catalog errors
	ErrInvalidTrack     = fmt.Errorf("invalid track")
	ErrTrackNotFound    = fmt.Errorf("track not found")
	ErrReservedPlaylist = fmt.Errorf("playlist name is reserved")

	// Persistence errors
	ErrStorage = fmt.Errorf("storage operation failed")

	// Playback errors
	ErrSink         = fmt.Errorf("playback sink failed")
	ErrEmptyQueue   = fmt.Errorf("playback queue is empty")
	ErrNoSource     = fmt.Errorf("track has no playable source")
	ErrSinkNotReady = fmt.Errorf("sink not initialized")

	// Acquisition errors
	ErrRemote             = fmt.Errorf("remote acquisition failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
