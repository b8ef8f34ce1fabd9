// Package repositories implements the durable payload store.
//
// TrackRepository persists full track records, including the embedded binary
// audio and cover payloads, as single-row writes so a reader never observes a
// partially written record. MetaRepository holds the playlist registry under
// a fixed key. All I/O failures wrap shared.ErrStorage; retry policy belongs
// to the caller.
package repositories
