// Package models defines domain entities for the Postify media catalog.
//
// The central type is [Track], a catalog entry backed by the payload store.
// A track is either a locally imported audio file (the bytes live in the
// record itself) or a remotely acquired stream (only a locator URL is kept).
// Exactly one of the two sources is ever present; [Track.Validate] enforces
// this before anything reaches persistence.
//
// Playlist membership is stored as plain names on the track. The registry of
// playlist names is owned by the catalog; the reserved [AllPlaylist] name is
// a UI-level "no filter" selection and is never persisted.
package models
