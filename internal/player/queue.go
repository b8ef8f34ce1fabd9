package player

import "slices"

// Queue is an ordered snapshot of track ids plus a cursor.
//
// It is captured once when playback starts from the catalog grid and never
// mutated incrementally: re-filtering the grid mid-playback must not reorder
// or truncate what the user started. A cursor of -1 means nothing selected.
type Queue struct {
	ids    []string
	cursor int
}

// NewQueue returns an empty queue with nothing selected.
func NewQueue() Queue {
	return Queue{cursor: -1}
}

// Snapshot captures the given id list and cursor position.
func Snapshot(ids []string, cursor int) Queue {
	return Queue{ids: slices.Clone(ids), cursor: cursor}
}

// Current returns the id under the cursor, if any.
func (q *Queue) Current() (string, bool) {
	if q.cursor < 0 || q.cursor >= len(q.ids) {
		return "", false
	}
	return q.ids[q.cursor], true
}

// Advance moves the cursor by direction (+1 or -1), wrapping both ways.
// Advancing an empty queue is a no-op.
func (q *Queue) Advance(direction int) {
	if len(q.ids) == 0 {
		return
	}
	q.cursor = (q.cursor + direction + len(q.ids)) % len(q.ids)
}

// Len returns the number of ids in the snapshot.
func (q *Queue) Len() int {
	return len(q.ids)
}

// Cursor returns the current cursor position.
func (q *Queue) Cursor() int {
	return q.cursor
}

// IDs returns a copy of the snapshot.
func (q *Queue) IDs() []string {
	return slices.Clone(q.ids)
}
