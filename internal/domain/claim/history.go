package claim

import "time"

// AppendHistory appends a status transition to a state history list.
//
// When the last entry already carries the same state, the transition is
// merged: a differing non-empty note replaces the last entry's note (the
// original timestamp is kept), and an identical or empty note leaves the
// history unchanged. Otherwise a new entry is appended.
//
// The input slice is never mutated; callers get a fresh slice whenever the
// content changes.
func AppendHistory(history []StateHistoryEntry, state Status, note string, at time.Time) []StateHistoryEntry {
	if at.IsZero() {
		at = time.Now()
	}
	if n := len(history); n > 0 && history[n-1].State == state {
		if note == "" || history[n-1].Note == note {
			return history
		}
		out := make([]StateHistoryEntry, n)
		copy(out, history)
		out[n-1].Note = note
		return out
	}

	out := make([]StateHistoryEntry, len(history), len(history)+1)
	copy(out, history)
	return append(out, StateHistoryEntry{State: state, At: at, Note: note})
}
