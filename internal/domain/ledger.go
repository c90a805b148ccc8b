package domain

import "time"

// StatusEntry is one immutable record in an append-only status history.
// ChangedBy is nil for system-driven changes (payment webhooks).
type StatusEntry[S ~string] struct {
	Status    S         `json:"status"`
	ChangedAt time.Time `json:"changedAt"`
	ChangedBy *string   `json:"changedBy,omitempty"`
	Note      string    `json:"note,omitempty"`
}

// StatusHistory is an ordered, append-only list of status changes. The same
// type backs both the payment status ledger and the shipping sub-state,
// parameterized by their respective enums.
type StatusHistory[S ~string] []StatusEntry[S]

// Append returns the history extended with a new entry. Histories are never
// truncated or reordered.
func (h StatusHistory[S]) Append(status S, changedBy *string, note string, at time.Time) StatusHistory[S] {
	return append(h, StatusEntry[S]{
		Status:    status,
		ChangedAt: at,
		ChangedBy: changedBy,
		Note:      note,
	})
}

// Last returns the most recent entry, if any.
func (h StatusHistory[S]) Last() (StatusEntry[S], bool) {
	if len(h) == 0 {
		return StatusEntry[S]{}, false
	}
	return h[len(h)-1], true
}
