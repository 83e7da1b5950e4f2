package domain

import (
	"fmt"
	"time"
)

// MaxDailySequence bounds the zero-padded per-day counter.
const MaxDailySequence = 9999

// FormatTicketNumber renders the human-readable ticket identifier for a
// creation date and per-day sequence value, e.g. TKT-20240131-0042.
func FormatTicketNumber(creationDate time.Time, seq int64) string {
	return fmt.Sprintf("TKT-%s-%04d", creationDate.UTC().Format("20060102"), seq)
}

// SequenceDay normalizes a timestamp to the calendar-day key the sequence
// counter is partitioned by.
func SequenceDay(t time.Time) time.Time {
	return t.UTC().Truncate(24 * time.Hour)
}
