package activity

import (
	"strings"
	"time"
)

// MaxEntries is how many entries the log keeps.
const MaxEntries = 50

// Entry is one line of the admin activity log.
type Entry struct {
	Message string    `json:"message"`
	Date    time.Time `json:"date"`
}

// Prepend adds message as the newest entry and trims the log to MaxEntries.
// PRE: log is ordered newest first
// POST: len(result) <= MaxEntries; result[0].Message == message
func Prepend(log []Entry, message string, now time.Time) []Entry {
	out := make([]Entry, 0, min(len(log)+1, MaxEntries))
	out = append(out, Entry{Message: strings.TrimSpace(message), Date: now})
	for _, e := range log {
		if len(out) == MaxEntries {
			break
		}
		out = append(out, e)
	}
	return out
}
