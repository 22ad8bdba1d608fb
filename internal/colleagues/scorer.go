package colleagues

import (
	"strings"
	"time"
	"unicode/utf8"
)

// DefaultFreshnessWindow is the longest gap between a line's introduction and
// its deletion that still counts as collaboration.
const DefaultFreshnessWindow = 120 * 24 * time.Hour

// minDeletedRunes filters diff noise such as a lone closing brace
const minDeletedRunes = 3

const day = 24 * time.Hour

// ScoreFile tallies, for one file history and one subject email, how many
// lines the subject deleted within window of a candidate introducing them.
// The result holds every candidate, zero when nothing qualified.
func ScoreFile(h *History, subject string, candidates Identity, window time.Duration) Tally {
	tally := NewTally(candidates)
	windowDays := int64(window / day)

	for i := range h.Records {
		rec := &h.Records[i]
		if rec.AuthorEmail != subject {
			continue
		}

		for _, text := range rec.Removed() {
			if !qualifies(text) {
				continue
			}

			origin, ok := h.Provenance(text)
			if !ok {
				continue
			}

			if elapsedDays(origin.AuthoredAt, rec.AuthoredAt) < windowDays {
				tally.Add(origin.AuthorEmail, 1)
			}
		}
	}

	return tally
}

// qualifies reports whether a deleted line is substantial enough to count
func qualifies(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	return utf8.RuneCountInString(text) > minDeletedRunes
}

// elapsedDays is the whole number of days from introduced to deleted,
// truncated toward zero. It is negative when the recorded introduction is
// newer than the deletion.
func elapsedDays(introduced, deleted time.Time) int64 {
	return int64(deleted.Sub(introduced) / day)
}
