package colleagues

import "time"

// LineOccurrence attributes a line of text to the commit that introduced it
type LineOccurrence struct {
	Text        string
	SHA         string
	AuthorEmail string
	AuthoredAt  time.Time
}

// index records, for every added line text, the last record in blob order
// that adds it. git log lists newest first, so the last occurrence is the
// earliest introduction still present in the retained history.
func (h *History) index() {
	h.origins = make(map[string]int)
	for i := range h.Records {
		for _, l := range h.Records[i].Lines {
			if l.Kind == LineAdded {
				h.origins[l.Text] = i
			}
		}
	}
}

// Provenance returns who originally wrote text anywhere in this file's
// history. The search spans the whole history, including commits newer than
// any particular deletion, and credits origination rather than the most
// recent edit. The second result is false when no commit adds text.
func (h *History) Provenance(text string) (LineOccurrence, bool) {
	if h.origins == nil {
		h.index()
	}

	i, ok := h.origins[text]
	if !ok {
		return LineOccurrence{}, false
	}

	rec := &h.Records[i]
	return LineOccurrence{
		Text:        text,
		SHA:         rec.SHA,
		AuthorEmail: rec.AuthorEmail,
		AuthoredAt:  rec.AuthoredAt,
	}, true
}
