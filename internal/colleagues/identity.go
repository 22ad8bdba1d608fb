package colleagues

import "strings"

// Identity is an immutable set of email addresses. Membership is exact string
// equality; no case folding or fuzzy matching is applied.
type Identity struct {
	emails []string
	set    map[string]struct{}
}

// NewIdentity builds an Identity from emails, dropping blanks and duplicates
// while keeping first-seen order.
func NewIdentity(emails ...string) Identity {
	id := Identity{set: make(map[string]struct{}, len(emails))}
	for _, e := range emails {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if _, ok := id.set[e]; ok {
			continue
		}
		id.set[e] = struct{}{}
		id.emails = append(id.emails, e)
	}
	return id
}

// Contains reports whether email belongs to the identity
func (id Identity) Contains(email string) bool {
	_, ok := id.set[email]
	return ok
}

// Emails returns the members in first-seen order
func (id Identity) Emails() []string {
	out := make([]string, len(id.emails))
	copy(out, id.emails)
	return out
}

// Primary returns the first member, or "" for an empty identity
func (id Identity) Primary() string {
	if len(id.emails) == 0 {
		return ""
	}
	return id.emails[0]
}

// Len returns the number of members
func (id Identity) Len() int {
	return len(id.emails)
}
