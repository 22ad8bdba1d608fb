package colleagues

import "sort"

// Tally maps candidate email to a collaboration count. A tally built with
// NewTally holds a key for every candidate, so absent collaborators read as
// zero rather than missing.
type Tally map[string]int

// NewTally returns a tally with every candidate set to zero
func NewTally(candidates Identity) Tally {
	t := make(Tally, candidates.Len())
	for _, e := range candidates.emails {
		t[e] = 0
	}
	return t
}

// Add increments email by n if email is tracked. Untracked emails are ignored.
func (t Tally) Add(email string, n int) bool {
	if _, ok := t[email]; !ok {
		return false
	}
	t[email] += n
	return true
}

// Merge adds every tracked count from other into t
func (t Tally) Merge(other Tally) {
	for email, n := range other {
		t.Add(email, n)
	}
}

// Without returns a copy of t that omits every member of id
func (t Tally) Without(id Identity) Tally {
	out := make(Tally, len(t))
	for email, n := range t {
		if !id.Contains(email) {
			out[email] = n
		}
	}
	return out
}

// Total sums all counts
func (t Tally) Total() int {
	total := 0
	for _, n := range t {
		total += n
	}
	return total
}

// Entry is one (email, count) pair
type Entry struct {
	Email string
	Count int
}

// Sorted returns the entries by descending count, ties broken by email
func (t Tally) Sorted() []Entry {
	entries := make([]Entry, 0, len(t))
	for email, n := range t {
		entries = append(entries, Entry{Email: email, Count: n})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Email < entries[j].Email
	})
	return entries
}
