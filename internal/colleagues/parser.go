package colleagues

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// LineKind tags a diff line
type LineKind int

const (
	LineContext LineKind = iota
	LineAdded
	LineRemoved
)

func (k LineKind) String() string {
	switch k {
	case LineAdded:
		return "added"
	case LineRemoved:
		return "removed"
	default:
		return "context"
	}
}

// DiffLine is one line of a hunk body. Text excludes the diff marker and keeps
// any leading whitespace.
type DiffLine struct {
	Kind LineKind
	Text string
}

// CommitRecord is one commit parsed out of a per-file history blob
type CommitRecord struct {
	SHA         string
	AuthorEmail string
	AuthoredAt  time.Time
	Lines       []DiffLine
	Offset      int // line offset of the commit header in the blob
}

// Removed returns the text of every removed line, in diff order
func (c *CommitRecord) Removed() []string {
	var out []string
	for _, l := range c.Lines {
		if l.Kind == LineRemoved {
			out = append(out, l.Text)
		}
	}
	return out
}

// History is a parsed per-file history, newest commit first
type History struct {
	Records []CommitRecord

	// text -> index of the last record in blob order adding that text
	origins map[string]int
}

// Dates as printed by git log --date=iso, with --date=iso-strict accepted too
var dateLayouts = []string{
	"2006-01-02 15:04:05 -0700",
	time.RFC3339,
}

var (
	commitHeader = regexp.MustCompile(`^commit ([0-9a-f]{40})(?:\s|$)`)
	hunkHeader   = regexp.MustCompile(`^@@ -\d+(?:,(\d+))? \+\d+(?:,(\d+))? @@`)
)

const maxLineBytes = 16 * 1024 * 1024

// ParseHistory splits the output of git log -p --follow --date=iso into commit
// records. Fragments missing an id, an author email or a parseable date are
// skipped without error; git output may be truncated and partial coverage is
// acceptable.
func ParseHistory(blob string) (*History, error) {
	h := &History{}

	var (
		cur      *fragment
		inHunk   bool
		oldLeft  int
		newLeft  int
		inHeader bool
	)

	flush := func() {
		if cur == nil {
			return
		}
		if rec, ok := cur.record(); ok {
			h.Records = append(h.Records, rec)
		}
		cur = nil
	}

	scanner := bufio.NewScanner(strings.NewReader(blob))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for lineNo := 0; scanner.Scan(); lineNo++ {
		line := scanner.Text()

		if m := commitHeader.FindStringSubmatch(line); m != nil {
			flush()
			cur = &fragment{sha: m[1], offset: lineNo}
			inHeader, inHunk = true, false
			continue
		}
		if cur == nil {
			continue // preamble before the first commit
		}

		if inHeader {
			if line == "" {
				inHeader = false
				continue
			}
			cur.header = append(cur.header, line)
			continue
		}

		if inHunk {
			if oldLeft > 0 || newLeft > 0 {
				switch {
				case strings.HasPrefix(line, "+"):
					cur.lines = append(cur.lines, DiffLine{Kind: LineAdded, Text: line[1:]})
					newLeft--
					continue
				case strings.HasPrefix(line, "-"):
					cur.lines = append(cur.lines, DiffLine{Kind: LineRemoved, Text: line[1:]})
					oldLeft--
					continue
				case strings.HasPrefix(line, " "), line == "":
					text := ""
					if line != "" {
						text = line[1:]
					}
					cur.lines = append(cur.lines, DiffLine{Kind: LineContext, Text: text})
					oldLeft--
					newLeft--
					continue
				case strings.HasPrefix(line, `\`):
					continue // "\ No newline at end of file"
				}
			} else if strings.HasPrefix(line, `\`) {
				continue
			}
			inHunk = false
		}

		if m := hunkHeader.FindStringSubmatch(line); m != nil {
			oldLeft, newLeft = hunkCount(m[1]), hunkCount(m[2])
			inHunk = true
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning git log output: %w", err)
	}

	h.index()
	return h, nil
}

func hunkCount(s string) int {
	if s == "" {
		return 1
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// fragment accumulates one commit's raw header and diff lines
type fragment struct {
	sha    string
	offset int
	header []string
	lines  []DiffLine
}

func (f *fragment) record() (CommitRecord, bool) {
	var (
		email   string
		date    time.Time
		hasAuth bool
		hasDate bool
	)

	for _, line := range f.header {
		switch {
		case strings.HasPrefix(line, "Author:"):
			email, hasAuth = authorEmail(line)
		case strings.HasPrefix(line, "Date:"), strings.HasPrefix(line, "AuthorDate:"):
			raw := strings.TrimSpace(line[strings.Index(line, ":")+1:])
			date, hasDate = parseDate(raw)
		}
	}

	if f.sha == "" || !hasAuth || !hasDate {
		return CommitRecord{}, false
	}

	return CommitRecord{
		SHA:         f.sha,
		AuthorEmail: email,
		AuthoredAt:  date,
		Lines:       f.lines,
		Offset:      f.offset,
	}, true
}

// authorEmail extracts the text between < and > on an Author: line
func authorEmail(line string) (string, bool) {
	start := strings.Index(line, "<")
	if start < 0 {
		return "", false
	}
	end := strings.Index(line[start+1:], ">")
	if end < 0 {
		return "", false
	}
	return line[start+1 : start+1+end], true
}

func parseDate(raw string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
