package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/rohankatakam/colleagues/internal/models"
)

// WriterSink renders facts to a writer, usually stdout
type WriterSink struct {
	w      io.Writer
	format string
}

// NewWriterSink creates a sink rendering in format: "text", "json", "yaml" or
// "auto" (text on a terminal, JSON otherwise).
func NewWriterSink(w io.Writer, format string) *WriterSink {
	if format == "" || format == "auto" {
		format = detectFormat(w)
	}
	return &WriterSink{w: w, format: format}
}

func detectFormat(w io.Writer) string {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return "text"
	}
	return "json"
}

// Format returns the resolved output format
func (s *WriterSink) Format() string {
	return s.format
}

// Close is a no-op; the writer is owned by the caller
func (s *WriterSink) Close() error {
	return nil
}

// PostFacts renders the batch
func (s *WriterSink) PostFacts(ctx context.Context, batchID string, facts []models.Fact) error {
	if facts == nil {
		facts = []models.Fact{}
	}

	switch s.format {
	case "json":
		enc := json.NewEncoder(s.w)
		enc.SetIndent("", "  ")
		return enc.Encode(factsRequest{Facts: facts})
	case "yaml":
		enc := yaml.NewEncoder(s.w)
		defer enc.Close()
		return enc.Encode(map[string][]models.Fact{"facts": facts})
	case "text":
		return s.writeTable(facts)
	default:
		return fmt.Errorf("unknown output format %q", s.format)
	}
}

func (s *WriterSink) writeTable(facts []models.Fact) error {
	if len(facts) == 0 {
		_, err := fmt.Fprintln(s.w, "No colleagues scored.")
		return err
	}

	tw := tabwriter.NewWriter(s.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "COLLEAGUE\tSCORE\tSUBJECT")
	for _, f := range facts {
		fmt.Fprintf(tw, "%s\t%g\t%s\n", f.Value, f.Score, f.AuthorEmail)
	}
	return tw.Flush()
}
