package view

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/randalmurphal/voxlog"
	"github.com/randalmurphal/voxlog/store"
)

// Viewer renders sessions for display and export.
type Viewer struct{}

// NewViewer creates a viewer.
func NewViewer() *Viewer {
	return &Viewer{}
}

// ViewFull displays the complete transcript.
func (v *Viewer) ViewFull(w io.Writer, s *voxlog.Session) error {
	v.writeHeader(w, s)

	for _, row := range s.Rows {
		v.writeRow(w, row)
	}

	return nil
}

// ViewSummary displays a brief per-row summary.
func (v *Viewer) ViewSummary(w io.Writer, s *voxlog.Session) error {
	v.writeHeader(w, s)

	fmt.Fprintln(w, "\nRow Summary:")
	for _, row := range s.Rows {
		preview := row.Text
		if len(preview) > 100 {
			preview = preview[:100] + "..."
		}
		preview = strings.ReplaceAll(preview, "\n", " ")
		fmt.Fprintf(w, "  [%d] %s: %s\n", row.ID, row.DisplayName, preview)
	}

	return nil
}

// ViewSpeaker displays only rows attributed to one speaker key.
func (v *Viewer) ViewSpeaker(w io.Writer, s *voxlog.Session, speakerID string) error {
	v.writeHeader(w, s)

	for _, row := range s.Rows {
		if row.SpeakerID == speakerID {
			v.writeRow(w, row)
		}
	}

	return nil
}

func (v *Viewer) writeHeader(w io.Writer, s *voxlog.Session) {
	sep := strings.Repeat("=", 60)

	fmt.Fprintln(w, sep)
	fmt.Fprintf(w, "Session: %s\n", s.Title)
	fmt.Fprintf(w, "Created: %s | Rows: %d | Speakers: %d\n",
		s.CreatedAt.Format("2006-01-02 15:04:05"),
		len(s.Rows),
		len(s.Speakers))

	if len(s.LanguageHints) > 0 {
		fmt.Fprintf(w, "Languages: %s\n", strings.Join(s.LanguageHints, ", "))
	}

	fmt.Fprintln(w, sep)
}

func (v *Viewer) writeRow(w io.Writer, row voxlog.TranscriptRow) {
	header := fmt.Sprintf("[%s] %s", row.Time, row.DisplayName)
	if row.LanguageCode != "" {
		header += fmt.Sprintf(" (%s)", row.LanguageCode)
	}

	fmt.Fprintln(w, header)
	fmt.Fprintf(w, "  %s\n", row.Text)
}

// ExportMarkdown exports a session to markdown format.
func (v *Viewer) ExportMarkdown(w io.Writer, s *voxlog.Session) error {
	fmt.Fprintf(w, "# %s\n\n", s.Title)

	fmt.Fprintf(w, "| Field | Value |\n")
	fmt.Fprintf(w, "|-------|-------|\n")
	fmt.Fprintf(w, "| Created | %s |\n", s.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "| Rows | %d |\n", len(s.Rows))
	fmt.Fprintf(w, "| Speakers | %d |\n", len(s.Speakers))
	if len(s.LanguageHints) > 0 {
		fmt.Fprintf(w, "| Languages | %s |\n", strings.Join(s.LanguageHints, ", "))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "## Transcript\n\n")
	for _, row := range s.Rows {
		fmt.Fprintf(w, "**%s** (%s):\n\n%s\n\n", row.DisplayName, row.Time, row.Text)
	}

	return nil
}

// ExportJSON exports a session to JSON format.
func (v *Viewer) ExportJSON(w io.Writer, s *voxlog.Session) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(s)
}

// FormatMetaList formats a session listing for display.
func (v *Viewer) FormatMetaList(w io.Writer, metas []store.SessionMeta) error {
	if len(metas) == 0 {
		fmt.Fprintln(w, "No sessions found.")
		return nil
	}

	fmt.Fprintf(w, "%-24s %-30s %-20s %6s\n", "SESSION ID", "TITLE", "CREATED", "ROWS")
	fmt.Fprintln(w, strings.Repeat("-", 84))

	for _, m := range metas {
		fmt.Fprintf(w, "%-24s %-30s %-20s %6d\n",
			truncate(m.ID, 24),
			truncate(m.Title, 30),
			m.CreatedAt.Format("2006-01-02 15:04"),
			m.RowCount)
	}

	fmt.Fprintf(w, "\nTotal: %d sessions\n", len(metas))
	return nil
}

// truncate shortens a string to max length.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
