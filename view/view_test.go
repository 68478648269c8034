package view

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/randalmurphal/voxlog"
	"github.com/randalmurphal/voxlog/store"
	"github.com/randalmurphal/voxlog/testutil"
)

func sampleSession() *voxlog.Session {
	s := voxlog.NewSession("ses_v", "Planning", []string{"en", "th"})
	s.Rows = []voxlog.TranscriptRow{
		{ID: 1, SpeakerID: "A", DisplayName: "Speaker A", Time: "0:01", Text: "hello", LanguageCode: "en"},
		{ID: 2, SpeakerID: "B", DisplayName: "Speaker B", Time: "0:04", Text: "สวัสดี", LanguageCode: "th"},
	}
	return s
}

func TestViewFull(t *testing.T) {
	var buf bytes.Buffer
	if err := NewViewer().ViewFull(&buf, sampleSession()); err != nil {
		t.Fatalf("ViewFull: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Planning", "Speaker A", "hello", "สวัสดี", "0:04"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestViewSpeaker(t *testing.T) {
	var buf bytes.Buffer
	if err := NewViewer().ViewSpeaker(&buf, sampleSession(), "A"); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	if !strings.Contains(out, "hello") {
		t.Errorf("output missing speaker A row:\n%s", out)
	}
	if strings.Contains(out, "สวัสดี") {
		t.Errorf("output includes other speaker's row:\n%s", out)
	}
}

func TestExportMarkdown(t *testing.T) {
	var buf bytes.Buffer
	if err := NewViewer().ExportMarkdown(&buf, sampleSession()); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "# Planning") {
		t.Errorf("markdown missing title heading:\n%s", out)
	}
	if !strings.Contains(out, "**Speaker B** (0:04)") {
		t.Errorf("markdown missing attributed row:\n%s", out)
	}
}

func TestViewSummary(t *testing.T) {
	sess := testutil.SampleSession(t, 6)

	var buf bytes.Buffer
	if err := NewViewer().ViewSummary(&buf, sess); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	if !strings.Contains(out, "Weekly Standup") {
		t.Errorf("summary missing title:\n%s", out)
	}
	if !strings.Contains(out, "6") {
		t.Errorf("summary missing row count:\n%s", out)
	}
}

func TestExportJSON_RoundTrips(t *testing.T) {
	var buf bytes.Buffer
	if err := NewViewer().ExportJSON(&buf, sampleSession()); err != nil {
		t.Fatal(err)
	}

	var decoded voxlog.Session
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("unmarshal export: %v", err)
	}
	if len(decoded.Rows) != 2 {
		t.Errorf("rows = %d, want 2", len(decoded.Rows))
	}
}

func TestFormatMetaList(t *testing.T) {
	var buf bytes.Buffer
	metas := []store.SessionMeta{
		{ID: "ses_1", Title: "First", CreatedAt: time.Now(), RowCount: 3},
	}
	if err := NewViewer().FormatMetaList(&buf, metas); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "First") {
		t.Errorf("listing missing title:\n%s", buf.String())
	}

	buf.Reset()
	NewViewer().FormatMetaList(&buf, nil)
	if !strings.Contains(buf.String(), "No sessions found.") {
		t.Errorf("empty listing = %q", buf.String())
	}
}
