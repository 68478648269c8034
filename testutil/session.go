package testutil

import (
	"fmt"
	"testing"
	"time"

	voxlog "github.com/randalmurphal/voxlog"
	"github.com/randalmurphal/voxlog/speaker"
)

// Event builds a transcription event with an audio offset, suitable for
// feeding to a store in tests.
func Event(sessionID, speakerID, text string, startOffset float64) voxlog.TranscriptionEvent {
	end := startOffset + 2.5
	return voxlog.TranscriptionEvent{
		SessionID:    sessionID,
		SpeakerID:    speakerID,
		LanguageCode: "en",
		Text:         text,
		StartOffset:  &startOffset,
		EndOffset:    &end,
		SampleRate:   16000,
	}
}

// SampleSession builds an in-memory session with rowCount rows alternating
// between two speakers. No storage is involved.
func SampleSession(t *testing.T, rowCount int) *voxlog.Session {
	t.Helper()

	sess := voxlog.NewSession("ses_test", "Weekly Standup", []string{"en"})
	sess.CreatedAt = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

	resolver := speaker.NewResolver(1)
	speakers := []string{"spk_a", "spk_b"}

	for i := 0; i < rowCount; i++ {
		key := speakers[i%len(speakers)]
		profile, _ := resolver.Resolve(key)
		offset := float64(i * 5)
		sess.Rows = append(sess.Rows, voxlog.TranscriptRow{
			ID:           i + 1,
			SpeakerID:    key,
			DisplayName:  profile.DisplayName,
			AvatarSymbol: profile.AvatarSymbol,
			PaletteIndex: profile.PaletteIndex,
			Text:         fmt.Sprintf("utterance %d", i+1),
			LanguageCode: "en",
			StartOffset:  &offset,
			Time:         voxlog.DisplayTime(&offset, sess.CreatedAt),
			CreatedAt:    sess.CreatedAt.Add(time.Duration(i) * 5 * time.Second),
		})
		sess.Speakers[key] = profile
	}

	return sess
}
