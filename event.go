package voxlog

// TranscriptionEvent is one transcribed utterance as produced by the
// acoustic pipeline. The audio payload is opaque to this package.
type TranscriptionEvent struct {
	SessionID    string   `json:"sessionId"`
	SpeakerID    string   `json:"speakerId"`
	LanguageCode string   `json:"languageCode"`
	Text         string   `json:"text"`
	StartOffset  *float64 `json:"startOffset,omitempty"`
	EndOffset    *float64 `json:"endOffset,omitempty"`
	AudioSamples []byte   `json:"-"`
	SampleRate   int      `json:"sampleRate,omitempty"`
}
