// Package preflight validates that a transcription run may start.
//
// Core types:
//   - Request: Language selection, focus keywords, and credit balance
//   - RunConfiguration: The validated languages plus the generated
//     language-focus prompt handed to the transcription engine
//
// Example usage:
//
//	run, err := preflight.Prepare(preflight.Request{
//	    LanguageCodes:          []string{"th", "en"},
//	    RemainingCreditSeconds: 1800,
//	})
//	if err != nil {
//	    // voxlog.ErrInsufficientCredit or voxlog.ErrUnsupportedLanguage
//	}
package preflight
