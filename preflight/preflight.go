package preflight

import (
	"fmt"
	"sort"
	"strings"
	"text/template"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/randalmurphal/voxlog"
)

// Request is the input to a run validation.
type Request struct {
	// LanguageCodes are the languages the user selected, in any order,
	// possibly with duplicates.
	LanguageCodes []string

	// FocusKeywords is free text the transcription engine should pay
	// extra attention to. May be empty.
	FocusKeywords string

	// RemainingCreditSeconds is the caller's run-time balance.
	RemainingCreditSeconds int
}

// RunConfiguration is the validated, immutable output consumed by the
// acoustic pipeline to start a run.
type RunConfiguration struct {
	// LanguageCodes is the deduplicated, canonical, sorted selection.
	LanguageCodes []string

	// Prompt names every selected language in full and carries the
	// focus keywords, if any.
	Prompt string
}

// supported is the static set of languages the transcription engine accepts.
var supported = []language.Tag{
	language.English,
	language.Arabic,
	language.Chinese,
	language.Dutch,
	language.French,
	language.German,
	language.Hindi,
	language.Indonesian,
	language.Italian,
	language.Japanese,
	language.Korean,
	language.Malay,
	language.Polish,
	language.Portuguese,
	language.Russian,
	language.Spanish,
	language.Swedish,
	language.Thai,
	language.Turkish,
	language.Vietnamese,
}

var (
	matcher = language.NewMatcher(supported)
	namer   = display.Languages(language.English)
)

var promptTemplate = template.Must(template.New("run").Parse(
	`This conversation may contain {{.Languages}}. ` +
		`Transcribe each utterance in the language being spoken.` +
		`{{if .Keywords}} Pay special attention to the following terms: {{.Keywords}}.{{end}}`))

// Prepare validates a proposed run and synthesizes its language-focus
// prompt. It is a pure gate: no side effects, re-invoked per attempt.
//
// The credit check runs first, independent of language validity. The
// same language set presented in any order yields an identical
// RunConfiguration. Unknown codes fail closed.
func Prepare(req Request) (*RunConfiguration, error) {
	if req.RemainingCreditSeconds <= 0 {
		return nil, voxlog.ErrInsufficientCredit
	}

	codes := req.LanguageCodes
	if len(codes) == 0 {
		// The engine needs at least one language to focus on.
		codes = []string{"en"}
	}

	seen := make(map[string]language.Tag)
	for _, raw := range codes {
		tag, err := resolve(raw)
		if err != nil {
			return nil, err
		}
		seen[tag.String()] = tag
	}

	canonical := make([]string, 0, len(seen))
	for code := range seen {
		canonical = append(canonical, code)
	}
	sort.Strings(canonical)

	names := make([]string, len(canonical))
	for i, code := range canonical {
		names[i] = namer.Name(seen[code])
	}

	var sb strings.Builder
	err := promptTemplate.Execute(&sb, map[string]string{
		"Languages": humanJoin(names),
		"Keywords":  strings.TrimSpace(req.FocusKeywords),
	})
	if err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	return &RunConfiguration{
		LanguageCodes: canonical,
		Prompt:        sb.String(),
	}, nil
}

// resolve maps a raw code to its canonical supported tag, failing
// closed on anything the engine does not handle.
func resolve(raw string) (language.Tag, error) {
	code := strings.TrimSpace(raw)
	if code == "" {
		return language.Und, fmt.Errorf("%w: empty code", voxlog.ErrUnsupportedLanguage)
	}

	tag, err := language.Parse(code)
	if err != nil {
		return language.Und, fmt.Errorf("%w: %q", voxlog.ErrUnsupportedLanguage, raw)
	}

	_, index, conf := matcher.Match(tag)
	if conf < language.High {
		return language.Und, fmt.Errorf("%w: %q", voxlog.ErrUnsupportedLanguage, raw)
	}
	return supported[index], nil
}

// humanJoin renders a name list as "A", "A and B", or "A, B and C".
func humanJoin(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	case 2:
		return names[0] + " and " + names[1]
	default:
		return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
	}
}
