package classifier

import (
	"context"
	"strings"
	"unicode/utf8"
)

// Analysis is the annotation stored with a campaign description.
type Analysis struct {
	Tags    []string `json:"tags"`
	Summary string   `json:"summary"`
}

// Analyzer annotates free campaign text. Implementations never fail: they degrade
// to keyword tagging instead.
type Analyzer interface {
	Analyze(ctx context.Context, text string) Analysis
}

const summaryPreviewRunes = 50

func fallbackSummary(text string) string {
	preview := text
	if utf8.RuneCountInString(text) > summaryPreviewRunes {
		preview = string([]rune(text)[:summaryPreviewRunes])
	}
	return "Campaign: " + strings.TrimSpace(preview) + "..."
}
