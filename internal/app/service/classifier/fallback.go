package classifier

import (
	"context"
	"strings"
	"unicode"

	"github.com/samber/lo"
)

const (
	TagGeneral   = "general"
	TagNonprofit = "nonprofit"
)

type keywordRule struct {
	tag      string
	keywords []string
}

// rules are matched in order against word prefixes; the resulting tags keep this order.
var rules = []keywordRule{
	{tag: "education", keywords: []string{"school", "education", "student", "teacher", "scholarship", "literacy", "learn"}},
	{tag: "health", keywords: []string{"health", "medical", "hospital", "clinic", "medicine", "vaccine", "cancer"}},
	{tag: "environment", keywords: []string{"environment", "climate", "forest", "tree", "ocean", "recycl", "wildlife", "conservation"}},
	{tag: "animals", keywords: []string{"animal", "dog", "cat", "shelter", "rescue", "pet"}},
	{tag: "children", keywords: []string{"child", "kid", "youth", "orphan", "infant"}},
	{tag: "hunger", keywords: []string{"food", "hunger", "meal", "nutrition", "feed"}},
	{tag: "water", keywords: []string{"water", "sanitation", "drought"}},
	{tag: "disaster-relief", keywords: []string{"disaster", "earthquake", "flood", "hurricane", "relief", "emergency"}},
	{tag: "housing", keywords: []string{"housing", "homeless", "shelter", "home"}},
	{tag: "community", keywords: []string{"community", "local", "neighborhood", "volunteer"}},
}

// Keyword tags campaigns by keyword matching. It never calls out.
type Keyword struct{}

func NewKeyword() Keyword { return Keyword{} }

func (Keyword) Analyze(_ context.Context, text string) Analysis {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	matched := lo.FilterMap(rules, func(r keywordRule, _ int) (string, bool) {
		return r.tag, lo.SomeBy(r.keywords, func(k string) bool {
			return lo.SomeBy(words, func(w string) bool { return strings.HasPrefix(w, k) })
		})
	})

	tags := []string{TagGeneral, TagNonprofit}
	if len(matched) > 0 {
		tags = append(matched, TagNonprofit)
	}
	return Analysis{Tags: tags, Summary: fallbackSummary(text)}
}
