package intent

import (
	"regexp"
	"strings"

	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/domain"
)

// KeywordMatcher finds which categories' vocabularies a message uses.
type KeywordMatcher struct {
	patterns map[domain.Category][]*regexp.Regexp
}

// NewKeywordMatcher compiles keyword sets. Each keyword also matches its
// plural forms ending in "s" or "es".
func NewKeywordMatcher(keywords map[domain.Category][]string) *KeywordMatcher {
	m := &KeywordMatcher{patterns: make(map[domain.Category][]*regexp.Regexp, len(keywords))}
	for category, words := range keywords {
		for _, w := range words {
			w = strings.TrimSpace(w)
			if w == "" {
				continue
			}
			re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(w) + `(?:s|es)?\b`)
			m.patterns[category] = append(m.patterns[category], re)
		}
	}
	return m
}

// Match returns every category with at least one keyword in text, in domain.Categories order.
func (m *KeywordMatcher) Match(text string) []domain.Category {
	var matched []domain.Category
	for _, category := range domain.Categories {
		for _, re := range m.patterns[category] {
			if re.MatchString(text) {
				matched = append(matched, category)
				break
			}
		}
	}
	return matched
}

// GreetingDetector recognises messages that are only a salutation.
type GreetingDetector struct {
	phrases []string
}

// NewGreetingDetector builds a detector over phrases.
func NewGreetingDetector(phrases []string) *GreetingDetector {
	d := &GreetingDetector{}
	for _, p := range phrases {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			d.phrases = append(d.phrases, p)
		}
	}
	return d
}

// IsGreeting reports whether text equals a greeting phrase or starts with one followed by a space.
func (d *GreetingDetector) IsGreeting(text string) bool {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return false
	}
	for _, p := range d.phrases {
		if normalized == p || strings.HasPrefix(normalized, p+" ") {
			return true
		}
	}
	return false
}
