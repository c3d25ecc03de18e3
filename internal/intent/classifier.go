// Package intent maps a user message to the data source category that should answer it.
package intent

import (
	"context"
	"strings"

	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/domain"
	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/logger"
)

// Classifier resolves a category in two stages: keywords first, then the
// disambiguator when zero or several categories matched.
type Classifier struct {
	keywords      *KeywordMatcher
	greetings     *GreetingDetector
	disambiguator Disambiguator
	log           *logger.Logger
}

// NewClassifier creates a classifier.
func NewClassifier(keywords *KeywordMatcher, greetings *GreetingDetector, disambiguator Disambiguator, log *logger.Logger) *Classifier {
	if log == nil {
		log = logger.Nop()
	}
	return &Classifier{
		keywords:      keywords,
		greetings:     greetings,
		disambiguator: disambiguator,
		log:           log.Component("classifier"),
	}
}

// Classify always returns one of the five categories. A greeting only
// short-circuits when no category vocabulary appears in the message.
func (c *Classifier) Classify(ctx context.Context, text string, window domain.ConversationWindow) domain.Classification {
	matched := c.keywords.Match(text)
	if len(matched) == 1 {
		return domain.Classification{Category: matched[0], Stage: domain.StageKeyword, Matched: matched}
	}
	if len(matched) == 0 && c.greetings != nil && c.greetings.IsGreeting(text) {
		return domain.Classification{Category: domain.CategoryGeneral, Stage: domain.StageGreeting}
	}

	label, err := c.disambiguator.Disambiguate(ctx, text, window, domain.Categories)
	if err != nil {
		c.log.Warn().Err(err).
			Str("stage", string(domain.StateClassifyingIntent)).
			Msg("disambiguation failed, defaulting to general")
		return domain.Classification{Category: domain.CategoryGeneral, Stage: domain.StageDefault, Matched: matched}
	}

	category, ok := domain.ParseCategory(normalizeLabel(label))
	if !ok {
		c.log.Warn().
			Str("label", label).
			Str("stage", string(domain.StateClassifyingIntent)).
			Msg("disambiguation returned an unknown label, defaulting to general")
		return domain.Classification{Category: domain.CategoryGeneral, Stage: domain.StageDefault, Matched: matched}
	}
	return domain.Classification{Category: category, Stage: domain.StageDisambiguation, Matched: matched}
}

func normalizeLabel(label string) string {
	return strings.Trim(strings.ToLower(strings.TrimSpace(label)), "\"'`.")
}
