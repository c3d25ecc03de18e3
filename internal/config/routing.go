package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/domain"
)

// Routing holds the classifier vocabulary and retrieval tuning.
type Routing struct {
	Keywords  map[domain.Category][]string `yaml:"keywords"`
	Greetings []string                     `yaml:"greetings"`
	RAG       RAGSettings                  `yaml:"rag"`
}

// RAGSettings tunes vector search.
type RAGSettings struct {
	Threshold float32 `yaml:"threshold"`
	TopK      int     `yaml:"top_k"`
}

// DefaultRouting returns the built-in keyword sets and RAG settings.
func DefaultRouting() Routing {
	return Routing{
		Keywords: map[domain.Category][]string{
			domain.CategoryCRM: {"lead", "trainer", "learner", "campaign", "course", "task", "note", "activity"},
			domain.CategoryLMS: {"batch", "training schedule"},
			domain.CategoryRMS: {"candidate", "job opening", "interview", "company"},
			domain.CategoryRAG: {"policy", "document", "manual", "knowledge base"},
		},
		Greetings: []string{
			"hi", "hello", "hey", "hii", "hiii", "hiiii",
			"good morning", "good afternoon", "good evening",
			"morning", "afternoon", "evening",
			"greetings", "greeting",
			"hi there", "hello there", "hey there",
		},
		RAG: RAGSettings{Threshold: 0.5, TopK: 3},
	}
}

// LoadRouting reads a YAML routing file. Sections absent from the file keep their defaults.
func LoadRouting(path string) (Routing, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Routing{}, fmt.Errorf("failed to read routing config: %w", err)
	}

	var file Routing
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Routing{}, fmt.Errorf("failed to parse routing config: %w", err)
	}

	routing := DefaultRouting()
	if len(file.Keywords) > 0 {
		routing.Keywords = file.Keywords
	}
	if len(file.Greetings) > 0 {
		routing.Greetings = file.Greetings
	}
	if file.RAG.Threshold != 0 {
		routing.RAG.Threshold = file.RAG.Threshold
	}
	if file.RAG.TopK != 0 {
		routing.RAG.TopK = file.RAG.TopK
	}

	if err := routing.Validate(); err != nil {
		return Routing{}, err
	}
	return routing, nil
}

// Validate rejects keyword sets for unknown or non-retrieval categories and out-of-range RAG settings.
func (r Routing) Validate() error {
	for category, words := range r.Keywords {
		if !category.DataBacked() {
			return fmt.Errorf("routing: keywords defined for non-retrieval category %q", category)
		}
		if len(words) == 0 {
			return fmt.Errorf("routing: empty keyword set for %q", category)
		}
	}
	if r.RAG.Threshold < 0 || r.RAG.Threshold > 1 {
		return fmt.Errorf("routing: rag threshold %v out of range [0,1]", r.RAG.Threshold)
	}
	if r.RAG.TopK <= 0 {
		return fmt.Errorf("routing: rag top_k must be positive, got %d", r.RAG.TopK)
	}
	return nil
}
