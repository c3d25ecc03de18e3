// Package tokens estimates token usage when the LLM response carries none.
package tokens

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

func init() {
	tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
}

const defaultEncoding = "cl100k_base"

// Estimator counts tokens with a tiktoken encoding.
type Estimator struct {
	mu       sync.Mutex
	encoding *tiktoken.Tiktoken
}

var (
	cacheMu sync.Mutex
	cache   = map[string]*Estimator{}
)

// ForModel returns a shared estimator for model, falling back to cl100k_base
// for models tiktoken does not know.
func ForModel(model string) (*Estimator, error) {
	cacheMu.Lock()
	defer cacheMu.Unlock()

	if e, ok := cache[model]; ok {
		return e, nil
	}

	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding(defaultEncoding)
		if err != nil {
			return nil, err
		}
	}
	e := &Estimator{encoding: enc}
	cache[model] = e
	return e, nil
}

// Count returns the total token count of texts.
func (e *Estimator) Count(texts ...string) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	total := 0
	for _, text := range texts {
		if text == "" {
			continue
		}
		total += len(e.encoding.Encode(text, nil, nil))
	}
	return total
}
