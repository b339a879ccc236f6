package nlp

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ppiankov/clausescope/internal/model"
)

// ErrUnknownProvider is returned for an unsupported parser provider
var ErrUnknownProvider = errors.New("unknown parser provider")

// NewParser creates the parser selected by configuration
func NewParser(cfg model.ParserConfig) (Parser, error) {
	switch strings.ToLower(cfg.Provider) {
	case model.ProviderProse, "":
		return NewProseParser(), nil

	case model.ProviderOpenAI:
		p, err := NewOpenAIParser(OpenAIConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: cfg.Timeout,
		})
		if err != nil {
			return nil, err
		}
		return p, nil

	default:
		return nil, fmt.Errorf("%w: %s (supported: prose, openai)", ErrUnknownProvider, cfg.Provider)
	}
}
