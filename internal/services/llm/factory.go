package llm

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/citare/internal/common"
	"github.com/ternarybob/citare/internal/interfaces"
)

// NewLLMService creates the configured LLM provider
func NewLLMService(cfg *common.Config, logger arbor.ILogger) (interfaces.LLMService, error) {
	provider := cfg.LLM.Provider
	if provider == "" {
		provider = "claude"
	}

	logger.Info().Str("provider", provider).Msg("Initializing LLM service")

	switch provider {
	case "claude":
		return NewClaudeService(&cfg.Claude, logger)
	case "gemini":
		return NewGeminiService(&cfg.Gemini, logger)
	default:
		return nil, fmt.Errorf("unsupported LLM provider '%s': must be 'claude' or 'gemini'", provider)
	}
}
