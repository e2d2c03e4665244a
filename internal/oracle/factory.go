package oracle

import (
	"fmt"
	"strings"
)

// NewJudge creates a judgment provider from configuration. An empty
// provider name disables judgment (nil, nil).
func NewJudge(config Config) (Judge, error) {
	switch strings.ToLower(config.Provider) {
	case "openai", "deepseek":
		cfg := config
		cfg.Provider = strings.ToLower(config.Provider)
		return NewOpenAIJudge(cfg)

	case "ollama":
		return NewOllamaJudge(config)

	case "":
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown oracle provider: %s (supported: openai, deepseek, ollama)", config.Provider)
	}
}
