// Package oracle wraps the external semantic-judgment providers. A
// judge receives two facts and returns a structured verdict; everything
// else about the model is a black box. Providers must tolerate
// concurrent calls.
package oracle

import (
	"context"
	"fmt"
	"time"

	"github.com/mkratov/concordia/internal/model"
)

// Judge renders a verdict on whether two facts conflict
type Judge interface {
	// Name returns the provider name
	Name() string

	// Judge compares two facts. Implementations apply their own
	// per-call timeout on top of ctx.
	Judge(ctx context.Context, a, b model.Fact) (Verdict, error)

	// IsAvailable checks if the provider is configured and reachable
	IsAvailable(ctx context.Context) bool
}

// Verdict is the oracle's structured answer. Field defaults follow the
// backfill rules in ParseVerdict; a Verdict is never an open-ended map.
type Verdict struct {
	HasConflict  bool               `json:"has_conflict"`
	ConflictType model.ConflictType `json:"conflict_type"`
	Severity     model.Severity     `json:"severity"`
	Explanation  string             `json:"explanation"`
	Confidence   float64            `json:"confidence"`
}

// Config holds judgment provider configuration
type Config struct {
	// Provider name: "openai", "deepseek", "ollama", "" (disabled)
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for hosted providers
	APIKey string

	// BaseURL for OpenAI-compatible or local endpoints
	BaseURL string

	// Timeout applied to each individual judgment call
	Timeout time.Duration

	// MaxTokens for the response
	MaxTokens int

	// RequestsPerSecond and Burst bound the call rate across batches
	RequestsPerSecond float64
	Burst             int
}

// ConfigFromModel converts the model-level oracle configuration
func ConfigFromModel(c model.OracleConfig) Config {
	return Config{
		Provider:          c.Provider,
		Model:             c.Model,
		APIKey:            c.APIKey,
		BaseURL:           c.BaseURL,
		Timeout:           c.Timeout,
		MaxTokens:         c.MaxTokens,
		RequestsPerSecond: c.RequestsPerSecond,
		Burst:             c.Burst,
	}
}

const systemPrompt = "You are a document review assistant specialized in " +
	"finding factual conflicts and logical contradictions. Judge precisely " +
	"whether two facts conflict; avoid false positives."

// BuildPrompt renders the comparison prompt for a fact pair. The model
// is instructed to answer with single-line JSON so the response parser
// stays simple; ParseVerdict still repairs pretty-printed output.
func BuildPrompt(a, b model.Fact) string {
	return fmt.Sprintf(`Below are two facts extracted from different locations in the same document. Judge whether they conflict or contradict each other.

Fact A: %s
(type: %s | location: %s)

Fact B: %s
(type: %s | location: %s)

Analyze both facts carefully for conflicts: data inconsistency, logical contradiction, time conflict, or definition conflict.

Reply with a single line of JSON only (no newlines, no indentation, no extra whitespace):
{"has_conflict": true or false, "conflict_type": "none/data_inconsistency/logical_contradiction/time_conflict/definition_conflict", "severity": "none/low/medium/high", "explanation": "short reason", "confidence": 0.5}`,
		a.Content, typeLabel(a), locationLabel(a.Location),
		b.Content, typeLabel(b), locationLabel(b.Location))
}

func typeLabel(f model.Fact) string {
	if f.Type == "" {
		return "unknown"
	}
	return f.Type
}

func locationLabel(loc model.Location) string {
	if loc.SectionTitle == "" {
		return fmt.Sprintf("section %d", loc.SectionIndex+1)
	}
	return fmt.Sprintf("section %d: %s", loc.SectionIndex+1, loc.SectionTitle)
}
