package oracle

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/mkratov/concordia/internal/model"
)

// deepseekBaseURL is the default endpoint when the provider is
// "deepseek"; the API is OpenAI-compatible
const deepseekBaseURL = "https://api.deepseek.com/v1"

// OpenAIJudge implements Judge against any OpenAI-compatible chat
// completion endpoint (OpenAI, DeepSeek, vLLM, ...)
type OpenAIJudge struct {
	client  *openai.Client
	config  Config
	limiter *rate.Limiter
	name    string
}

// NewOpenAIJudge creates a judge for an OpenAI-compatible provider
func NewOpenAIJudge(config Config) (*OpenAIJudge, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("API key is required for provider %q", config.Provider)
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	} else if config.Provider == "deepseek" {
		clientConfig.BaseURL = deepseekBaseURL
	}

	rps := config.RequestsPerSecond
	if rps <= 0 {
		rps = 10
	}
	burst := config.Burst
	if burst <= 0 {
		burst = int(rps)
	}

	name := config.Provider
	if name == "" {
		name = "openai"
	}

	return &OpenAIJudge{
		client:  openai.NewClientWithConfig(clientConfig),
		config:  config,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		name:    name,
	}, nil
}

// Name returns the provider name
func (j *OpenAIJudge) Name() string {
	return j.name
}

// IsAvailable checks if the provider is properly configured
func (j *OpenAIJudge) IsAvailable(ctx context.Context) bool {
	_, err := j.client.ListModels(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s API check failed: %v\n", j.name, err)
		return false
	}
	return true
}

// Judge compares two facts through the chat completions API. The rate
// limiter is shared across concurrent batch calls; the per-call timeout
// covers the limiter wait as well, so a stalled limiter surfaces as a
// normal per-pair failure.
func (j *OpenAIJudge) Judge(ctx context.Context, a, b model.Fact) (Verdict, error) {
	timeout := j.config.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := j.limiter.Wait(callCtx); err != nil {
		return Verdict{}, fmt.Errorf("rate limit wait: %w", err)
	}

	maxTokens := j.config.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1024
	}

	chatModel := j.config.Model
	if chatModel == "" {
		if j.name == "deepseek" {
			chatModel = "deepseek-chat"
		} else {
			chatModel = openai.GPT4oMini
		}
	}

	req := openai.ChatCompletionRequest{
		Model: chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: BuildPrompt(a, b)},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.1, // Low temperature, this is classification not prose
	}

	resp, err := j.client.CreateChatCompletion(callCtx, req)
	if err != nil {
		return Verdict{}, fmt.Errorf("%s API error: %w", j.name, err)
	}
	if len(resp.Choices) == 0 {
		return Verdict{}, fmt.Errorf("no response from %s", j.name)
	}

	return ParseVerdict(resp.Choices[0].Message.Content)
}
