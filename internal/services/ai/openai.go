package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"
)

const (
	// DefaultOpenAIModel is the default model to use
	DefaultOpenAIModel = "gpt-4o-mini"
	// DefaultOpenAIBaseURL is the default OpenAI API base URL
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	// DefaultTimeout is the default timeout for API calls
	DefaultTimeout = 30 * time.Second

	// ErrNoChoicesInResponse is returned when the API response has no choices
	ErrNoChoicesInResponse = "no choices in response"
)

// OpenAIProvider implements the SubtaskGenerator interface using OpenAI's API
type OpenAIProvider struct {
	client    openai.Client
	model     string
	logger    *zap.Logger
	debugMode bool
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(apiKey string, model string) *OpenAIProvider {
	return NewOpenAIProviderWithLogger(apiKey, DefaultOpenAIBaseURL, model, nil, false)
}

// NewOpenAIProviderWithLogger creates a new OpenAI provider with logger support
func NewOpenAIProviderWithLogger(apiKey string, baseURL string, model string, logger *zap.Logger, debugMode bool) *OpenAIProvider {
	if model == "" {
		model = DefaultOpenAIModel
	}
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}

	httpClient := &http.Client{
		Timeout: DefaultTimeout,
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithHTTPClient(httpClient),
	)

	return &OpenAIProvider{
		client:    client,
		model:     model,
		logger:    logger,
		debugMode: debugMode,
	}
}

// GenerateSubtasks decomposes an event into subtasks by sending a fixed
// instruction prompt and parsing the JSON array the model returns. Retries,
// if any, belong to the caller.
func (p *OpenAIProvider) GenerateSubtasks(ctx context.Context, title, description string) ([]GeneratedSubtask, error) {
	prompt := buildDecompositionPrompt(title, description)
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage("You are a helpful and intelligent task breakdown assistant. Respond with strict JSON only."),
		openai.UserMessage(prompt),
	}
	req := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(p.model),
		Messages: messages,
	}

	if p.logger != nil && p.debugMode {
		p.logger.Debug("llm_api_request",
			zap.String("operation", "generate_subtasks"),
			zap.String("model", p.model),
			zap.Int("prompt_length", len(prompt)),
		)
	}

	start := time.Now()
	resp, err := p.client.Chat.Completions.New(ctx, req)
	latency := time.Since(start)
	if err != nil {
		if p.logger != nil && p.debugMode {
			p.logger.Debug("llm_api_error",
				zap.String("operation", "generate_subtasks"),
				zap.String("model", p.model),
				zap.Error(err),
				zap.Int64("latency_ms", latency.Milliseconds()),
			)
		}
		if apiErr := ExtractAPIError(err); apiErr != nil {
			return nil, fmt.Errorf("failed to generate subtasks: %w", apiErr)
		}
		return nil, fmt.Errorf("failed to generate subtasks: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, errors.New(ErrNoChoicesInResponse)
	}

	content := resp.Choices[0].Message.Content
	if p.logger != nil && p.debugMode {
		p.logger.Debug("llm_api_response",
			zap.String("operation", "generate_subtasks"),
			zap.String("model", p.model),
			zap.Int("response_length", len(content)),
			zap.Int64("latency_ms", latency.Milliseconds()),
		)
	}

	return parseSubtasks(content)
}

// stripCodeFence removes markdown code fence markers the model sometimes
// wraps around its JSON output, with or without a language tag.
func stripCodeFence(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}

// parseSubtasks validates the raw model output into typed subtask records.
// Non-JSON output, a non-array document, records missing a title, or a
// priority outside the allowed set all fail the whole batch.
func parseSubtasks(raw string) ([]GeneratedSubtask, error) {
	cleaned := stripCodeFence(raw)

	var subtasks []GeneratedSubtask
	if err := json.Unmarshal([]byte(cleaned), &subtasks); err != nil {
		return nil, &ParseError{Reason: err.Error(), Raw: cleaned}
	}

	if len(subtasks) == 0 {
		return nil, &ParseError{Reason: "response contained no subtasks", Raw: cleaned}
	}

	for i, st := range subtasks {
		if strings.TrimSpace(st.Title) == "" {
			return nil, &ParseError{Reason: fmt.Sprintf("subtask %d has no title", i), Raw: cleaned}
		}
		priority := strings.ToLower(strings.TrimSpace(st.Priority))
		if !ValidPriorities[priority] {
			return nil, &ParseError{Reason: fmt.Sprintf("subtask %d has invalid priority %q", i, st.Priority), Raw: cleaned}
		}
		subtasks[i].Title = strings.TrimSpace(st.Title)
		subtasks[i].Priority = priority
	}

	return subtasks, nil
}

// buildDecompositionPrompt builds the fixed instruction prompt. The sizing
// rules live in the prompt itself; the parser does not count or clamp the
// number of subtasks the model decides on.
func buildDecompositionPrompt(title, description string) string {
	return fmt.Sprintf(`Given a task title and a detailed description, your job is to:
- Understand the scope and complexity.
- Estimate required effort and time.
- Break the task down into clear, actionable subtasks.
- Assign a priority ("high", "medium", or "low") to each subtask based on its importance to overall task completion.
- Estimate the expected time for each subtask in a human-readable format (e.g., "15 mins", "2 hours", "1-2 days").

Rules:
- If the task is very simple, create only 1-2 subtasks (or keep it as one task if further division isn't meaningful).
- If the task is moderately complex, generate 3-5 essential subtasks to guide the workflow.
- If the task is large or multi-step, break it down into bite-sized, sequential subtasks for smoother execution.
- Do not repeat the original title or description in the output.
- All subtasks should be relevant, useful, and avoid redundancy.

Output format:
Return your answer in strict JSON format, no markdown or explanation, following this array structure:
[
  {
    "title": "Subtask title",
    "priority": "high | medium | low",
    "estimated_time": "short description of time needed"
  }
]

Task to process:
Task: %s
Description: %s`, title, description)
}
