package completion

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/mkravets/effidash/internal/core/domain"
	"github.com/mkravets/effidash/internal/infrastructure/resilience"
)

// Config carries everything the completion client needs to talk to the
// chat-completions endpoint.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string

	MaxTokens   int
	Temperature float64

	RequestTimeout time.Duration
	ConnectTimeout time.Duration

	// MinRequestInterval gates consecutive outbound requests process-wide.
	MinRequestInterval time.Duration

	// MaxContentLength bounds the document text embedded in the prompt.
	MaxContentLength int

	DefaultPrompt string
}

// Client calls the chat-completions API with rate limiting and bounded retry.
// One instance is shared by all concurrent pipeline invocations; the limiter
// serializes their access to the downstream quota.
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
	executor   *resilience.Executor
}

func New(cfg Config, executor *resilience.Executor) *Client {
	if cfg.MaxContentLength <= 0 {
		cfg.MaxContentLength = 8000
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 120 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	var limiter *rate.Limiter
	if cfg.MinRequestInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(cfg.MinRequestInterval), 1)
	}

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		limiter:    limiter,
		executor:   executor,
	}
}

// Analyze sends the extracted text through the completion API and always
// returns an Analysis outcome, never an error. ProcessingTime covers the
// whole call including rate-limit waits and retries.
func (c *Client) Analyze(ctx context.Context, content, customPrompt string) domain.Analysis {
	start := time.Now()

	if strings.TrimSpace(content) == "" {
		return domain.Analysis{
			Success:        false,
			ErrorMessage:   "No content provided for analysis",
			ProcessingTime: time.Since(start).Seconds(),
		}
	}

	prompt := c.buildPrompt(content, customPrompt)
	payload := requestPayload{
		Model:       c.cfg.Model,
		Messages:    []message{{Role: "user", Content: prompt}},
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
		Stream:      false,
	}

	var response completionResponse
	err := c.executor.Execute(ctx, "chat_completion", func(ctx context.Context) error {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return err
			}
		}
		return c.post(ctx, payload, &response)
	}, classifyAPIError)
	if err != nil {
		return domain.Analysis{
			Success:        false,
			ErrorMessage:   userMessage(err),
			FailureKind:    failureKind(err),
			ProcessingTime: time.Since(start).Seconds(),
		}
	}

	return c.buildAnalysis(response, start)
}

func (c *Client) buildAnalysis(response completionResponse, start time.Time) domain.Analysis {
	if len(response.Choices) == 0 {
		return domain.Analysis{
			Success:        false,
			ErrorMessage:   "No response choices returned from API",
			FailureKind:    domain.FailureMalformed,
			ProcessingTime: time.Since(start).Seconds(),
		}
	}

	content := strings.TrimSpace(response.Choices[0].Message.Content)
	if content == "" {
		return domain.Analysis{
			Success:        false,
			ErrorMessage:   "Empty response content from API",
			FailureKind:    domain.FailureMalformed,
			ProcessingTime: time.Since(start).Seconds(),
		}
	}

	modelUsed := response.Model
	if modelUsed == "" {
		modelUsed = c.cfg.Model
	}

	return domain.Analysis{
		Success:        true,
		Content:        content,
		ProcessingTime: time.Since(start).Seconds(),
		ModelUsed:      modelUsed,
		TokensUsed:     response.Usage.TotalTokens,
		Metadata: map[string]any{
			"response_id":   response.ID,
			"created":       response.Created,
			"finish_reason": response.Choices[0].FinishReason,
		},
	}
}

func (c *Client) buildPrompt(content, customPrompt string) string {
	// MaxContentLength counts runes; documents are mostly Chinese and a
	// byte slice would cut a codepoint in half.
	if runes := []rune(content); len(runes) > c.cfg.MaxContentLength {
		content = string(runes[:c.cfg.MaxContentLength]) + "\n\n[内容已截断，以上为文档前半部分]"
	}
	prompt := customPrompt
	if strings.TrimSpace(prompt) == "" {
		prompt = c.cfg.DefaultPrompt
	}
	return prompt + "\n\n以下是需要分析的内容：\n\n" + content
}

// TestConnection probes the API with a minimal fixed prompt, short timeout
// and no retries.
func (c *Client) TestConnection(ctx context.Context) domain.ConnectionTest {
	start := time.Now()
	result := domain.ConnectionTest{}

	probeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	payload := requestPayload{
		Model:     c.cfg.Model,
		Messages:  []message{{Role: "user", Content: "Hello"}},
		MaxTokens: 10,
	}

	var response completionResponse
	err := c.post(probeCtx, payload, &response)
	result.ResponseTime = time.Since(start).Seconds()
	if err == nil {
		result.Success = true
		result.APIAccessible = true
		result.AuthenticationValid = true
		return result
	}

	var statusErr *HTTPStatusError
	switch {
	case errors.As(err, &statusErr):
		result.APIAccessible = true
		if statusErr.StatusCode == http.StatusUnauthorized {
			result.ErrorMessage = "Authentication failed, invalid API key"
		} else {
			result.ErrorMessage = "API returned status " + statusErr.Status
		}
	case errors.Is(err, context.DeadlineExceeded):
		result.ErrorMessage = "Connection timeout"
	default:
		result.ErrorMessage = "Connection error, unable to reach API"
	}
	return result
}
