// Package genai wraps the OpenAI chat-completions API for coachbot.
package genai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Sampling profile names. The bot has historically been run with two upstream
// configurations; the profile makes the choice explicit instead of hard-coding
// one of them.
const (
	SamplingDeterministic = "deterministic"
	SamplingCreative      = "creative"
)

// Defaults applied when no option overrides them.
const (
	DefaultModel     = "gpt-4o"
	DefaultMaxTokens = 1000
	DefaultTimeout   = 60 * time.Second

	deterministicTemperature = 0.0
	creativeTemperature      = 0.7
)

// ErrEmptyResponse indicates the upstream returned zero candidate completions.
var ErrEmptyResponse = errors.New("completion returned no choices")

// completionService defines the minimal surface of the OpenAI client we call,
// kept as an interface so tests can substitute a fake.
type completionService interface {
	New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// ClientInterface abstracts completion generation for consumers and tests.
type ClientInterface interface {
	GenerateWithMessages(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error)
}

// Opts holds configuration assembled from Options.
type Opts struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int64
	Timeout     time.Duration
}

// Option configures the GenAI client.
type Option func(*Opts)

// WithAPIKey sets the OpenAI API key.
func WithAPIKey(key string) Option {
	return func(o *Opts) { o.APIKey = key }
}

// WithBaseURL overrides the completion API endpoint.
func WithBaseURL(url string) Option {
	return func(o *Opts) { o.BaseURL = url }
}

// WithModel overrides the completion model.
func WithModel(model string) Option {
	return func(o *Opts) { o.Model = model }
}

// WithTemperature overrides the sampling temperature.
func WithTemperature(t float64) Option {
	return func(o *Opts) { o.Temperature = t }
}

// WithMaxTokens overrides the maximum completion length.
func WithMaxTokens(n int64) Option {
	return func(o *Opts) { o.MaxTokens = n }
}

// WithTimeout bounds each completion call. A hung upstream otherwise blocks
// message dispatch indefinitely.
func WithTimeout(d time.Duration) Option {
	return func(o *Opts) { o.Timeout = d }
}

// WithSamplingProfile applies a named sampling profile. Unknown names are
// ignored with a warning so a typo cannot change behavior unnoticed. Options
// applied later (e.g. WithTemperature) override the profile.
func WithSamplingProfile(name string) Option {
	return func(o *Opts) {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case SamplingDeterministic:
			o.Temperature = deterministicTemperature
		case SamplingCreative:
			o.Temperature = creativeTemperature
		default:
			slog.Warn("Unknown sampling profile, keeping current temperature", "profile", name, "temperature", o.Temperature)
		}
	}
}

// Client wraps the OpenAI chat-completion service.
type Client struct {
	chat        completionService
	model       string
	temperature float64
	maxTokens   int64
	timeout     time.Duration
}

// NewClient creates a GenAI client from the provided options. An API key is
// required; everything else has defaults.
func NewClient(opts ...Option) (*Client, error) {
	cfg := Opts{
		Model:       DefaultModel,
		Temperature: deterministicTemperature,
		MaxTokens:   DefaultMaxTokens,
		Timeout:     DefaultTimeout,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key not set")
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}
	cli := openai.NewClient(reqOpts...)

	slog.Debug("GenAI client created", "model", cfg.Model, "temperature", cfg.Temperature, "max_tokens", cfg.MaxTokens, "timeout", cfg.Timeout, "base_url_set", cfg.BaseURL != "")
	return &Client{
		chat:        &cli.Chat.Completions,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		timeout:     cfg.Timeout,
	}, nil
}

// GenerateWithMessages sends an ordered list of role-tagged messages to the
// completion API and returns the first choice's text, trimmed of surrounding
// whitespace. Returns ErrEmptyResponse when the upstream yields no choices.
func (c *Client) GenerateWithMessages(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("no messages to send")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Messages:    messages,
		MaxTokens:   openai.Int(c.maxTokens),
		Temperature: openai.Float(c.temperature),
	}

	slog.Debug("GenAI GenerateWithMessages", "model", c.model, "temperature", c.temperature, "message_count", len(messages))
	resp, err := c.chat.New(ctx, params)
	if err != nil {
		slog.Error("GenAI chat completion failed", "error", err, "model", c.model)
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		slog.Error("GenAI chat completion returned no choices", "model", c.model)
		return "", ErrEmptyResponse
	}

	result := strings.TrimSpace(resp.Choices[0].Message.Content)
	slog.Debug("GenAI chat completion succeeded", "response_length", len(result))
	return result, nil
}
