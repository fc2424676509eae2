package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sashabaranov/go-openai"
)

const (
	maxDescriptionRunes  = 1500
	DefaultNotesLanguage = "cpp"
)

var (
	ErrInvalidAPIKey = errors.New("upstream rejected the api key")
	ErrUpstream      = errors.New("upstream request failed")
)

var upstreamErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "leetgym_upstream_errors_total",
		Help: "Failed calls to the chat completion provider",
	},
	[]string{"endpoint"},
)

type LLMConfig struct {
	BaseURL     string
	APIKey      string // Shared key used when the caller brings none
	Model       string
	MaxTokens   int
	Temperature float32
	HTTPClient  *http.Client
}

type ChatMessage struct {
	Role    string
	Content string
}

type ProblemContext struct {
	Title       string
	Difficulty  string
	Description string
}

// Notes is the revision card summary generated from a finished conversation
type Notes struct {
	Category        string `json:"category"`
	Approach        string `json:"approach"`
	Complexity      string `json:"complexity"`
	CodeSnippet     string `json:"codeSnippet"`
	OptimalSolution string `json:"optimalSolution"`
}

// LLM talks to any OpenAI compatible chat completion endpoint
type LLM struct {
	cfg LLMConfig
}

func NewLLM(cfg LLMConfig) *LLM {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1500
	}

	return &LLM{cfg: cfg}
}

func (l *LLM) client(apiKey string) *openai.Client {
	if apiKey == "" {
		apiKey = l.cfg.APIKey
	}

	cfg := openai.DefaultConfig(apiKey)
	if l.cfg.BaseURL != "" {
		cfg.BaseURL = l.cfg.BaseURL
	}
	if l.cfg.HTTPClient != nil {
		cfg.HTTPClient = l.cfg.HTTPClient
	}

	return openai.NewClientWithConfig(cfg)
}

// ChatStream yields the text deltas of one streamed completion
type ChatStream struct {
	s *openai.ChatCompletionStream
}

// Next returns the next non-empty piece of text, io.EOF once the upstream is done
func (c *ChatStream) Next() (string, error) {
	for {
		resp, err := c.s.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", io.EOF
			}

			upstreamErrors.WithLabelValues("chat").Inc()
			return "", fmt.Errorf("%w, %w", ErrUpstream, err)
		}

		if len(resp.Choices) == 0 || resp.Choices[0].Delta.Content == "" {
			continue
		}

		return resp.Choices[0].Delta.Content, nil
	}
}

func (c *ChatStream) Close() error {
	return c.s.Close()
}

// OpenChat starts a streamed coaching reply. The upstream request lives as long
// as ctx, so cancelling ctx closes the upstream connection
func (l *LLM) OpenChat(ctx context.Context, apiKey string, pc ProblemContext, history []ChatMessage) (*ChatStream, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: coachPrompt(pc),
	})
	messages = append(messages, toOpenAI(history)...)

	s, err := l.client(apiKey).CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:       l.cfg.Model,
		Messages:    messages,
		MaxTokens:   l.cfg.MaxTokens,
		Temperature: l.cfg.Temperature,
		Stream:      true,
	})
	if err != nil {
		upstreamErrors.WithLabelValues("chat").Inc()
		return nil, classify(err)
	}

	return &ChatStream{s: s}, nil
}

// GenerateNotes asks the model for a structured summary of the conversation
func (l *LLM) GenerateNotes(ctx context.Context, apiKey string, pc ProblemContext, history []ChatMessage, language string) (*Notes, error) {
	if language == "" {
		language = DefaultNotesLanguage
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: notesPrompt,
	})
	messages = append(messages, toOpenAI(history)...)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: fmt.Sprintf("Summarize the solution for: %s. PREFERRED LANGUAGE: %s", pc.Title, language),
	})

	resp, err := l.client(apiKey).CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    l.cfg.Model,
		Messages: messages,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		upstreamErrors.WithLabelValues("notes").Inc()
		return nil, classify(err)
	}

	if len(resp.Choices) == 0 {
		upstreamErrors.WithLabelValues("notes").Inc()
		return nil, fmt.Errorf("%w, empty completion", ErrUpstream)
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		content = "{}"
	}

	var n Notes
	if err := json.Unmarshal([]byte(content), &n); err != nil {
		upstreamErrors.WithLabelValues("notes").Inc()
		return nil, fmt.Errorf("%w, completion is not valid JSON, %w", ErrUpstream, err)
	}

	return &n, nil
}

func toOpenAI(history []ChatMessage) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(history))
	for i, m := range history {
		out[i] = openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}

	return out
}

func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w, %w", ErrInvalidAPIKey, err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w, %w", ErrInvalidAPIKey, err)
	}

	return fmt.Errorf("%w, %w", ErrUpstream, err)
}
