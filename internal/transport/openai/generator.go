package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/gfinder/docchat/internal/domain"
)

// Generator synthesizes a cited answer from the question and the ranked
// document list via an OpenAI-compatible chat completion API.
type Generator struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
	timeout     time.Duration
	logger      *zap.Logger
}

// GeneratorConfig holds the answer generator settings.
type GeneratorConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
	Logger      *zap.Logger
}

// NewGenerator creates a chat-completion answer generator.
func NewGenerator(cfg *GeneratorConfig) *Generator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Generator{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
		logger:      cfg.Logger,
	}
}

// Generate asks the model to answer the question from the ranked documents.
// Failures and empty completions surface as domain.ErrGenerationFailed.
func (g *Generator) Generate(ctx context.Context, question string, docs []domain.RankedDocument) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(question, docs)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w: %w", domain.ErrGenerationFailed, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response: %w", domain.ErrGenerationFailed)
	}

	answer := strings.TrimSpace(resp.Choices[0].Message.Content)
	if answer == "" {
		return "", fmt.Errorf("blank answer text: %w", domain.ErrGenerationFailed)
	}

	return answer, nil
}

// buildPrompt lists each source's title, URL and summary ahead of the
// question and asks for a cited answer.
func buildPrompt(question string, docs []domain.RankedDocument) string {
	var sb strings.Builder
	sb.WriteString("以下の資料を参照して、ユーザーの質問に日本語で回答してください。\n\n")

	for _, rd := range docs {
		fmt.Fprintf(&sb, "資料名: %s\nURL: %s\n内容要約: %s\n---\n",
			rd.Document.Title, rd.Document.URL, rd.Document.Summary)
	}

	fmt.Fprintf(&sb, "\n質問: %s\n\n", question)
	sb.WriteString("回答を記述してください。回答の最後に「参考資料：」として、資料名とURLを列挙してください。\n")

	return sb.String()
}
