// Package llm rewrites raw leave reasons into short professional text using
// the Anthropic Messages API.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"github.com/warp/leave-engine/leave"
)

const (
	DefaultModel     = "claude-3-5-haiku-latest"
	defaultMaxTokens = 200
	defaultTimeout   = 8 * time.Second
)

const systemPrompt = `You rewrite employee leave reasons for an HR system.
Return one or two professional sentences in the first person.
Keep every fact from the original. Do not add dates, durations or a leave category.
Return only the rewritten text.`

// MessageClient is the subset of the Anthropic client the rewriter uses.
type MessageClient interface {
	New(ctx context.Context, body anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// Rewriter implements leave.Rewriter.
type Rewriter struct {
	client    MessageClient
	model     string
	maxTokens int64
	timeout   time.Duration
	logger    *zap.Logger
}

var _ leave.Rewriter = (*Rewriter)(nil)

// New builds a rewriter backed by the real API. An empty model selects DefaultModel.
func New(apiKey, model string, logger *zap.Logger) *Rewriter {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return NewWithClient(&client.Messages, model, logger)
}

// NewWithClient builds a rewriter around any MessageClient.
func NewWithClient(client MessageClient, model string, logger *zap.Logger) *Rewriter {
	if model == "" {
		model = DefaultModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Rewriter{
		client:    client,
		model:     model,
		maxTokens: defaultMaxTokens,
		timeout:   defaultTimeout,
		logger:    logger,
	}
}

// Rewrite asks the model for a professional version of raw. The caller falls
// back to its own transform on any error.
func (r *Rewriter) Rewrite(ctx context.Context, raw string, leaveType leave.LeaveType) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	prompt := fmt.Sprintf("Leave category (for context only): %s\nOriginal reason: %s", leaveType.Label(), raw)
	started := time.Now()
	message, err := r.client.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(r.model),
		MaxTokens: r.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic rewrite: %w", err)
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			text := cleanup(block.Text)
			if text == "" {
				break
			}
			r.logger.Debug("reason rewritten",
				zap.String("model", r.model),
				zap.Int64("tokens_in", message.Usage.InputTokens),
				zap.Int64("tokens_out", message.Usage.OutputTokens),
				zap.Duration("took", time.Since(started)),
			)
			return text, nil
		}
	}
	return "", errors.New("no text content in anthropic response")
}

// cleanup strips surrounding whitespace and quotes the model sometimes adds.
func cleanup(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "\"'")
	return strings.TrimSpace(s)
}
