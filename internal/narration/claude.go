package narration

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"github.com/cory-johannsen/tavern/internal/config"
	"github.com/cory-johannsen/tavern/internal/game/quest"
)

// messenger is the slice of the Anthropic Messages API that Claude uses.
type messenger interface {
	New(ctx context.Context, body anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// Claude is a Gateway backed by the Anthropic Messages API.
type Claude struct {
	msgs        messenger
	model       anthropic.Model
	maxTokens   int64
	temperature float64
	conv        *Conversations
	logger      *zap.Logger
}

// NewClaude builds a Claude narrator from cfg.
//
// Precondition: logger must be non-nil.
// Postcondition: Returns ErrNoAPIKey when cfg.APIKey is empty.
func NewClaude(cfg config.NarratorConfig, logger *zap.Logger) (*Claude, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	client := anthropic.NewClient(option.WithAPIKey(cfg.APIKey))
	return newClaude(&client.Messages, cfg, logger), nil
}

func newClaude(msgs messenger, cfg config.NarratorConfig, logger *zap.Logger) *Claude {
	if logger == nil {
		panic("narration.NewClaude: logger must not be nil")
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 800
	}
	return &Claude{
		msgs:        msgs,
		model:       anthropic.Model(cfg.Model),
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
		conv:        NewConversations(cfg.HistoryKeep, cfg.HistorySend),
		logger:      logger,
	}
}

// Conversations exposes the per-addressee history.
func (c *Claude) Conversations() *Conversations {
	return c.conv
}

// Narrate sends request with the addressee's recent history. The exchange is
// recorded only when the model answers.
func (c *Claude) Narrate(ctx context.Context, request string, addressee Addressee, view View) (string, error) {
	if addressee == "" {
		addressee = Narrator
	}
	var msgs []anthropic.MessageParam
	for _, m := range c.conv.Recent(addressee) {
		if m.Role == RoleAssistant {
			msgs = append(msgs, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		} else {
			msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(request)))

	reply, err := c.complete(ctx, SystemPrompt(addressee, view), msgs)
	if err != nil {
		return "", fmt.Errorf("narrating for %s: %w", addressee, err)
	}
	c.conv.Append(addressee, RoleUser, request)
	c.conv.Append(addressee, RoleAssistant, reply)
	return reply, nil
}

// ProposeDifficulty asks for a DC and parses the first value in [8, 20].
func (c *Claude) ProposeDifficulty(ctx context.Context, skill string, view View) (int, error) {
	reply, err := c.ask(ctx, gameMasterPrompt(view), DifficultyPrompt(skill, view))
	if err != nil {
		return 0, fmt.Errorf("proposing %s difficulty: %w", skill, err)
	}
	return ParseDifficulty(reply)
}

// ProposeQuestVariation asks for a JSON retelling of base.
func (c *Claude) ProposeQuestVariation(ctx context.Context, base quest.Quest) (quest.Variation, error) {
	reply, err := c.ask(ctx, VariationPrompt(base), "Generate a quest variation.")
	if err != nil {
		return quest.Variation{}, fmt.Errorf("varying quest %s: %w", base.ID, err)
	}
	return ParseVariation(reply)
}

// RandomEvent asks for a short happening at the player's location.
func (c *Claude) RandomEvent(ctx context.Context, view View) (string, error) {
	reply, err := c.ask(ctx, RandomEventPrompt(view), "Generate a random event.")
	if err != nil {
		return "", fmt.Errorf("random event: %w", err)
	}
	return reply, nil
}

func (c *Claude) ask(ctx context.Context, system, prompt string) (string, error) {
	return c.complete(ctx, system, []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
	})
}

func (c *Claude) complete(ctx context.Context, system string, msgs []anthropic.MessageParam) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    []anthropic.TextBlockParam{{Text: system}},
		Messages:  msgs,
	}
	if c.temperature > 0 {
		params.Temperature = anthropic.Float(c.temperature)
	}
	msg, err := c.msgs.New(ctx, params)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", fmt.Errorf("%w: empty reply", ErrMalformed)
	}
	c.logger.Debug("narration reply",
		zap.String("model", string(c.model)),
		zap.Int("messages", len(msgs)),
		zap.Int("chars", len(text)),
	)
	return text, nil
}
