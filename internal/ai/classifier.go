// Package ai escalates ambiguous category decisions to a chat model.
// The capability is opaque to the pipeline: candidates and product text
// in, one of the offered category ids (or no decision) out.
package ai

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"eshop/mapper/internal/config"
	"eshop/mapper/internal/domain"

	"github.com/goccy/go-json"
	openai "github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
)

// ErrNoDecision means the model declined to pick a candidate or picked
// an id that was not offered. Callers treat it as "mapping absent".
var ErrNoDecision = errors.New("no category decision")

type Classifier interface {
	Classify(ctx context.Context, candidates []domain.FlatCategory, productText string) (int, error)
}

type openAIClassifier struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	rl      ratelimit.Limiter
}

func NewClassifier(cfg config.AIConfig) Classifier {
	rps := cfg.MaxRequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	return &openAIClassifier{
		client:  openai.NewClient(cfg.APIKey),
		model:   cfg.Model,
		timeout: timeout,
		rl:      ratelimit.New(rps),
	}
}

const systemPrompt = `You assign e-shop products to marketplace categories.
You are given a product and a numbered list of candidate categories.
Reply with JSON only: {"category_id": <id>} picking the best candidate,
or {"category_id": null} if none of the candidates fits.`

// Classify asks the model to choose among the offered candidates. The
// call is rate limited and bounded by a per-call timeout so a slow
// provider degrades one decision, never the whole batch.
func (c *openAIClassifier) Classify(ctx context.Context, candidates []domain.FlatCategory, productText string) (int, error) {
	if len(candidates) == 0 {
		return 0, ErrNoDecision
	}

	c.rl.Take()

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(reqCtx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0,
		MaxTokens:   32,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildPrompt(candidates, productText),
			},
		},
	})
	if err != nil {
		return 0, fmt.Errorf("category verification call failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return 0, ErrNoDecision
	}

	id, err := parseDecision(resp.Choices[0].Message.Content, candidates)
	if err != nil {
		log.Debugf("Model gave no usable decision for %q: %v", productText, err)
		return 0, err
	}
	return id, nil
}

func buildPrompt(candidates []domain.FlatCategory, productText string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Product: %s\n\nCandidates:\n", productText)
	for _, c := range candidates {
		fmt.Fprintf(&b, "%d: %s\n", c.ID, c.FullPath)
	}
	return b.String()
}

type decision struct {
	CategoryID *int `json:"category_id"`
}

var digitsRe = regexp.MustCompile(`-?\d+`)

// parseDecision extracts the chosen id from the model reply and checks
// it against the offered candidates. An id outside the list is rejected,
// the model never gets to invent categories.
func parseDecision(raw string, candidates []domain.FlatCategory) (int, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	var id int
	var dec decision
	if err := json.Unmarshal([]byte(raw), &dec); err == nil {
		if dec.CategoryID == nil {
			return 0, ErrNoDecision
		}
		id = *dec.CategoryID
	} else {
		// Fall back to the first integer in a free-form reply.
		match := digitsRe.FindString(raw)
		if match == "" {
			return 0, ErrNoDecision
		}
		parsed, err := strconv.Atoi(match)
		if err != nil {
			return 0, ErrNoDecision
		}
		id = parsed
	}

	for _, c := range candidates {
		if c.ID == id {
			return id, nil
		}
	}
	return 0, fmt.Errorf("%w: id %d is not among the offered candidates", ErrNoDecision, id)
}
