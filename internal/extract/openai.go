package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/pulsegraph/pulsegraph/internal/logger"
	"github.com/pulsegraph/pulsegraph/internal/model"
)

// OpenAIExtractor extracts claims through the Chat Completions API with
// JSON-mode output.
type OpenAIExtractor struct {
	client *openai.Client
	cfg    model.ExtractConfig
	log    *logger.Logger
}

// NewOpenAIExtractor builds the extractor. The API key is required.
func NewOpenAIExtractor(cfg model.ExtractConfig, log *logger.Logger) (*OpenAIExtractor, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("extract: api_key is required")
	}
	if log == nil {
		log = logger.Nop()
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &OpenAIExtractor{
		client: openai.NewClientWithConfig(clientConfig),
		cfg:    cfg,
		log:    log.With("component", "extract.openai"),
	}, nil
}

const systemPrompt = "You extract structured claims from business articles. " +
	"Respond with a JSON object of the form " +
	`{"claims": [{"text", "claim_type", "direction", "timeframe", "value", "unit", "confidence", "evidence"}]}.`

func (e *OpenAIExtractor) buildPrompt(req Request) string {
	var sb strings.Builder
	sb.WriteString("Extract earnings-related claims for a knowledge graph.\n\n")
	fmt.Fprintf(&sb, "Company: %s\n", req.CompanyName)
	fmt.Fprintf(&sb, "Period: %s\n", req.Period)
	fmt.Fprintf(&sb, "Source title: %s\n", req.SourceTitle)
	fmt.Fprintf(&sb, "Source URL: %s\n\n", req.SourceURL)
	sb.WriteString("Rules:\n")
	sb.WriteString("- Extract only claims grounded in the text.\n")
	sb.WriteString("- Evidence must be an exact short quote from the text.\n")
	fmt.Fprintf(&sb, "- Max %d claims.\n", e.maxClaims())
	sb.WriteString(`- claim_type is one of: revenue, eps, guidance, margin, cash_flow, capex, demand, supply, pricing, product, competition, risk, regulatory, macro, other.` + "\n")
	sb.WriteString(`- direction is one of: up, down, flat, mixed, unknown.` + "\n")
	sb.WriteString("- confidence is a number in [0, 1].\n")
	return sb.String()
}

func (e *OpenAIExtractor) maxClaims() int {
	if e.cfg.MaxClaims > 0 {
		return e.cfg.MaxClaims
	}
	return 10
}

// Extract runs one document through the model and validates the response.
func (e *OpenAIExtractor) Extract(ctx context.Context, req Request) ([]model.Claim, error) {
	text := req.Text
	if e.cfg.MaxChars > 0 && len(text) > e.cfg.MaxChars {
		text = text[:e.cfg.MaxChars]
	}

	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}

	chatReq := openai.ChatCompletionRequest{
		Model: e.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: e.buildPrompt(req)},
			{Role: openai.ChatMessageRoleUser, Content: "TEXT:\n" + text},
		},
		MaxTokens:   e.cfg.MaxTokens,
		Temperature: e.cfg.Temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	resp, err := e.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, fmt.Errorf("extract: completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("extract: empty completion response")
	}

	var payload claimsPayload
	content := resp.Choices[0].Message.Content
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedClaims, err)
	}

	claims, err := validatePayload(payload, req, e.maxClaims())
	if err != nil {
		return nil, err
	}
	e.log.Debug("extraction complete", "url", req.SourceURL, "claims", len(claims),
		"tokens", resp.Usage.TotalTokens)
	return claims, nil
}
