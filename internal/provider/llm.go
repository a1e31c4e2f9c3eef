package provider

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-scout/pkg/anthropic"
	"github.com/sells-group/lead-scout/pkg/perplexity"
)

const completionMaxTokens = 2048

// AnthropicCompleter generates text with Claude. Schemas are embedded in the
// system prompt and the reply is trimmed to the outermost JSON object.
type AnthropicCompleter struct {
	client anthropic.Client
	model  string
}

// NewAnthropicCompleter wraps an Anthropic client.
func NewAnthropicCompleter(c anthropic.Client, model string) *AnthropicCompleter {
	return &AnthropicCompleter{client: c, model: model}
}

func (a *AnthropicCompleter) Name() string { return "anthropic" }

func (a *AnthropicCompleter) Complete(ctx context.Context, system, user string, schema json.RawMessage) (string, error) {
	temp := 0.2
	if len(schema) > 0 {
		system += "\n\nRispondi SOLO con un oggetto JSON valido conforme a questo JSON Schema, senza testo aggiuntivo:\n" + string(schema)
	}
	resp, err := a.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       a.model,
		MaxTokens:   completionMaxTokens,
		System:      system,
		Messages:    []anthropic.Message{{Role: "user", Content: user}},
		Temperature: &temp,
	})
	if err != nil {
		return "", err
	}
	resp.Usage.Log(a.model, "complete")

	text := strings.TrimSpace(resp.Text())
	if len(schema) > 0 {
		return ExtractJSON(text)
	}
	return text, nil
}

// PerplexityCompleter generates text with Perplexity chat completions,
// using the json_schema response format when a schema is given.
type PerplexityCompleter struct {
	client perplexity.Client
}

// NewPerplexityCompleter wraps a Perplexity client.
func NewPerplexityCompleter(c perplexity.Client) *PerplexityCompleter {
	return &PerplexityCompleter{client: c}
}

func (p *PerplexityCompleter) Name() string { return Perplexity }

func (p *PerplexityCompleter) Complete(ctx context.Context, system, user string, schema json.RawMessage) (string, error) {
	temp := 0.2
	maxTokens := completionMaxTokens
	req := perplexity.ChatCompletionRequest{
		Messages: []perplexity.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: &temp,
		MaxTokens:   &maxTokens,
	}
	if len(schema) > 0 {
		req.ResponseFormat = &perplexity.ResponseFormat{
			Type:       "json_schema",
			JSONSchema: perplexity.JSONSchema{Schema: schema},
		}
	}
	resp, err := p.client.ChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", eris.New("perplexity: empty completion")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if len(schema) > 0 {
		return ExtractJSON(text)
	}
	return text, nil
}

// ExtractJSON returns the outermost JSON object in text, dropping code
// fences or prose around it.
func ExtractJSON(text string) (string, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", eris.New("provider: no JSON object in completion")
	}
	out := text[start : end+1]
	if !json.Valid([]byte(out)) {
		return "", eris.New("provider: completion is not valid JSON")
	}
	return out, nil
}
