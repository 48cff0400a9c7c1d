// Package phrasing turns answer payloads into sentences. The numbers always
// come from the payload; a language model only rewords them.
package phrasing

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/answer"
	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/config"
	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/observability"
)

// Provider names accepted by New.
const (
	ProviderNone   = "none"
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

// Phraser renders a payload as a reply to question.
type Phraser interface {
	Phrase(ctx context.Context, question string, p answer.Payload) (string, error)
}

// Chat message roles.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is one chat message sent to a language model.
type Message struct {
	Role    string
	Content string
}

// Generator is a chat-completion backend.
type Generator interface {
	Generate(ctx context.Context, messages []Message) (string, error)
}

const systemPrompt = `You are an assistant for quantity take-off on building information models.
You receive a question and a JSON answer computed by the take-off system.
Rules:
- Every number in your reply must appear in the JSON answer. Never compute, estimate or invent quantities.
- Keep units exactly as given.
- If "value" is null, say that the model does not contain the data needed and do not guess.
- If "confidence" is HEURISTIC, say the figure was estimated from element dimensions.
- If "confidence" is UNKNOWN, say some elements carried no quantity data.
- If "defaulted" lists parameters, state the assumed values.
- If "clarification_needed" is true, ask the user to rephrase and suggest an example question.
Reply in at most three sentences.`

// LLMPhraser phrases payloads with a language model.
type LLMPhraser struct {
	gen Generator
}

// NewLLMPhraser wraps gen.
func NewLLMPhraser(gen Generator) *LLMPhraser {
	return &LLMPhraser{gen: gen}
}

// Phrase implements Phraser.
func (p *LLMPhraser) Phrase(ctx context.Context, question string, payload answer.Payload) (string, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode payload: %w", err)
	}
	messages := []Message{
		{Role: RoleSystem, Content: systemPrompt},
		{Role: RoleUser, Content: fmt.Sprintf("Question: %s\n\nAnswer JSON:\n%s", question, data)},
	}
	return p.gen.Generate(ctx, messages)
}

// Fallback tries Primary and falls back to Secondary when it fails.
type Fallback struct {
	Primary   Phraser
	Secondary Phraser
	Log       *observability.Logger
}

// Phrase implements Phraser.
func (f *Fallback) Phrase(ctx context.Context, question string, p answer.Payload) (string, error) {
	text, err := f.Primary.Phrase(ctx, question, p)
	if err == nil && text != "" {
		return text, nil
	}
	if f.Log != nil {
		f.Log.Warn().Err(err).Msg("phrasing backend failed, using template")
	}
	return f.Secondary.Phrase(ctx, question, p)
}

// New builds the phraser selected by cfg.Provider. Language-model phrasers
// fall back to the template phraser on error.
func New(cfg config.PhrasingConfig, log *observability.Logger) (Phraser, error) {
	template := NewTemplatePhraser()
	var gen Generator
	switch cfg.Provider {
	case "", ProviderNone:
		return template, nil
	case ProviderOllama:
		gen = NewOllamaClient(cfg.Ollama.Host, cfg.Model, cfg.Timeout)
	case ProviderOpenAI:
		if cfg.OpenAI.APIKey == "" {
			return nil, fmt.Errorf("openai provider selected but OPENAI_API_KEY not set")
		}
		gen = NewOpenAIClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown phrasing provider: %s", cfg.Provider)
	}
	return &Fallback{Primary: NewLLMPhraser(gen), Secondary: template, Log: log}, nil
}
