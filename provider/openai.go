package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ZaguanLabs/mailtl"
	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements Provider using OpenAI's chat completions API.
type OpenAIProvider struct {
	client      *openai.Client
	model       string
	temperature float32
}

// OpenAIConfig holds configuration for the OpenAI provider.
type OpenAIConfig struct {
	APIKey      string  // OpenAI API key
	Model       string  // Model to use (default: "gpt-4o-mini")
	Temperature float32 // Temperature for generation (default: 0.2)
	BaseURL     string  // Custom base URL for OpenAI-compatible endpoints (optional)
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.2
	}

	return &OpenAIProvider{
		client:      openai.NewClientWithConfig(config),
		model:       model,
		temperature: temperature,
	}
}

// Translate translates a batch of texts using OpenAI.
func (p *OpenAIProvider) Translate(ctx context.Context, req TranslateRequest) ([]string, error) {
	if len(req.Texts) == 0 {
		return []string{}, nil
	}

	data, err := json.Marshal(req.Texts)
	if err != nil {
		return nil, &mailtl.ProviderError{Message: "encoding request", Cause: err}
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: p.buildSystemPrompt(req)},
			{Role: openai.ChatMessageRoleUser, Content: string(data)},
		},
		Temperature: p.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, &mailtl.ProviderError{
			Message:   "OpenAI API call failed",
			Cause:     err,
			Retryable: isRetryableError(err),
		}
	}

	if len(resp.Choices) == 0 {
		return nil, &mailtl.ProviderError{
			Message:   "no response from OpenAI",
			Retryable: true,
		}
	}

	translations, err := p.parseResponse(resp.Choices[0].Message.Content, len(req.Texts))
	if err != nil {
		return nil, err
	}

	for i := range translations {
		translations[i] = sanitizeTranslation(translations[i])
	}
	return translations, nil
}

func (p *OpenAIProvider) buildSystemPrompt(req TranslateRequest) string {
	targetName := mailtl.GetLanguageName(req.TargetLang)

	sourceText := "The source language may be English or mixed; detect it."
	if req.SourceLang != "" && req.SourceLang != mailtl.DefaultSourceLang {
		sourceText = fmt.Sprintf("The source language is %s.", mailtl.GetLanguageName(req.SourceLang))
	}

	contextText := "The texts are fragments of transactional HTML email templates."
	if req.Context != "" {
		contextText = fmt.Sprintf("The texts are fragments of HTML email templates for: %s.", req.Context)
	}

	var b strings.Builder
	fmt.Fprintf(&b, `# Role
You translate short fragments of email templates into %s.

# Context
%s
%s
Each fragment is a piece of a sentence; placeholders and links around it were removed and will be put back after translation.

# Rules
- Translate each string independently and keep the order.
- Keep the meaning and politeness level of a customer-facing email.
- Return plain text only: no HTML, no Markdown, no quotes around the result.
- Do not add punctuation that is not in the source.`, targetName, contextText, sourceText)

	if len(req.Glossary) > 0 {
		b.WriteString("\n\n# Glossary\nPrefer these translations:")
		for source, target := range req.Glossary {
			fmt.Fprintf(&b, "\n- %q → %s", source, target)
		}
	}

	if len(req.ExcludedTerms) > 0 {
		fmt.Fprintf(&b, "\n\n# Exclusions\nKeep these terms exactly as written:\n- %s", strings.Join(req.ExcludedTerms, "\n- "))
	}

	b.WriteString(`

# Format
Return a JSON object with a single key "translations" holding an array of strings, one per input string, in the same order.
Example: {"translations": ["...", "..."]}`)

	return b.String()
}

func (p *OpenAIProvider) parseResponse(content string, expectedCount int) ([]string, error) {
	var objResult map[string]any
	if err := json.Unmarshal([]byte(content), &objResult); err == nil {
		if translations, ok := objResult["translations"].([]any); ok {
			return toStringSlice(translations, expectedCount)
		}

		// Some models pick their own key
		for _, v := range objResult {
			if arr, ok := v.([]any); ok {
				return toStringSlice(arr, expectedCount)
			}
		}
	}

	var arrResult []any
	if err := json.Unmarshal([]byte(content), &arrResult); err == nil {
		return toStringSlice(arrResult, expectedCount)
	}

	return nil, &mailtl.ProviderError{
		Message: "invalid response format from OpenAI",
	}
}

func toStringSlice(arr []any, expectedCount int) ([]string, error) {
	if len(arr) != expectedCount {
		return nil, &mailtl.CountMismatchError{
			Expected: expectedCount,
			Got:      len(arr),
		}
	}

	result := make([]string, len(arr))
	for i, v := range arr {
		if s, ok := v.(string); ok {
			result[i] = s
		} else {
			result[i] = fmt.Sprintf("%v", v)
		}
	}
	return result, nil
}

func isRetryableError(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500
	}

	errStr := strings.ToLower(err.Error())
	for _, pattern := range []string{"rate limit", "timeout", "connection refused", "temporary"} {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

// Verify OpenAIProvider implements Provider
var _ Provider = (*OpenAIProvider)(nil)
