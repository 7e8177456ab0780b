package provider

import (
	"context"
	"fmt"
	"sync"
)

// MockProvider is a mock translation provider for testing.
type MockProvider struct {
	mu           sync.Mutex
	Translations map[string]string // Map of source text to translation
	Err          error             // When set, every call fails with it
	FailOn       map[string]error  // Per-text failures
	CallCount    int               // Number of times Translate was called
	Requests     []TranslateRequest
}

// NewMockProvider creates a new mock provider with default Thai translations.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Translations: map[string]string{
			"Hello":       "สวัสดี",
			"Welcome":     "ยินดีต้อนรับ",
			"visit":       "เยี่ยมชม",
			"now":         "ตอนนี้",
			"Thank you":   "ขอบคุณ",
			"Dear":        "เรียน",
			"Your order":  "คำสั่งซื้อของคุณ",
			"Hello World": "สวัสดีชาวโลก",
		},
		FailOn: map[string]error{},
	}
}

// Translate returns mock translations. Unknown texts come back in brackets.
func (m *MockProvider) Translate(ctx context.Context, req TranslateRequest) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CallCount++
	m.Requests = append(m.Requests, req)

	if m.Err != nil {
		return nil, m.Err
	}

	results := make([]string, len(req.Texts))
	for i, text := range req.Texts {
		if err, ok := m.FailOn[text]; ok {
			return nil, err
		}
		if translation, ok := m.Translations[text]; ok {
			results[i] = translation
		} else {
			results[i] = fmt.Sprintf("[%s]", text)
		}
	}

	return results, nil
}

// Calls returns the number of Translate calls so far.
func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CallCount
}

// SentTexts returns every text received, in call order.
func (m *MockProvider) SentTexts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var texts []string
	for _, req := range m.Requests {
		texts = append(texts, req.Texts...)
	}
	return texts
}

// Reset resets the call count and recorded requests.
func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallCount = 0
	m.Requests = nil
}

// Verify MockProvider implements Provider
var _ Provider = (*MockProvider)(nil)
