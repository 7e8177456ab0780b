package provider

import (
	"context"
	"errors"
	"testing"
)

func TestMockProvider(t *testing.T) {
	p := NewMockProvider()

	result, err := p.Translate(context.Background(), TranslateRequest{
		Texts:      []string{"Hello", "Unknown text"},
		TargetLang: "th",
	})
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}

	if result[0] != "สวัสดี" {
		t.Errorf("Expected 'สวัสดี', got %q", result[0])
	}
	if result[1] != "[Unknown text]" {
		t.Errorf("Expected '[Unknown text]', got %q", result[1])
	}
	if p.Calls() != 1 {
		t.Errorf("Expected CallCount 1, got %d", p.Calls())
	}
	if sent := p.SentTexts(); len(sent) != 2 || sent[1] != "Unknown text" {
		t.Errorf("Unexpected sent texts %v", sent)
	}

	p.Reset()
	if p.Calls() != 0 || len(p.SentTexts()) != 0 {
		t.Error("Reset should clear calls and requests")
	}
}

func TestMockProvider_Failures(t *testing.T) {
	quota := errors.New("quota exceeded")

	p := NewMockProvider()
	p.FailOn["Welcome"] = quota

	if _, err := p.Translate(context.Background(), TranslateRequest{Texts: []string{"Welcome"}}); !errors.Is(err, quota) {
		t.Errorf("Expected per-text failure, got %v", err)
	}

	p.Err = quota
	if _, err := p.Translate(context.Background(), TranslateRequest{Texts: []string{"Hello"}}); !errors.Is(err, quota) {
		t.Errorf("Expected global failure, got %v", err)
	}
}
