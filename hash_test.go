package mailtl

import "testing"

func TestHashText(t *testing.T) {
	const helloWorld = "a591a6d40bf420404a011733cfb7b190d62c65bf0bcda32b57b277d9ad9f146e"

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple text", "Hello World", helloWorld},
		{"leading whitespace", "  Hello World", helloWorld},
		{"trailing whitespace", "Hello World \n", helloWorld},
		{"empty string", "", "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := HashText(tt.input); result != tt.expected {
				t.Errorf("HashText(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestHashText_Distinct(t *testing.T) {
	if HashText("Hello") == HashText("hello") {
		t.Error("hashes should be case-sensitive")
	}
	if HashText("สวัสดี") == HashText("Hello") {
		t.Error("different texts should hash differently")
	}
}

func TestCacheKey(t *testing.T) {
	hash := "a591a6d40bf420404a011733cfb7b190d62c65bf0bcda32b57b277d9ad9f146e"

	result := CacheKey(hash, "th")
	expected := hash + ":th"

	if result != expected {
		t.Errorf("CacheKey() = %q, want %q", result, expected)
	}
	if CacheKey(hash, "th") == CacheKey(hash, "lo") {
		t.Error("keys should differ per target language")
	}
}
