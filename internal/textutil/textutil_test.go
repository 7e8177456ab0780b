package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"short", "Hello", 10, "Hello"},
		{"exact", "Hello", 5, "Hello"},
		{"cut", "Hello World", 8, "Hello..."},
		{"tiny max", "Hello World", 3, "Hello World"},
		// น้ำ is one grapheme cluster of three runes.
		{"thai clusters", "น้ำน้ำน้ำน้ำน้ำ", 4, "น้ำ..."},
		{"thai fits", "น้ำน้ำ", 2, "น้ำน้ำ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truncate(tt.in, tt.max))
		})
	}
}

func TestOneLine(t *testing.T) {
	assert.Equal(t, "Dear customer, thanks", OneLine("  Dear\n\tcustomer,   thanks\n"))
	assert.Equal(t, "", OneLine(" \n "))
}
