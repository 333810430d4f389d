package models

import (
	"errors"
	"strings"
	"testing"

	"github.com/ghuser/inventory/services/item/domain"
)

func TestNewItemName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"single character", "a", "a", false},
		{"normal name", "Sample Item", "Sample Item", false},
		{"trims surrounding whitespace", "  Widget \t", "Widget", false},
		{"100 characters", strings.Repeat("x", 100), strings.Repeat("x", 100), false},
		{"100 multibyte characters", strings.Repeat("é", 100), strings.Repeat("é", 100), false},
		{"101 characters", strings.Repeat("x", 101), "", true},
		{"empty", "", "", true},
		{"only whitespace", "   ", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := NewItemName(tt.input)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrInvalidItemName) {
					t.Fatalf("expected ErrInvalidItemName, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if n.String() != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, n.String())
			}
		})
	}
}

func TestItemName_String(t *testing.T) {
	n := ItemName("hello")
	if n.String() != "hello" {
		t.Fatalf("expected %q, got %q", "hello", n.String())
	}
}
