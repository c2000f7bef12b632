package sanitizer

import (
	"errors"
	"testing"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "valid E.164 format",
			input: "+84912345678",
			want:  "+84912345678",
		},
		{
			name:  "vietnamese national format",
			input: "0912 345 678",
			want:  "+84912345678",
		},
		{
			name:  "with dashes",
			input: "+84-91-234-5678",
			want:  "+84912345678",
		},
		{
			name:  "us number with parentheses",
			input: "+1 (650) 253-0000",
			want:  "+16502530000",
		},
		{
			name:  "leading and trailing spaces",
			input: "  +84912345678  ",
			want:  "+84912345678",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "only whitespace",
			input: "   ",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizePhone(tt.input)
			if err != nil {
				t.Fatalf("NormalizePhone(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("NormalizePhone(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizePhone_Invalid(t *testing.T) {
	for _, input := range []string{"invalid-phone", "12", "()---"} {
		t.Run(input, func(t *testing.T) {
			_, err := NormalizePhone(input)
			if !errors.Is(err, ErrInvalidPhone) {
				t.Errorf("NormalizePhone(%q) error = %v, want ErrInvalidPhone", input, err)
			}
		})
	}
}

func TestNormalizePhone_Idempotent(t *testing.T) {
	first, err := NormalizePhone("0912 345 678")
	if err != nil {
		t.Fatal(err)
	}
	second, err := NormalizePhone(first)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("not idempotent: %q then %q", first, second)
	}
}
