package validation

import (
	"reflect"
	"strings"
	"testing"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		expected bool
	}{
		{"Valid email", "advocate@chambers.in", true},
		{"Valid email with subdomain", "clerk@mail.chambers.in", true},
		{"Empty email", "", false},
		{"Email without @", "advocatechambers.in", false},
		{"Email without domain", "advocate@", false},
		{"Display name form", "Advocate <advocate@chambers.in>", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateEmail(tt.email); got != tt.expected {
				t.Errorf("ValidateEmail(%q) = %v, want %v", tt.email, got, tt.expected)
			}
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Advocate@CHAMBERS.in "); got != "advocate@chambers.in" {
		t.Errorf("NormalizeEmail = %q", got)
	}
}

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		username string
		expected bool
	}{
		{"r_mehta", true},
		{"abc", true},
		{"ab", false},
		{strings.Repeat("a", 33), false},
		{"r mehta", false},
		{"r-mehta", false},
		{"  r_mehta  ", true},
	}

	for _, tt := range tests {
		if got := ValidateUsername(tt.username); got != tt.expected {
			t.Errorf("ValidateUsername(%q) = %v, want %v", tt.username, got, tt.expected)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	if ValidatePassword("short") {
		t.Error("ValidatePassword accepted a short password")
	}
	if !ValidatePassword("long enough pass") {
		t.Error("ValidatePassword rejected a valid password")
	}
	// counted in runes, not bytes
	if ValidatePassword("पासवर्ड") {
		t.Error("ValidatePassword counted bytes instead of runes")
	}
}

func TestValidDocID(t *testing.T) {
	tests := []struct {
		id       string
		expected bool
	}{
		{"55", true},
		{"1712542", true},
		{"", false},
		{"55a", false},
		{"../55", false},
		{" 55", false},
	}

	for _, tt := range tests {
		if got := ValidDocID(tt.id); got != tt.expected {
			t.Errorf("ValidDocID(%q) = %v, want %v", tt.id, got, tt.expected)
		}
	}
}

func TestValidCaseID(t *testing.T) {
	if !ValidCaseID("case-2024_17") {
		t.Error("ValidCaseID rejected a valid id")
	}
	if ValidCaseID("case/17") || ValidCaseID("") {
		t.Error("ValidCaseID accepted an invalid id")
	}
}

func TestTrimAndLimit(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		limit    int
		expected string
	}{
		{"Normal string", "hello world", 20, "hello world"},
		{"String with spaces", "  hello world  ", 20, "hello world"},
		{"String exceeding limit", "hello world this is too long", 10, "hello worl"},
		{"Multibyte runes", "न्यायालय", 3, "न्य"},
		{"No limit", "  abc ", 0, "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrimAndLimit(tt.input, tt.limit); got != tt.expected {
				t.Errorf("TrimAndLimit(%q, %d) = %q, want %q", tt.input, tt.limit, got, tt.expected)
			}
		})
	}
}

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags([]string{" Contract ", "", "contract", "Arbitration", "  "})
	want := []string{"contract", "arbitration"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeTags = %v, want %v", got, want)
	}

	if got := NormalizeTags(nil); got == nil || len(got) != 0 {
		t.Errorf("NormalizeTags(nil) = %#v, want empty non-nil slice", got)
	}

	many := make([]string, 0, 30)
	for i := 0; i < 30; i++ {
		many = append(many, strings.Repeat("t", i+1))
	}
	if got := NormalizeTags(many); len(got) != MaxTags {
		t.Errorf("NormalizeTags kept %d tags, want %d", len(got), MaxTags)
	}
}
