package auth

import "testing"

func TestValidMobile(t *testing.T) {
	tests := []struct {
		name   string
		mobile string
		want   bool
	}{
		{"valid 138 prefix", "13800000000", true},
		{"valid 159 prefix", "15912345678", true},
		{"valid 199 prefix", "19912345678", true},
		{"too short", "1380000000", false},
		{"too long", "138000000001", false},
		{"bad second digit", "12800000000", false},
		{"landline", "02112345678", false},
		{"letters", "13800o00000", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidMobile(tt.mobile); got != tt.want {
				t.Errorf("ValidMobile(%q) = %v, want %v", tt.mobile, got, tt.want)
			}
		})
	}
}

func TestValidPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     bool
	}{
		{"min length", "abcd1234", true},
		{"max length", "a1234567890123456789", true},
		{"digits only", "12345678", true},
		{"letters only", "abcdefgh", true},
		{"too short", "abc1234", false},
		{"too long", "a12345678901234567890", false},
		{"special characters", "abcd123!", false},
		{"whitespace", "abcd 1234", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidPassword(tt.password); got != tt.want {
				t.Errorf("ValidPassword(%q) = %v, want %v", tt.password, got, tt.want)
			}
		})
	}
}
