package model

import "testing"

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		wantErr  bool
	}{
		{"", true},
		{"short", true},
		{"1234567", true},
		{"12345678", false},
		{"a-valid-password", false},
	}

	for _, tt := range tests {
		err := ValidatePassword(tt.password)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidatePassword(%q) error = %v, wantErr %v", tt.password, err, tt.wantErr)
		}
	}
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Admin@Example.com", "admin@example.com"},
		{"  someone@example.com\t", "someone@example.com"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeEmail(tt.in); got != tt.want {
			t.Errorf("NormalizeEmail(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidateEmail(t *testing.T) {
	for _, email := range []string{"a@example.com", "first.last@sub.example.org"} {
		if err := ValidateEmail(email); err != nil {
			t.Errorf("ValidateEmail(%q): %v", email, err)
		}
	}
	for _, email := range []string{"", "nope", "@example.com"} {
		if err := ValidateEmail(email); err != ErrInvalidEmail {
			t.Errorf("ValidateEmail(%q) = %v, want ErrInvalidEmail", email, err)
		}
	}
}
