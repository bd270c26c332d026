package validation

import "testing"

func TestIsStrongPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		valid    bool
	}{
		{
			name:     "valid password",
			password: "Abcdefg1",
			valid:    true,
		},
		{
			name:     "valid with symbols",
			password: "Sup3rSecret!",
			valid:    true,
		},
		{
			name:     "too short",
			password: "Abcd1ef",
			valid:    false,
		},
		{
			name:     "no uppercase",
			password: "abcdefg1",
			valid:    false,
		},
		{
			name:     "no lowercase",
			password: "ABCDEFG1",
			valid:    false,
		},
		{
			name:     "no digit",
			password: "abcdefgh",
			valid:    false,
		},
		{
			name:     "empty string",
			password: "",
			valid:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsStrongPassword(tt.password)
			if got != tt.valid {
				t.Fatalf("IsStrongPassword(%q) = %v, want %v", tt.password, got, tt.valid)
			}
		})
	}
}
