package domain

import "testing"

func TestParseRole(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		want  Role
		valid bool
	}{
		{"owner", "PET_OWNER", RolePetOwner, true},
		{"professional", "PROFESSIONAL", RoleProfessional, true},
		{"admin", "ADMIN", RoleAdmin, true},
		{"lowercase", "professional", RoleProfessional, true},
		{"padded", "  pet_owner ", RolePetOwner, true},
		{"empty", "", "", false},
		{"unknown", "VET", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseRole(tt.in)
			if ok != tt.valid {
				t.Fatalf("ParseRole(%q) ok = %v, want %v", tt.in, ok, tt.valid)
			}
			if got != tt.want {
				t.Errorf("ParseRole(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRoleLabel(t *testing.T) {
	if got := RoleProfessional.Label(); got != "professional" {
		t.Errorf("Label() = %q, want %q", got, "professional")
	}
	if got := Role("").Label(); got != "guest" {
		t.Errorf("Label() = %q, want %q", got, "guest")
	}
}
