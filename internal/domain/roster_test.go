package domain_test

import (
	"testing"

	"github.com/shreya0626/secret-santa/internal/domain"
)

func TestNewRoster(t *testing.T) {
	tests := []struct {
		name    string
		names   []string
		wantErr bool
	}{
		{"default roster", domain.DefaultRoster, false},
		{"empty", nil, true},
		{"blank name", []string{"a", "  "}, true},
		{"duplicate", []string{"a", "b", "a"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := domain.NewRoster(tc.names)
			if (err != nil) != tc.wantErr {
				t.Errorf("NewRoster(%v) error = %v; wantErr %v", tc.names, err, tc.wantErr)
			}
		})
	}
}

func TestRosterKeepsOrderAndTrims(t *testing.T) {
	r, err := domain.NewRoster([]string{" Shreya ", "Govind"})
	if err != nil {
		t.Fatalf("NewRoster: %v", err)
	}
	names := r.Names()
	if len(names) != 2 || names[0] != "Shreya" || names[1] != "Govind" {
		t.Fatalf("Names() = %v", names)
	}
	if !r.Contains("Shreya") || r.Contains("Nobody") {
		t.Fatal("Contains mismatch")
	}
	names[0] = "mutated"
	if r.Names()[0] != "Shreya" {
		t.Fatal("Names() must return a copy")
	}
}
