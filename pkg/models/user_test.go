package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"john.doe@example.com", true},
		{"a@b.co", true},
		{"a@b.c", false},
		{"noatsign.com", false},
		{"has@but-no-dot", false},
		{"", false},
		{"é@b.c", false},
		{"a@b.é", false},
		{"é@b.co", true},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			if got := ValidEmail(tt.email); got != tt.want {
				t.Errorf("ValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}

func TestUserIsValid(t *testing.T) {
	tests := []struct {
		name string
		user User
		want bool
	}{
		{"valid", NewUser("Jane", "jane@example.com"), true},
		{"blank name", NewUser("   ", "jane@example.com"), false},
		{"blank email", NewUser("Jane", "  "), false},
		{"bad email", NewUser("Jane", "jane-at-example"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.user.IsValid(); got != tt.want {
				t.Errorf("IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewUserTrims(t *testing.T) {
	u := NewUser("  Jane Doe ", "\tjane@example.com\n")
	if u.Name != "Jane Doe" || u.Email != "jane@example.com" {
		t.Errorf("fields not trimmed: %+v", u)
	}
	if u.ID != 0 || u.CreatedAt != "" || u.UpdatedAt != nil {
		t.Errorf("store-assigned fields should be zero: %+v", u)
	}
}

func TestUserEqualComparesIDOnly(t *testing.T) {
	a := User{ID: 7, Name: "A", Email: "a@example.com"}
	b := User{ID: 7, Name: "B", Email: "b@example.com"}
	if !a.Equal(b) {
		t.Error("users with the same id should be equal")
	}

	c := User{ID: 8, Name: "A", Email: "a@example.com"}
	if a.Equal(c) {
		t.Error("users with different ids should not be equal")
	}
}

func TestUserEqualZeroIDQuirk(t *testing.T) {
	// Unsaved users all carry ID 0 and compare equal.
	if !NewUser("One", "one@example.com").Equal(NewUser("Two", "two@example.com")) {
		t.Error("expected unsaved users to compare equal")
	}
}

func TestUserJSONShape(t *testing.T) {
	data, err := json.Marshal(User{ID: 1, Name: "Jane", Email: "jane@example.com", CreatedAt: "2026-01-02 03:04:05"})
	if err != nil {
		t.Fatalf("failed to marshal User: %v", err)
	}

	got := string(data)
	for _, want := range []string{`"id":1`, `"createdAt":"2026-01-02 03:04:05"`, `"updatedAt":null`} {
		if !strings.Contains(got, want) {
			t.Errorf("%s missing %s", got, want)
		}
	}
}
