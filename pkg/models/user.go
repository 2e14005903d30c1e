package models

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// TimestampLayout is how store timestamps are rendered in JSON responses.
const TimestampLayout = "2006-01-02 15:04:05.999999"

// User represents a row of the users table.
type User struct {
	ID        int     `json:"id" db:"id"`
	Name      string  `json:"name" db:"name"`
	Email     string  `json:"email" db:"email"`
	CreatedAt string  `json:"createdAt" db:"created_at"`
	UpdatedAt *string `json:"updatedAt" db:"updated_at"`
}

// NewUser builds an unsaved user from raw input, trimming both fields.
func NewUser(name, email string) User {
	return User{Name: strings.TrimSpace(name), Email: strings.TrimSpace(email)}
}

// IsValid reports whether name and email are non-blank and the email passes
// ValidEmail.
func (u User) IsValid() bool {
	return strings.TrimSpace(u.Name) != "" &&
		strings.TrimSpace(u.Email) != "" &&
		ValidEmail(u.Email)
}

// ValidEmail is a deliberately minimal check: an '@', a '.', and more than
// five characters. Characters are runes, not bytes.
func ValidEmail(email string) bool {
	return strings.Contains(email, "@") && strings.Contains(email, ".") && utf8.RuneCountInString(email) > 5
}

// Equal compares users by ID only. Two unsaved users (ID 0) are therefore
// equal regardless of their name or email.
func (u User) Equal(other User) bool {
	return u.ID == other.ID
}

func (u User) String() string {
	return fmt.Sprintf("User{id=%d, name=%q, email=%q, createdAt=%q}", u.ID, u.Name, u.Email, u.CreatedAt)
}
