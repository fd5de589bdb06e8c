package models

import "strings"

// Validate checks if the user meets all validation requirements
func (u *User) Validate() error {
	return Validate(u)
}

// NormalizeEmail lower-cases and trims an address so lookups and the unique
// index agree on one spelling.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
