// Package uuid generates and validates the identifiers used for ledger rows.
package uuid

import (
	googleuuid "github.com/google/uuid"
)

// New generates a new UUIDv7. UUIDv7 is time-ordered, so rows inserted later
// sort after earlier ones when compared by primary key.
func New() string {
	id, err := googleuuid.NewV7()
	if err != nil {
		// Entropy source failure; a random v4 is still a valid key.
		return googleuuid.NewString()
	}
	return id.String()
}

// Parse validates a UUID string and returns it in canonical lower-case form.
func Parse(s string) (string, error) {
	parsed, err := googleuuid.Parse(s)
	if err != nil {
		return "", err
	}
	return parsed.String(), nil
}

// IsValid checks if a string is a valid UUID
func IsValid(s string) bool {
	_, err := googleuuid.Parse(s)
	return err == nil
}
