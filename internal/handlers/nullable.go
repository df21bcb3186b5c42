package handlers

import (
	"bytes"
	"encoding/json"

	apperrors "urwallet/internal/errors"
)

// Nullable records whether a JSON key was present and whether it was null,
// which a plain pointer cannot tell apart.
type Nullable[T any] struct {
	Set   bool
	Value *T
}

// UnmarshalJSON implements json.Unmarshaler. It is only called for keys
// present in the document.
func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

// required returns the value of a field that may be omitted but not nulled.
func required[T any](field string, n Nullable[T]) (*T, error) {
	if !n.Set {
		return nil, nil
	}
	if n.Value == nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, field+" cannot be null")
	}
	return n.Value, nil
}

// clearable returns nil when the field is absent, and otherwise a pointer to
// the new value, which is itself nil when the field should be cleared.
func clearable[T any](n Nullable[T]) **T {
	if !n.Set {
		return nil
	}
	v := n.Value
	return &v
}
