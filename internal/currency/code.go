// Package currency fetches exchange rates and converts amounts between currencies.
package currency

import (
	"errors"
	"regexp"
	"strings"
)

var codeRegex = regexp.MustCompile(`^[A-Z]{3}$`)

// ErrInvalidCode is returned for anything that is not a 3-letter code.
var ErrInvalidCode = errors.New("currency: code must be 3 letters")

// NormalizeCode upper-cases and trims code, then checks it is 3 letters.
func NormalizeCode(code string) (string, error) {
	c := strings.ToUpper(strings.TrimSpace(code))
	if !codeRegex.MatchString(c) {
		return "", ErrInvalidCode
	}
	return c, nil
}
