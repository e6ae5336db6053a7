package escrow

import (
	"fmt"
	"strings"
)

// IdentityValidator resolves a raw caller-supplied account identifier into
// its canonical form. The host environment owns the actual account format;
// the engine only needs the capability, so tests can swap in a permissive
// implementation.
type IdentityValidator interface {
	Validate(raw string) (string, error)
}

// AccountValidator is the default validator: identifiers are 3-64 bytes of
// lowercase letters, digits and the separators '.', '_' and '-'. Input is
// trimmed and lowercased before the check.
type AccountValidator struct{}

// Validate implements IdentityValidator.
func (AccountValidator) Validate(raw string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if n := len(normalized); n < 3 || n > 64 {
		return "", fmt.Errorf("account %q: length out of range", raw)
	}
	for _, r := range normalized {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '.' || r == '_' || r == '-':
		default:
			return "", fmt.Errorf("account %q: invalid character %q", raw, r)
		}
	}
	return normalized, nil
}
