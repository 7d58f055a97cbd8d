// Package shortcode generates random short codes and validates user-chosen ones.
package shortcode

import (
	"fmt"
	"regexp"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	// Alphabet is the set of symbols generated codes are drawn from.
	Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	// Length is the length of every generated code.
	Length = 6

	// MinCustomLength and MaxCustomLength bound user-chosen codes.
	MinCustomLength = 3
	MaxCustomLength = 20
)

var customPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// reserved codes collide with fixed top-level routes and could never redirect.
var reserved = map[string]struct{}{
	"api":     {},
	"metrics": {},
	"ping":    {},
}

// Reserved reports whether code is taken by a fixed route. The check ignores case.
func Reserved(code string) bool {
	_, ok := reserved[strings.ToLower(code)]
	return ok
}

// Generator produces candidate short codes. Uniqueness is not its concern.
type Generator struct {
	alphabet string
	length   int
}

// New returns a Generator producing Length-character codes from Alphabet.
func New() *Generator {
	return &Generator{
		alphabet: Alphabet,
		length:   Length,
	}
}

// Generate returns a new random code.
func (g *Generator) Generate() (string, error) {
	const op = "shortcode.Generator.Generate"

	code, err := gonanoid.Generate(g.alphabet, g.length)
	if err != nil {
		return "", fmt.Errorf("%s: failed to generate short code: %w", op, err)
	}

	return code, nil
}

// ValidCustom reports whether code is acceptable as a user-chosen short code.
func ValidCustom(code string) bool {
	return len(code) >= MinCustomLength &&
		len(code) <= MaxCustomLength &&
		customPattern.MatchString(code) &&
		!Reserved(code)
}

// IsGenerated reports whether code has the shape of a generated code.
func IsGenerated(code string) bool {
	if len(code) != Length {
		return false
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		if !('a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9') {
			return false
		}
	}
	return true
}
