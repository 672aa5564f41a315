// Package slug derives the public lookup identifiers used by the catalog:
// `YYYY-MM-DD-normalized-name`, plus an incrementing numeric suffix when the
// base form is already taken in the target table.
package slug

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// ErrInvalidInput covers an unusable post date or a name that is empty
	// after normalization (e.g. all punctuation).
	ErrInvalidInput = errors.New("invalid slug input")
	// ErrExhausted means the suffix search hit its cap without finding a
	// free slug.
	ErrExhausted = errors.New("slug generation exhausted")
)

// maxSuffix bounds the uniqueness search.
const maxSuffix = 9999

var pattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}-[a-z0-9-]+(-\d+)?$`)

// Valid reports whether s matches the canonical slug format. Used to vet
// slugs supplied explicitly on update.
func Valid(s string) bool {
	return pattern.MatchString(s)
}

// Normalize lowercases the name, strips diacritics and collapses runs of
// non-alphanumeric characters into single hyphens, trimming hyphens at both
// ends. Normalizing an already-normalized string returns it unchanged.
func Normalize(name string) string {
	stripped, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), name)
	if err != nil {
		stripped = name
	}
	stripped = strings.ToLower(stripped)

	var b strings.Builder
	b.Grow(len(stripped))
	hyphen := false
	for _, r := range stripped {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			hyphen = false
		case b.Len() > 0 && !hyphen:
			b.WriteByte('-')
			hyphen = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// Base builds the desired slug from the post date and name.
func Base(postDate time.Time, name string) (string, error) {
	if postDate.IsZero() {
		return "", fmt.Errorf("%w: post date is not a valid date", ErrInvalidInput)
	}
	base := Normalize(name)
	if base == "" {
		return "", fmt.Errorf("%w: name %q normalizes to nothing", ErrInvalidInput, name)
	}
	return postDate.UTC().Format("2006-01-02") + "-" + base, nil
}

// Unique walks base, base-1, base-2, ... until taken reports a free slug,
// giving up with ErrExhausted past the suffix cap. The result is only
// race-free together with the unique index on the slug column; callers retry
// on a duplicate-key insert.
func Unique(base string, taken func(string) (bool, error)) (string, error) {
	candidate := base
	for i := 0; i <= maxSuffix; i++ {
		if i > 0 {
			candidate = fmt.Sprintf("%s-%d", base, i)
		}
		inUse, err := taken(candidate)
		if err != nil {
			return "", err
		}
		if !inUse {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: no free suffix for %q", ErrExhausted, base)
}
