// Package slug derives URL-safe, unique tenant identifiers from business names.
package slug

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	dErrors "baiki/pkg/domain-errors"
)

// MaxLength is the DNS label limit; a slug doubles as a subdomain label.
const MaxLength = 63

var (
	nonAlnumRun = regexp.MustCompile(`[^a-z0-9]+`)
	validSlug   = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// Checker reports whether a slug is already taken.
type Checker interface {
	SlugExists(ctx context.Context, slug string) (bool, error)
}

// Generator produces unique slugs against a Checker.
type Generator struct {
	checker Checker
}

// NewGenerator creates a Generator.
func NewGenerator(checker Checker) *Generator {
	return &Generator{checker: checker}
}

// Generate returns the first unused candidate among base, base-1, base-2, ...
// The result is not reserved: two concurrent callers may receive the same slug,
// and the tenant store's unique constraint decides the winner.
func (g *Generator) Generate(ctx context.Context, name string) (string, error) {
	base := Normalize(name)
	if base == "" {
		return "", dErrors.New(dErrors.CodeValidation, "business name must contain at least one letter or digit")
	}

	candidate := base
	for n := 1; ; n++ {
		exists, err := g.checker.SlugExists(ctx, candidate)
		if err != nil {
			return "", dErrors.Wrap(err, dErrors.CodeDatabase, "failed to check slug availability")
		}
		if !exists {
			return candidate, nil
		}
		candidate = withSuffix(base, n)
		if err := ctx.Err(); err != nil {
			return "", dErrors.Wrap(err, dErrors.CodeDatabase, "failed to check slug availability")
		}
	}
}

// Normalize maps a display name to its base slug: accents folded, lowercased,
// every run of other characters collapsed to a single hyphen.
func Normalize(name string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), name)
	if err != nil {
		folded = name
	}
	s := nonAlnumRun.ReplaceAllString(strings.ToLower(folded), "-")
	s = strings.Trim(s, "-")
	if len(s) > MaxLength {
		s = strings.TrimRight(s[:MaxLength], "-")
	}
	return s
}

// Valid reports whether s has slug shape and fits in a DNS label.
func Valid(s string) bool {
	return len(s) <= MaxLength && validSlug.MatchString(s)
}

// withSuffix appends -n, trimming base so the result stays within MaxLength.
func withSuffix(base string, n int) string {
	suffix := "-" + strconv.Itoa(n)
	if len(base)+len(suffix) > MaxLength {
		base = strings.TrimRight(base[:MaxLength-len(suffix)], "-")
	}
	return base + suffix
}
