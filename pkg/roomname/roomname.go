// Package roomname turns arbitrary identifiers into video room slugs that
// satisfy a vendor's naming rules.
package roomname

import (
	"fmt"
	"strings"
)

// DefaultFiller is prepended to slugs that come out shorter than the minimum.
const DefaultFiller = "ma"

// Rules describes the slug constraints of a video vendor.
// Filler must be lowercase alphanumeric.
type Rules struct {
	MinLength   int
	MaxLength   int
	AllowHyphen bool
	Filler      string
}

var (
	// Common is the intersection of every supported vendor's constraints.
	// Room identifiers persisted on appointments use it so that any
	// provider accepts them unchanged.
	Common = Rules{MinLength: 3, MaxLength: 30, AllowHyphen: false, Filler: DefaultFiller}

	Whereby      = Rules{MinLength: 3, MaxLength: 30, AllowHyphen: false, Filler: DefaultFiller}
	Daily        = Rules{MinLength: 3, MaxLength: 128, AllowHyphen: true, Filler: DefaultFiller}
	EightByEight = Rules{MinLength: 3, MaxLength: 200, AllowHyphen: false, Filler: DefaultFiller}
	Jitsi        = Rules{MinLength: 3, MaxLength: 200, AllowHyphen: true, Filler: DefaultFiller}
)

// Normalize converts raw into a slug valid under r. The result is lowercase,
// restricted to [a-z0-9] (plus single hyphens when allowed), never starts or
// ends with a hyphen, and its length lies within [MinLength, MaxLength].
// Too-short input is prefixed with the filler; too-long input is truncated.
//
// Normalize is deterministic and idempotent: Normalize(Normalize(s)) equals
// Normalize(s).
func Normalize(raw string, r Rules) string {
	filler := r.Filler
	if filler == "" {
		filler = DefaultFiller
	}

	slug := clean(raw, r.AllowHyphen)
	if r.MaxLength > 0 && len(slug) > r.MaxLength {
		slug = strings.TrimRight(slug[:r.MaxLength], "-")
	}
	for len(slug) < r.MinLength {
		slug = filler + slug
	}
	if r.MaxLength > 0 && len(slug) > r.MaxLength {
		slug = strings.TrimRight(slug[:r.MaxLength], "-")
	}
	return slug
}

// Validate reports why slug violates r, or nil when it is compliant.
func Validate(slug string, r Rules) error {
	if len(slug) < r.MinLength {
		return fmt.Errorf("room name %q shorter than %d characters", slug, r.MinLength)
	}
	if r.MaxLength > 0 && len(slug) > r.MaxLength {
		return fmt.Errorf("room name %q longer than %d characters", slug, r.MaxLength)
	}
	for i := 0; i < len(slug); i++ {
		c := slug[i]
		switch {
		case isAlnum(c):
		case c == '-' && r.AllowHyphen:
			if i == 0 || i == len(slug)-1 {
				return fmt.Errorf("room name %q must start and end with a letter or digit", slug)
			}
			if slug[i-1] == '-' {
				return fmt.Errorf("room name %q contains consecutive hyphens", slug)
			}
		default:
			return fmt.Errorf("room name %q contains disallowed character %q", slug, c)
		}
	}
	return nil
}

func clean(raw string, allowHyphen bool) string {
	lower := strings.ToLower(raw)

	var b strings.Builder
	b.Grow(len(lower))
	for i := 0; i < len(lower); i++ {
		c := lower[i]
		switch {
		case isAlnum(c):
			b.WriteByte(c)
		case c == '-' && allowHyphen:
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "-") {
				b.WriteByte(c)
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

func isAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}
