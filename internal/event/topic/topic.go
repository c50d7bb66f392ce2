// Package topic defines hierarchical event topics and wildcard matching.
package topic

import "strings"

// Topic is a dot separated event name such as "resource.added".
type Topic string

const (
	// Separator splits topic segments.
	Separator = "."

	// WildcardSingle matches exactly one segment.
	WildcardSingle = "*"

	// WildcardMulti matches zero or more segments.
	WildcardMulti = "**"
)

// String returns the topic as a string.
func (t Topic) String() string {
	return string(t)
}

// Segments returns the topic split on the separator.
func (t Topic) Segments() []string {
	if t == "" {
		return nil
	}
	return strings.Split(string(t), Separator)
}

// Child appends a segment.
func (t Topic) Child(segment string) Topic {
	if t == "" {
		return Topic(segment)
	}
	return t + Separator + Topic(segment)
}

// IsWildcard returns true if the topic contains a wildcard segment.
func (t Topic) IsWildcard() bool {
	for _, seg := range t.Segments() {
		if seg == WildcardSingle || seg == WildcardMulti {
			return true
		}
	}
	return false
}

// IsValid reports whether the topic is non-empty and has no empty segments.
func (t Topic) IsValid() bool {
	if t == "" {
		return false
	}
	for _, seg := range t.Segments() {
		if seg == "" {
			return false
		}
	}
	return true
}

// Matches reports whether t matches pattern. "*" matches one segment,
// "**" matches any number of segments including none.
func (t Topic) Matches(pattern Topic) bool {
	if t == pattern {
		return true
	}
	return match(t.Segments(), pattern.Segments())
}

func match(segs, pat []string) bool {
	for len(pat) > 0 {
		switch pat[0] {
		case WildcardMulti:
			rest := pat[1:]
			for i := 0; i <= len(segs); i++ {
				if match(segs[i:], rest) {
					return true
				}
			}
			return false
		case WildcardSingle:
			if len(segs) == 0 {
				return false
			}
		default:
			if len(segs) == 0 || segs[0] != pat[0] {
				return false
			}
		}
		segs, pat = segs[1:], pat[1:]
	}
	return len(segs) == 0
}
