// Package search finds resources in a project's bin by name or by their
// folder path.
package search

import (
	"context"
	"errors"
	"fmt"
	"path"
	"regexp"
	"slices"
	"strings"

	"github.com/dshills/splice/internal/engine/resource"
)

// Common errors.
var (
	ErrInvalidQuery   = errors.New("invalid search query")
	ErrSearchCanceled = errors.New("search canceled")
)

// MatchMode specifies how a query is compared with resource names.
type MatchMode int

const (
	// MatchFuzzy matches query characters in order, not necessarily adjacent.
	MatchFuzzy MatchMode = iota

	// MatchExact matches the entire name.
	MatchExact

	// MatchPrefix matches names starting with the query.
	MatchPrefix

	// MatchContains matches names containing the query.
	MatchContains

	// MatchGlob uses glob pattern matching (*, ?, []).
	MatchGlob

	// MatchRegex uses regular expression matching.
	MatchRegex
)

var modeNames = []string{"fuzzy", "exact", "prefix", "contains", "glob", "regex"}

// String returns the string representation of the match mode.
func (m MatchMode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return "unknown"
	}
	return modeNames[m]
}

// ParseMatchMode is the inverse of MatchMode.String.
func ParseMatchMode(s string) (MatchMode, error) {
	i := slices.Index(modeNames, strings.ToLower(strings.TrimSpace(s)))
	if i < 0 {
		return 0, fmt.Errorf("%w: unknown match mode %q", ErrInvalidQuery, s)
	}
	return MatchMode(i), nil
}

// Options configures a search.
type Options struct {
	// MaxResults limits the number of results (0 = unlimited).
	MaxResults int

	Mode          MatchMode
	CaseSensitive bool

	// Kinds keeps only items whose factory ID is listed.
	Kinds []string

	// OfflineOnly keeps only items that are offline.
	OfflineOnly bool
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		MaxResults: 50,
		Mode:       MatchFuzzy,
	}
}

// Match is one search result. It is a copy and holds no pointer into the
// resource tree.
type Match struct {
	ID     uint64
	Name   string
	Kind   string
	Online bool

	// Path is the slash-separated folder path ending in the item name.
	Path string

	// Score indicates match quality (higher is better, 1.0 is exact).
	Score float64

	// Positions are the rune indices of matched characters in Name, or in
	// Path when only the path matched.
	Positions []int
	InPath    bool
}

type scoreFunc func(text string) (float64, []int)

func compile(query string, opts Options) (scoreFunc, error) {
	q := query
	fold := func(s string) string { return s }
	if !opts.CaseSensitive {
		q = strings.ToLower(q)
		fold = strings.ToLower
	}
	ratio := func(text string) float64 {
		if text == "" {
			return 0
		}
		return float64(len(q)) / float64(len(text))
	}

	switch opts.Mode {
	case MatchFuzzy:
		return func(text string) (float64, []int) {
			return fuzzyScore(query, text, opts.CaseSensitive)
		}, nil
	case MatchExact:
		return func(text string) (float64, []int) {
			if fold(text) == q {
				return 1, nil
			}
			return 0, nil
		}, nil
	case MatchPrefix:
		return func(text string) (float64, []int) {
			if strings.HasPrefix(fold(text), q) {
				return ratio(text), nil
			}
			return 0, nil
		}, nil
	case MatchContains:
		return func(text string) (float64, []int) {
			if strings.Contains(fold(text), q) {
				return ratio(text), nil
			}
			return 0, nil
		}, nil
	case MatchGlob:
		if _, err := path.Match(q, ""); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
		}
		return func(text string) (float64, []int) {
			if ok, _ := path.Match(q, fold(text)); ok {
				return 1, nil
			}
			return 0, nil
		}, nil
	case MatchRegex:
		pattern := query
		if !opts.CaseSensitive {
			pattern = "(?i)" + pattern
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
		}
		return func(text string) (float64, []int) {
			if re.MatchString(text) {
				return 1, nil
			}
			return 0, nil
		}, nil
	default:
		return nil, fmt.Errorf("%w: match mode %d", ErrInvalidQuery, opts.Mode)
	}
}

type entry struct {
	item *resource.Item
	path string
}

func collect(f *resource.Folder, prefix string, out []entry) []entry {
	for _, n := range f.Children() {
		p := n.DisplayName()
		if prefix != "" {
			p = prefix + "/" + p
		}
		switch n := n.(type) {
		case *resource.Folder:
			out = collect(n, p, out)
		case *resource.Item:
			out = append(out, entry{item: n, path: p})
		}
	}
	return out
}

func (o Options) keep(it *resource.Item) bool {
	if o.OfflineOnly && it.IsOnline() {
		return false
	}
	return len(o.Kinds) == 0 || slices.Contains(o.Kinds, it.FactoryID())
}

// Resources returns the items under root that match query, best first.
// An empty query matches every item that passes the filters, in tree
// order. Resources reads the tree and must run on the goroutine that owns
// it.
func Resources(ctx context.Context, root *resource.Folder, query string, opts Options) ([]Match, error) {
	query = strings.TrimSpace(query)
	var score scoreFunc
	if query != "" {
		var err error
		if score, err = compile(query, opts); err != nil {
			return nil, err
		}
	}

	var results []Match
	for i, e := range collect(root, "", nil) {
		if i%256 == 0 && ctx.Err() != nil {
			return nil, ErrSearchCanceled
		}
		if !opts.keep(e.item) {
			continue
		}

		m := Match{
			ID:     e.item.ID(),
			Name:   e.item.DisplayName(),
			Kind:   e.item.FactoryID(),
			Online: e.item.IsOnline(),
			Path:   e.path,
		}
		if score != nil {
			m.Score, m.Positions = score(m.Name)
			if m.Score == 0 {
				// Path matches rank below name matches.
				s, pos := score(m.Path)
				m.Score, m.Positions, m.InPath = s*0.8, pos, s > 0
			}
			if m.Score == 0 {
				continue
			}
		}
		results = append(results, m)
	}

	if score != nil {
		slices.SortStableFunc(results, func(a, b Match) int {
			if a.Score != b.Score {
				if a.Score > b.Score {
					return -1
				}
				return 1
			}
			return strings.Compare(a.Path, b.Path)
		})
	}
	if opts.MaxResults > 0 && len(results) > opts.MaxResults {
		results = results[:opts.MaxResults]
	}
	return results, nil
}
