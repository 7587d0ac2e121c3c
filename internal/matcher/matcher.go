// Package matcher decides whether a detected application name belongs to the
// configured meeting allow-list.
package matcher

import (
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/samber/lo"
)

// Match modes
const (
	ModeExact       = "exact"
	ModeInsensitive = "insensitive"
	ModeContains    = "contains"
	ModeFuzzy       = "fuzzy"
)

// Matcher tests application names against an allow-list. Order and
// duplicates in the list carry no meaning.
type Matcher struct {
	mode    string
	entries []string
	index   map[string]string // normalized name -> configured entry
}

// New builds a matcher for the given mode and allow-list
func New(mode string, apps []string) (*Matcher, error) {
	if mode == "" {
		mode = ModeExact
	}

	switch mode {
	case ModeExact, ModeInsensitive, ModeContains, ModeFuzzy:
	default:
		return nil, fmt.Errorf("unknown match mode: %s", mode)
	}

	entries := lo.Uniq(lo.Filter(apps, func(app string, _ int) bool {
		return strings.TrimSpace(app) != ""
	}))

	m := &Matcher{
		mode:    mode,
		entries: entries,
		index:   make(map[string]string, len(entries)),
	}
	for _, entry := range entries {
		key := m.normalize(entry)
		if _, exists := m.index[key]; !exists {
			m.index[key] = entry
		}
	}

	return m, nil
}

// Mode returns the match mode in use
func (m *Matcher) Mode() string {
	return m.mode
}

// Entries returns the de-duplicated allow-list
func (m *Matcher) Entries() []string {
	return append([]string(nil), m.entries...)
}

// Match reports whether app is a meeting app and which allow-list entry it matched
func (m *Matcher) Match(app string) (string, bool) {
	if strings.TrimSpace(app) == "" {
		return "", false
	}

	switch m.mode {
	case ModeExact, ModeInsensitive:
		entry, ok := m.index[m.normalize(app)]
		return entry, ok

	case ModeContains:
		name := strings.ToLower(app)
		for _, entry := range m.entries {
			if strings.Contains(name, strings.ToLower(entry)) {
				return entry, true
			}
		}
		return "", false

	case ModeFuzzy:
		return m.matchFuzzy(app)
	}

	return "", false
}

// matchFuzzy treats each entry as a pattern over the detected name and keeps
// the best scoring one.
func (m *Matcher) matchFuzzy(app string) (string, bool) {
	name := []string{strings.ToLower(app)}

	best := ""
	bestScore := 0
	for _, entry := range m.entries {
		matches := fuzzy.Find(strings.ToLower(entry), name)
		if len(matches) == 0 {
			continue
		}
		if best == "" || matches[0].Score > bestScore {
			best = entry
			bestScore = matches[0].Score
		}
	}

	return best, best != ""
}

func (m *Matcher) normalize(name string) string {
	if m.mode == ModeExact {
		return name
	}
	return strings.ToLower(strings.TrimSpace(name))
}
