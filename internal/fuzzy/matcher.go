// Package fuzzy scores identifier similarity for completion and symbol search.
package fuzzy

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"
)

const (
	JaroWinkler = "jaro-winkler"
	Levenshtein = "levenshtein"

	DefaultThreshold = 0.7
)

// Matcher compares names case-insensitively using go-edlib.
type Matcher struct {
	enabled   bool
	threshold float64
	algorithm string
}

// NewMatcher creates a matcher. An out-of-range threshold falls back to
// DefaultThreshold and an empty algorithm to Jaro-Winkler.
func NewMatcher(enabled bool, threshold float64, algorithm string) *Matcher {
	if threshold < 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	if algorithm == "" {
		algorithm = JaroWinkler
	}
	return &Matcher{enabled: enabled, threshold: threshold, algorithm: algorithm}
}

func (m *Matcher) Enabled() bool      { return m.enabled }
func (m *Matcher) Threshold() float64 { return m.threshold }
func (m *Matcher) Algorithm() string  { return m.algorithm }

// Match reports whether a and b are similar within the threshold. A disabled
// matcher only accepts equal names.
func (m *Matcher) Match(a, b string) bool {
	if !m.enabled {
		return strings.EqualFold(a, b)
	}
	return m.Similarity(a, b) >= m.threshold
}

// Similarity returns a score in [0, 1], 1 for names equal ignoring case.
func (m *Matcher) Similarity(a, b string) float64 {
	a, b = strings.ToLower(a), strings.ToLower(b)
	if a == b {
		return 1.0
	}
	if !m.enabled || a == "" || b == "" {
		return 0.0
	}

	algo := edlib.JaroWinkler
	if m.algorithm == Levenshtein {
		algo = edlib.Levenshtein
	}
	// StringsSimilarity normalizes both algorithms to a similarity in [0, 1]
	score, err := edlib.StringsSimilarity(a, b, algo)
	if err != nil {
		return 0.0
	}
	return float64(score)
}

// Result is one candidate accepted by FindMatches.
type Result struct {
	Term       string
	Similarity float64
}

// FindMatches returns the candidates similar to target, best first. Ties keep
// candidate order.
func (m *Matcher) FindMatches(target string, candidates []string) []Result {
	var out []Result
	for _, c := range candidates {
		if s := m.Similarity(target, c); s >= m.threshold {
			out = append(out, Result{Term: c, Similarity: s})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Similarity > out[j].Similarity
	})
	return out
}

// Validate checks the threshold and algorithm.
func (m *Matcher) Validate() error {
	if m.threshold < 0 || m.threshold > 1 {
		return fmt.Errorf("invalid threshold: %.2f (must be 0-1)", m.threshold)
	}
	switch m.algorithm {
	case JaroWinkler, Levenshtein:
		return nil
	}
	return fmt.Errorf("invalid algorithm: %s (must be %s or %s)", m.algorithm, JaroWinkler, Levenshtein)
}
