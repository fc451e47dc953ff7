package agent

import (
	"strings"
)

// DefaultAffirmativeTokens are accepted at the start of a passing review.
var DefaultAffirmativeTokens = []string{"yes"}

// DefaultNegativeTokens fail a review wherever they appear.
var DefaultNegativeTokens = []string{"not adequate", "inadequate", "does not address", "doesn't address"}

const reviewLeadingNoise = " \t\r\n*_`\"'>"

// ReviewPolicy classifies review text as passing or failing.
type ReviewPolicy struct {
	Affirmative []string
	Negative    []string
}

// NewReviewPolicy builds a policy, substituting the default token list for an empty one.
func NewReviewPolicy(affirmative []string, negative []string) ReviewPolicy {
	policy := ReviewPolicy{Affirmative: normalizeTokens(affirmative), Negative: normalizeTokens(negative)}
	if len(policy.Affirmative) == 0 {
		policy.Affirmative = DefaultAffirmativeTokens
	}
	if len(policy.Negative) == 0 {
		policy.Negative = DefaultNegativeTokens
	}
	return policy
}

// DefaultReviewPolicy returns the policy built from the default token lists.
func DefaultReviewPolicy() ReviewPolicy {
	return NewReviewPolicy(nil, nil)
}

// Passed reports whether review starts with an affirmative token and contains no negative token.
// Comparison ignores case and leading markdown emphasis or quoting.
func (policy ReviewPolicy) Passed(review string) bool {
	normalized := strings.TrimLeft(strings.ToLower(review), reviewLeadingNoise)
	if normalized == "" {
		return false
	}
	affirmed := false
	for _, token := range policy.Affirmative {
		if strings.HasPrefix(normalized, strings.ToLower(token)) {
			affirmed = true
			break
		}
	}
	if !affirmed {
		return false
	}
	for _, token := range policy.Negative {
		if strings.Contains(normalized, strings.ToLower(token)) {
			return false
		}
	}
	return true
}

func normalizeTokens(tokens []string) []string {
	var normalized []string
	for _, token := range tokens {
		trimmed := strings.TrimSpace(token)
		if trimmed == "" {
			continue
		}
		normalized = append(normalized, strings.ToLower(trimmed))
	}
	return normalized
}
