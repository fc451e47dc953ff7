package agent_test

import (
	"testing"

	"github.com/temirov/scout/internal/agent"
)

func TestDefaultReviewPolicyPassed(t *testing.T) {
	policy := agent.DefaultReviewPolicy()
	testCases := []struct {
		review   string
		expected bool
	}{
		{review: "YES", expected: true},
		{review: "yes, the answer covers everything", expected: true},
		{review: "  **Yes** it does", expected: true},
		{review: "NO: it misses the config loader", expected: false},
		{review: "The answer is adequate. YES", expected: false},
		{review: "Yes, but it does not address the error handling", expected: false},
		{review: "Yes? It is inadequate.", expected: false},
		{review: "", expected: false},
	}
	for _, testCase := range testCases {
		if actual := policy.Passed(testCase.review); actual != testCase.expected {
			t.Errorf("Passed(%q) = %v, want %v", testCase.review, actual, testCase.expected)
		}
	}
}

func TestNewReviewPolicyCustomTokens(t *testing.T) {
	policy := agent.NewReviewPolicy([]string{" Looks Good ", "LGTM"}, []string{"but"})
	if !policy.Passed("looks good to me") || !policy.Passed("lgtm") {
		t.Fatalf("expected custom affirmative tokens to pass")
	}
	if policy.Passed("LGTM but the tests are missing") {
		t.Fatalf("expected custom negative token to fail the review")
	}
	if policy.Passed("yes") {
		t.Fatalf("expected default affirmative token to be replaced")
	}
}

func TestNewReviewPolicyDefaultsEmptyLists(t *testing.T) {
	policy := agent.NewReviewPolicy([]string{"  "}, nil)
	if len(policy.Affirmative) != len(agent.DefaultAffirmativeTokens) || len(policy.Negative) != len(agent.DefaultNegativeTokens) {
		t.Fatalf("expected default tokens, got %+v", policy)
	}
}
