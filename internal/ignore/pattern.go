// Package ignore compiles gitignore-style patterns into rules that hide tree entries.
package ignore

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gobwas/glob"
	"go.uber.org/zap"
)

const (
	negationPrefix     = "!"
	directorySuffix    = "/"
	anyRunWildcard     = '*'
	singleRuneWildcard = '?'

	errorEmptyPatternMessage   = "empty ignore pattern"
	errorCompilePatternFormat  = "compile ignore pattern %q: %w"
	warningSkippedPatternEvent = "skipping ignore pattern"
)

// Rule is a compiled ignore pattern.
type Rule struct {
	// Pattern is the literal the rule was compiled from.
	Pattern string
	// Negated records a leading "!". Negated rules still hide matching entries.
	Negated bool
	// DirectoryOnly records a trailing "/". Entry kind is not checked when matching.
	DirectoryOnly bool

	matcher glob.Glob
}

// Compile converts a gitignore-style literal into a Rule. "*" matches any run of
// characters, "?" matches exactly one character and every other character is
// matched literally. Matching is anchored to the whole candidate string.
func Compile(pattern string) (Rule, error) {
	rule := Rule{Pattern: pattern}
	body := pattern
	if strings.HasPrefix(body, negationPrefix) {
		rule.Negated = true
		body = strings.TrimPrefix(body, negationPrefix)
	}
	if strings.HasSuffix(body, directorySuffix) {
		rule.DirectoryOnly = true
		body = strings.TrimSuffix(body, directorySuffix)
	}
	if body == "" {
		return Rule{}, fmt.Errorf(errorCompilePatternFormat, pattern, errors.New(errorEmptyPatternMessage))
	}

	compiled, compileError := glob.Compile(translatePattern(body))
	if compileError != nil {
		return Rule{}, fmt.Errorf(errorCompilePatternFormat, pattern, compileError)
	}
	rule.matcher = compiled
	return rule, nil
}

// translatePattern keeps the two supported wildcards and quotes everything else.
func translatePattern(body string) string {
	var builder strings.Builder
	for _, character := range body {
		switch character {
		case anyRunWildcard, singleRuneWildcard:
			builder.WriteRune(character)
		default:
			builder.WriteString(glob.QuoteMeta(string(character)))
		}
	}
	return builder.String()
}

// MatchString reports whether the rule matches candidate in full.
func (rule Rule) MatchString(candidate string) bool {
	if rule.matcher == nil {
		return false
	}
	return rule.matcher.Match(candidate)
}

// Matches reports whether the rule hides an entry with the given bare name or
// path relative to the walk root.
func (rule Rule) Matches(name string, relativePath string) bool {
	return rule.MatchString(name) || rule.MatchString(relativePath)
}

// RuleSet is an ordered collection of rules. Any matching rule hides an entry.
type RuleSet []Rule

// CompileAll compiles patterns in order. Patterns that fail to compile are
// logged and left out of the result.
func CompileAll(patterns []string, logger *zap.Logger) RuleSet {
	if logger == nil {
		logger = zap.NewNop()
	}
	rules := make(RuleSet, 0, len(patterns))
	for _, pattern := range patterns {
		rule, compileError := Compile(pattern)
		if compileError != nil {
			logger.Warn(warningSkippedPatternEvent, zap.String("pattern", pattern), zap.Error(compileError))
			continue
		}
		rules = append(rules, rule)
	}
	return rules
}

// Matches reports whether any rule hides the entry.
func (rules RuleSet) Matches(name string, relativePath string) bool {
	for _, rule := range rules {
		if rule.Matches(name, relativePath) {
			return true
		}
	}
	return false
}

// Patterns returns the source literals of the rules in order.
func (rules RuleSet) Patterns() []string {
	patterns := make([]string, 0, len(rules))
	for _, rule := range rules {
		patterns = append(patterns, rule.Pattern)
	}
	return patterns
}
