// Package validate is the trust boundary between raw user input and the
// symbolic engine. Every front end (CLI, HTTP, MCP) runs incoming text
// through here before parsing: hard length caps, a character whitelist, and
// a blacklist of injection markers. The parser behind it never evaluates
// code, so the checks are belt-and-suspenders, but they fail early with a
// message that names the problem instead of a parse error deep inside.
package validate

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/aretw0/stepwise/internal/symbolic"
	"github.com/aretw0/stepwise/pkg/domain"
)

// Input length caps.
const (
	MaxExpressionLength = 500
	MaxVariableLength   = 20
)

// allowedExpression whitelists the characters a mathematical expression may
// contain: letters, digits, whitespace, operators, parentheses, dot, comma,
// underscore.
var allowedExpression = regexp.MustCompile(`^[a-zA-Z0-9\s+\-*/^().,_]+$`)

// identifier is the shape of a usable variable name.
var identifier = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// allowedMatrix whitelists matrix literal characters: brackets, digits,
// letters, commas, whitespace, sign, dot, slash.
var allowedMatrix = regexp.MustCompile(`^[\[\]0-9\s,a-zA-Z+\-./]+$`)

// divisionByZero spots a literal zero denominator before the backend folds it.
var divisionByZero = regexp.MustCompile(`/\s*0(\s|$|\))`)

// blacklist holds patterns that never belong in a math expression. Matched
// case-insensitively, before the whitelist, so the error names the attack
// rather than a stray character.
var blacklist = []*regexp.Regexp{
	regexp.MustCompile(`__`),
	regexp.MustCompile(`(?i)import`),
	regexp.MustCompile(`(?i)eval`),
	regexp.MustCompile(`(?i)exec`),
	regexp.MustCompile(`(?i)compile`),
	regexp.MustCompile(`(?i)open`),
	regexp.MustCompile(`(?i)system`),
	regexp.MustCompile(`;`),
	regexp.MustCompile(`(?i)lambda`),
	regexp.MustCompile(`\.\./`),
	regexp.MustCompile(`\\\\`),
	regexp.MustCompile(`(?i)<\?xml`),
	regexp.MustCompile(`(?i)<script`),
	regexp.MustCompile(`(?i)javascript:`),
	regexp.MustCompile(`(?i)DROP\s+TABLE`),
}

// constants the parser reserves alongside the known function names.
var reservedNames = map[string]struct{}{
	"pi": {}, "e": {}, "E": {},
	"ln": {}, "abs": {}, "ceil": {}, "heaviside": {},
}

// Expression checks a raw expression and returns its trimmed form.
// All failures are user errors wrapping domain.ErrInvalidInput.
func Expression(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", domain.InputErrorf("expression cannot be empty")
	}
	if len(trimmed) > MaxExpressionLength {
		return "", domain.InputErrorf("expression too long (max %d characters)", MaxExpressionLength)
	}
	for _, pattern := range blacklist {
		if pattern.MatchString(trimmed) {
			return "", domain.InputErrorf("expression contains forbidden pattern %q", pattern.String())
		}
	}
	if !allowedExpression.MatchString(trimmed) {
		return "", domain.InputErrorf("expression contains invalid characters: %s", disallowedIn(trimmed, allowedExpression))
	}
	if err := balancedParens(trimmed); err != nil {
		return "", err
	}
	if divisionByZero.MatchString(trimmed) {
		return "", domain.InputErrorf("division by zero detected")
	}
	return trimmed, nil
}

// Variable checks a differentiation variable name and returns its trimmed form.
func Variable(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", domain.InputErrorf("variable name cannot be empty")
	}
	if len(trimmed) > MaxVariableLength {
		return "", domain.InputErrorf("variable name too long (max %d characters)", MaxVariableLength)
	}
	if !identifier.MatchString(trimmed) {
		return "", domain.InputErrorf("variable name must start with a letter or underscore and contain only letters, digits, and underscores")
	}
	if strings.Contains(trimmed, "__") {
		return "", domain.InputErrorf("variable name cannot contain double underscores")
	}
	if _, reserved := reservedNames[trimmed]; reserved || symbolic.IsKnownFunction(trimmed) {
		return "", domain.InputErrorf("variable name conflicts with a built-in function or constant: %s", trimmed)
	}
	return trimmed, nil
}

// Matrix checks a matrix literal like [[1,2],[3,4]] and returns its trimmed
// form. Entry syntax is the parser's concern; this only guards the envelope.
func Matrix(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", domain.InputErrorf("matrix cannot be empty")
	}
	if !strings.HasPrefix(trimmed, "[[") || !strings.HasSuffix(trimmed, "]]") {
		return "", domain.InputErrorf("matrix must be enclosed in double brackets: [[...]]")
	}
	if strings.Count(trimmed, "[") != strings.Count(trimmed, "]") {
		return "", domain.InputErrorf("unbalanced brackets in matrix")
	}
	if !allowedMatrix.MatchString(trimmed) {
		return "", domain.InputErrorf("matrix contains invalid characters: %s", disallowedIn(trimmed, allowedMatrix))
	}
	return trimmed, nil
}

// balancedParens walks the expression once, rejecting a closer with no opener
// as soon as it appears.
func balancedParens(text string) error {
	depth := 0
	for _, r := range text {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return domain.InputErrorf("unbalanced parentheses (too many closing)")
			}
		}
	}
	if depth != 0 {
		return domain.InputErrorf("unbalanced parentheses (unclosed opening)")
	}
	return nil
}

// disallowedIn lists the offending characters in sorted order so the message
// is stable.
func disallowedIn(text string, allowed *regexp.Regexp) string {
	seen := map[rune]struct{}{}
	for _, r := range text {
		if !allowed.MatchString(string(r)) {
			seen[r] = struct{}{}
		}
	}
	chars := make([]string, 0, len(seen))
	for r := range seen {
		chars = append(chars, fmt.Sprintf("%q", r))
	}
	sort.Strings(chars)
	return strings.Join(chars, ", ")
}
