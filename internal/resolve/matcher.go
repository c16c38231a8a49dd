// Package resolve maps discovered paths to test case identifiers and mock
// mount targets using configured pattern rules.
package resolve

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// groupRef matches $n placeholders in resolution templates.
var groupRef = regexp.MustCompile(`\$(\d+)`)

// Rule is a compiled pattern paired with its resolution templates. Rules are
// immutable after construction.
type Rule struct {
	// Pattern is the regular expression as written in the configuration.
	Pattern string

	re       *regexp.Regexp
	template string
	mount    string
}

// NewRule compiles pattern and validates that every $n placeholder in the
// resolution and mount templates references an existing capture group.
// Violations are configuration errors and must surface at load time, never
// during matching.
func NewRule(pattern, template, mountTemplate string) (Rule, error) {
	// Anchor the pattern so coincidental substring matches deeper in a path
	// cannot misclassify unrelated files.
	re, err := regexp.Compile(`\A(?:` + pattern + `)\z`)
	if err != nil {
		return Rule{}, fmt.Errorf("compile pattern %q: %w", pattern, err)
	}

	if err := checkGroupRefs(template, re.NumSubexp()); err != nil {
		return Rule{}, fmt.Errorf("pattern %q: %w", pattern, err)
	}

	if mountTemplate != "" {
		if err := checkGroupRefs(mountTemplate, re.NumSubexp()); err != nil {
			return Rule{}, fmt.Errorf("pattern %q: %w", pattern, err)
		}
	}

	return Rule{
		Pattern:  pattern,
		re:       re,
		template: template,
		mount:    mountTemplate,
	}, nil
}

// Resolve matches path against the rule and, on a match, expands the
// resolution template with the captured groups. A non-match is not an error;
// callers try the next rule. Pure function of its inputs.
func (r Rule) Resolve(path string) (string, bool) {
	caps := r.re.FindStringSubmatch(path)
	if caps == nil {
		return "", false
	}

	return Expand(r.template, caps), true
}

// ResolveMount expands the optional mount-path template for a matching path.
// The second return is false when the rule carries no mount template or the
// path does not match.
func (r Rule) ResolveMount(path string) (string, bool) {
	if r.mount == "" {
		return "", false
	}

	caps := r.re.FindStringSubmatch(path)
	if caps == nil {
		return "", false
	}

	return Expand(r.mount, caps), true
}

// Matches reports whether path matches the rule's pattern.
func (r Rule) Matches(path string) bool {
	return r.re.MatchString(path)
}

// Expand substitutes $1..$n placeholders in template with the corresponding
// capture values. captures[0] is the whole match, as returned by
// FindStringSubmatch.
//
// Go's native template expansion parses "$2_$3" as one identifier named
// "2_", so substitution is done textually, highest group first so that $12
// is never clobbered by $1.
func Expand(template string, captures []string) string {
	out := template
	for i := len(captures) - 1; i >= 1; i-- {
		out = strings.ReplaceAll(out, "$"+strconv.Itoa(i), captures[i])
	}

	return out
}

// checkGroupRefs rejects templates referencing capture groups the pattern
// does not define. Groups are 1-indexed; $0 is not a valid reference.
func checkGroupRefs(template string, numGroups int) error {
	for _, ref := range groupRef.FindAllStringSubmatch(template, -1) {
		n, err := strconv.Atoi(ref[1])
		if err != nil {
			return fmt.Errorf("template %q: invalid group reference %q", template, ref[0])
		}

		if n < 1 || n > numGroups {
			return fmt.Errorf("template %q references capture group $%d but the pattern defines %d group(s)", template, n, numGroups)
		}
	}

	return nil
}
