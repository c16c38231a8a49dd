// Package adapter provides the process-boundary adapters: command
// templating, host and container execution, and report persistence.
package adapter

import (
	"fmt"
	"regexp"
	"strings"

	"mockdock.dev/pkg/mockdock/internal/config"
	"mockdock.dev/pkg/mockdock/internal/resolve"
)

// Invocation is a fully rendered command line, ready to hand to a runner.
type Invocation struct {
	Command string
	Args    []string
	Image   string
}

// BuildInvocation renders a configured command against the per-test
// bindings. Substitution happens in two independent passes: {name}
// placeholders first, then the command's replace rules over each substituted
// argument. The configuration is validated at load time, so an unknown
// binding here means the caller forgot to supply one.
func BuildInvocation(spec config.CommandSpec, bindings map[string]string) (Invocation, error) {
	args := make([]string, 0, len(spec.Args))

	for _, arg := range spec.Args {
		substituted, err := substitute(arg, bindings)
		if err != nil {
			return Invocation{}, err
		}

		rewritten, err := applyReplaceRules(substituted, spec.ReplaceRules)
		if err != nil {
			return Invocation{}, err
		}

		args = append(args, rewritten)
	}

	return Invocation{Command: spec.Command, Args: args, Image: spec.Image}, nil
}

var placeholderRef = regexp.MustCompile(`\{([a-z_]+)\}`)

func substitute(arg string, bindings map[string]string) (string, error) {
	var missing string

	out := placeholderRef.ReplaceAllStringFunc(arg, func(ref string) string {
		name := strings.Trim(ref, "{}")

		value, ok := bindings[name]
		if !ok {
			missing = name
			return ref
		}

		return value
	})

	if missing != "" {
		return "", fmt.Errorf("argument %q references binding {%s} with no value", arg, missing)
	}

	return out, nil
}

func applyReplaceRules(arg string, rules []config.ReplaceRule) (string, error) {
	out := arg

	for _, rule := range rules {
		compiled, err := resolve.NewRule(rule.Pattern, rule.Replace, "")
		if err != nil {
			return "", fmt.Errorf("replace rule %q: %w", rule.Pattern, err)
		}

		if rewritten, ok := compiled.Resolve(out); ok {
			out = rewritten
		}
	}

	return out, nil
}
