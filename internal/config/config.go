// Package config loads and validates the mockdock configuration. A Config is
// built once per invocation and passed explicitly into discovery, resolution
// and execution; there is no ambient global.
package config

import (
	"fmt"
	"os"
	"regexp"

	"github.com/spf13/viper"

	"mockdock.dev/pkg/mockdock/internal/resolve"
)

// Command names with defined semantics. Additional names are allowed; the
// CLI decides which ones it invokes.
const (
	CommandTest = "test"
	CommandRun  = "run"
)

// Bindings the command templater may reference. A placeholder outside this
// set is a configuration error at load time.
var knownBindings = map[string]struct{}{
	"driver_file": {},
	"test_case":   {},
	"root_dir":    {},
	"target_file": {},
}

var placeholder = regexp.MustCompile(`\{([a-z_]+)\}`)

// PatternRule maps a path regular expression to a test case template and an
// optional mount-path template. Immutable after load.
type PatternRule struct {
	Pattern   string `mapstructure:"pattern" yaml:"pattern"`
	TestCase  string `mapstructure:"testcase" yaml:"testcase"`
	MountPath string `mapstructure:"mount_path" yaml:"mount_path,omitempty"`
}

// ReplaceRule is a regex/replacement pair applied to substituted command
// arguments. This is a second, independent regex pass, distinct from path
// classification.
type ReplaceRule struct {
	Pattern string `mapstructure:"pattern" yaml:"pattern"`
	Replace string `mapstructure:"replace" yaml:"replace"`
}

// CommandSpec describes one named command. When Image is empty the command
// runs directly on the host.
type CommandSpec struct {
	Image        string        `mapstructure:"image" yaml:"image,omitempty"`
	Command      string        `mapstructure:"command" yaml:"command"`
	Args         []string      `mapstructure:"args" yaml:"args"`
	ReplaceRules []ReplaceRule `mapstructure:"replace_rules" yaml:"replace_rules,omitempty"`
}

// Config is the configuration for one process invocation. Loaded once,
// read-only afterwards.
type Config struct {
	Version        int                    `mapstructure:"version" yaml:"version"`
	DriverPatterns []PatternRule          `mapstructure:"driver_patterns" yaml:"driver_patterns"`
	MockPatterns   []PatternRule          `mapstructure:"mock_patterns" yaml:"mock_patterns"`
	Commands       map[string]CommandSpec `mapstructure:"commands" yaml:"commands"`
	Ignores        []string               `mapstructure:"ignores" yaml:"ignores,omitempty"`
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	return &cfg, nil
}

// Validate surfaces every configuration error before any discovery or swap
// transaction runs: patterns must compile, templates may only reference
// existing capture groups, and command placeholders must be known bindings.
func (c *Config) Validate() error {
	for _, rule := range c.DriverPatterns {
		if _, err := resolve.NewRule(rule.Pattern, rule.TestCase, rule.MountPath); err != nil {
			return fmt.Errorf("driver_patterns: %w", err)
		}
	}

	for _, rule := range c.MockPatterns {
		if _, err := resolve.NewRule(rule.Pattern, rule.TestCase, rule.MountPath); err != nil {
			return fmt.Errorf("mock_patterns: %w", err)
		}
	}

	for name, spec := range c.Commands {
		if spec.Command == "" {
			return fmt.Errorf("commands.%s: command is required", name)
		}

		for _, arg := range spec.Args {
			for _, ref := range placeholder.FindAllStringSubmatch(arg, -1) {
				if _, ok := knownBindings[ref[1]]; !ok {
					return fmt.Errorf("commands.%s: argument %q references unknown binding {%s}", name, arg, ref[1])
				}
			}
		}

		for _, rule := range spec.ReplaceRules {
			// Reuse the matcher's compile and group-reference checks; the
			// anchoring it adds does not affect validity.
			if _, err := resolve.NewRule(rule.Pattern, rule.Replace, ""); err != nil {
				return fmt.Errorf("commands.%s: %w", name, err)
			}
		}
	}

	return nil
}

// Resolver compiles the pattern rules into a path resolver. Validate must
// have succeeded, so compilation cannot fail here.
func (c *Config) Resolver() (*resolve.Resolver, error) {
	drivers := make([]resolve.Rule, 0, len(c.DriverPatterns))
	for _, rule := range c.DriverPatterns {
		compiled, err := resolve.NewRule(rule.Pattern, rule.TestCase, rule.MountPath)
		if err != nil {
			return nil, fmt.Errorf("driver_patterns: %w", err)
		}

		drivers = append(drivers, compiled)
	}

	mocks := make([]resolve.Rule, 0, len(c.MockPatterns))
	for _, rule := range c.MockPatterns {
		compiled, err := resolve.NewRule(rule.Pattern, rule.TestCase, rule.MountPath)
		if err != nil {
			return nil, fmt.Errorf("mock_patterns: %w", err)
		}

		mocks = append(mocks, compiled)
	}

	return resolve.NewResolver(drivers, mocks), nil
}

// Command returns the named CommandSpec.
func (c *Config) Command(name string) (CommandSpec, error) {
	spec, ok := c.Commands[name]
	if !ok {
		return CommandSpec{}, fmt.Errorf("commands.%s section not found in configuration", name)
	}

	return spec, nil
}

// Default returns the configuration written by `mockdock init`.
func Default() Config {
	return Config{
		Version: 1,
		DriverPatterns: []PatternRule{
			{Pattern: `src/([^/]+)/driver/([^/]+)\.(.+)`, TestCase: "$1.$2"},
		},
		MockPatterns: []PatternRule{
			{Pattern: `src/([^/]+)/mock/([^/]+)\.(.+)`, TestCase: "$1.$2"},
		},
		Commands: map[string]CommandSpec{
			CommandTest: {
				Command: "cargo",
				Args:    []string{"test", "{driver_file}"},
			},
			CommandRun: {
				Command: "cargo",
				Args:    []string{"run"},
			},
		},
		Ignores: []string{".git"},
	}
}

// Exists reports whether a configuration file is present at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
