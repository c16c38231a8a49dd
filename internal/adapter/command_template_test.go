package adapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mockdock.dev/pkg/mockdock/internal/config"
)

func TestBuildInvocationSubstitutesBindings(t *testing.T) {
	spec := config.CommandSpec{
		Command: "cargo",
		Args:    []string{"test", "{test_case}", "--manifest-path", "{root_dir}/Cargo.toml"},
	}

	inv, err := BuildInvocation(spec, map[string]string{
		"test_case": "netclock.netclock",
		"root_dir":  "/work/project",
	})
	require.NoError(t, err)
	assert.Equal(t, "cargo", inv.Command)
	assert.Equal(t, []string{"test", "netclock.netclock", "--manifest-path", "/work/project/Cargo.toml"}, inv.Args)
}

func TestBuildInvocationMissingBinding(t *testing.T) {
	spec := config.CommandSpec{
		Command: "cargo",
		Args:    []string{"test", "{test_case}"},
	}

	_, err := BuildInvocation(spec, map[string]string{"root_dir": "/work"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "test_case")
}

func TestBuildInvocationAppliesReplaceRules(t *testing.T) {
	spec := config.CommandSpec{
		Command: "cargo",
		Args:    []string{"test", "{driver_file}"},
		ReplaceRules: []config.ReplaceRule{
			{Pattern: `src/([^/]+)/driver/([^/]+)\.rs`, Replace: "$1::driver_$2"},
		},
	}

	inv, err := BuildInvocation(spec, map[string]string{
		"driver_file": "src/foo/driver/bar.rs",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"test", "foo::driver_bar"}, inv.Args)
}

func TestBuildInvocationReplaceRulesApplyInOrder(t *testing.T) {
	spec := config.CommandSpec{
		Command: "sh",
		Args:    []string{"{target_file}"},
		ReplaceRules: []config.ReplaceRule{
			{Pattern: `(.+)\.rs`, Replace: "$1"},
			{Pattern: `src/(.+)`, Replace: "$1"},
		},
	}

	inv, err := BuildInvocation(spec, map[string]string{"target_file": "src/foo.rs"})
	require.NoError(t, err)
	assert.Equal(t, []string{"foo"}, inv.Args)
}

func TestBuildInvocationNonMatchingReplaceRuleIsInert(t *testing.T) {
	spec := config.CommandSpec{
		Command: "sh",
		Args:    []string{"{driver_file}"},
		ReplaceRules: []config.ReplaceRule{
			{Pattern: `tests/(.+)`, Replace: "$1"},
		},
	}

	inv, err := BuildInvocation(spec, map[string]string{"driver_file": "src/foo.rs"})
	require.NoError(t, err)
	assert.Equal(t, []string{"src/foo.rs"}, inv.Args)
}

func TestBuildInvocationLiteralArgsPassThrough(t *testing.T) {
	spec := config.CommandSpec{
		Command: "make",
		Args:    []string{"-C", "build", "check"},
		Image:   "docker.io/library/alpine:3.20",
	}

	inv, err := BuildInvocation(spec, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"-C", "build", "check"}, inv.Args)
	assert.Equal(t, "docker.io/library/alpine:3.20", inv.Image)
}
