package adapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPodmanBuildArgs(t *testing.T) {
	adapter := NewPodmanRunnerAdapter()

	inv := Invocation{
		Command: "cargo",
		Args:    []string{"test", "netclock.netclock"},
		Image:   "docker.io/library/rust:1.80",
	}

	args := adapter.BuildArgs(inv, "/work/project")

	assert.Equal(t, []string{
		"run", "--rm",
		"-v", "/work/project:/work/project",
		"-w", "/work/project",
		"docker.io/library/rust:1.80",
		"cargo",
		"test", "netclock.netclock",
	}, args)
}

func TestPodmanBuildArgsNoExtraArgs(t *testing.T) {
	adapter := NewPodmanRunnerAdapter()

	inv := Invocation{Command: "make", Image: "alpine"}

	args := adapter.BuildArgs(inv, "/srv/app")

	assert.Equal(t, []string{
		"run", "--rm",
		"-v", "/srv/app:/srv/app",
		"-w", "/srv/app",
		"alpine",
		"make",
	}, args)
}
