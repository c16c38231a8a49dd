package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"

	m "mockdock.dev/pkg/mockdock/internal/model"
)

// defaultContainerBinary is the container engine invoked for image-backed
// commands.
const defaultContainerBinary = "podman"

// PodmanRunnerAdapter runs invocations inside a container, bind-mounting the
// project root at the same path so file references stay valid on both sides.
type PodmanRunnerAdapter struct {
	binary string
	host   *HostRunnerAdapter
}

// NewPodmanRunnerAdapter constructs a PodmanRunnerAdapter using the default
// engine binary.
func NewPodmanRunnerAdapter() *PodmanRunnerAdapter {
	return &PodmanRunnerAdapter{binary: defaultContainerBinary, host: NewHostRunnerAdapter()}
}

// BuildArgs assembles the engine command line for one invocation: an
// ephemeral container with the project root mounted read-write at its host
// path and set as the working directory.
func (a *PodmanRunnerAdapter) BuildArgs(inv Invocation, workDir string) []string {
	args := []string{
		"run", "--rm",
		"-v", fmt.Sprintf("%s:%s", workDir, workDir),
		"-w", workDir,
		inv.Image,
		inv.Command,
	}

	return append(args, inv.Args...)
}

// Run executes the invocation inside inv.Image via the container engine.
func (a *PodmanRunnerAdapter) Run(ctx context.Context, inv Invocation, workDir string) m.ExecResult {
	engineInv := Invocation{Command: a.binary, Args: a.BuildArgs(inv, workDir)}

	slog.Debug("running containerized command", "image", inv.Image, "command", inv.Command, "dir", workDir)

	return a.host.Run(ctx, engineInv, workDir)
}

// EnsureImage makes inv's image locally available, pulling it when the
// engine does not already have it.
func (a *PodmanRunnerAdapter) EnsureImage(ctx context.Context, image string) error {
	exists := exec.CommandContext(ctx, a.binary, "image", "exists", image)
	if err := exists.Run(); err == nil {
		slog.Debug("image present", "image", image)
		return nil
	}

	slog.Info("pulling image", "image", image)

	pull := exec.CommandContext(ctx, a.binary, "pull", image)
	if out, err := pull.CombinedOutput(); err != nil {
		return fmt.Errorf("pull image %s: %w: %s", image, err, out)
	}

	return nil
}
