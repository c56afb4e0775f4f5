// Package media opens recipe images in an external viewer.
package media

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/pders01/larder/internal/config"
	"github.com/pders01/larder/internal/debuglog"
	"github.com/pders01/larder/internal/validation"
)

// ErrNoImage is returned for recipes without an image reference.
var ErrNoImage = errors.New("recipe has no image")

type Launcher struct {
	viewer    string
	registry  *PlayerRegistry
	validator *validation.EndpointValidator
	lookPath  func(string) (string, error)
	start     func(*exec.Cmd) error
}

// NewLauncher picks the first installed viewer from the platform list in cfg,
// falling back to the default opener.
func NewLauncher(cfg *config.Config) *Launcher {
	registry, err := NewPlayerRegistry()
	if err != nil {
		debuglog.Warnf("player registry unavailable: %v", err)
		registry = &PlayerRegistry{players: map[string]PlayerDefinition{}, goos: runtime.GOOS}
	}
	l := &Launcher{
		registry:  registry,
		validator: validation.NewEndpointValidator(),
		lookPath:  exec.LookPath,
		start:     startDetached,
	}
	l.viewer = l.pickViewer(platformViewers(cfg.Media, runtime.GOOS), cfg.Media.DefaultOpener)
	return l
}

func platformViewers(m config.MediaConfig, goos string) []string {
	switch goos {
	case "darwin":
		return m.Darwin.Image
	case "linux":
		return m.Linux.Image
	case "windows":
		return m.Windows.Image
	default:
		return m.Darwin.Image
	}
}

func (l *Launcher) pickViewer(candidates []string, fallback string) string {
	for _, name := range candidates {
		if _, err := l.lookPath(l.registry.Executable(name)); err == nil {
			return name
		}
	}
	return fallback
}

// Viewer is the chosen viewer name, or "" when none is available.
func (l *Launcher) Viewer() string {
	return l.viewer
}

// Open validates url and starts the viewer without waiting for it.
func (l *Launcher) Open(url string) error {
	if url == "" {
		return ErrNoImage
	}
	normalized, err := l.validator.ValidateAndNormalize(url)
	if err != nil {
		return fmt.Errorf("image url: %w", err)
	}
	if l.viewer == "" {
		return fmt.Errorf("no image viewer found")
	}

	cmd, err := l.registry.Command(l.viewer, normalized)
	if err != nil {
		cmd = exec.Command(l.viewer, normalized)
	}
	if err := l.start(cmd); err != nil {
		return fmt.Errorf("failed to start %s: %w", l.viewer, err)
	}
	debuglog.WithFields(map[string]interface{}{"viewer": l.viewer, "url": normalized}).Infof("opened image")
	return nil
}

func startDetached(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}
