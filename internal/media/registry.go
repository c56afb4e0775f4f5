package media

import (
	_ "embed"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"slices"

	"github.com/pelletier/go-toml/v2"
)

//go:embed players.toml
var playersTOML []byte

// PlayerDefinition describes how to invoke one image viewer.
type PlayerDefinition struct {
	Description string   `toml:"description"`
	Platforms   []string `toml:"platforms"`
	// Command overrides the executable; the entry name is used otherwise.
	Command string   `toml:"command,omitempty"`
	Args    []string `toml:"args,omitempty"`
}

type PlayersConfig struct {
	Players map[string]PlayerDefinition `toml:"players"`
}

// PlayerRegistry holds the built-in definitions merged with the user's.
type PlayerRegistry struct {
	players map[string]PlayerDefinition
	goos    string
}

// NewPlayerRegistry parses the embedded definitions and merges
// ~/.config/larder/players.toml over them when present.
func NewPlayerRegistry() (*PlayerRegistry, error) {
	r, err := parseRegistry(playersTOML)
	if err != nil {
		return nil, err
	}
	if home, err := os.UserHomeDir(); err == nil {
		r.mergeFile(filepath.Join(home, ".config", "larder", "players.toml"))
	}
	return r, nil
}

func parseRegistry(data []byte) (*PlayerRegistry, error) {
	var cfg PlayersConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing players.toml: %w", err)
	}
	if cfg.Players == nil {
		cfg.Players = map[string]PlayerDefinition{}
	}
	return &PlayerRegistry{players: cfg.Players, goos: runtime.GOOS}, nil
}

func (r *PlayerRegistry) mergeFile(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	var user PlayersConfig
	if err := toml.Unmarshal(data, &user); err != nil {
		return
	}
	for name, def := range user.Players {
		r.players[name] = def
	}
}

// Command builds the invocation of playerName for url. Unknown players run
// as `playerName url`.
func (r *PlayerRegistry) Command(playerName, url string) (*exec.Cmd, error) {
	def, ok := r.players[playerName]
	if !ok {
		return exec.Command(playerName, url), nil
	}
	if len(def.Platforms) > 0 && !slices.Contains(def.Platforms, r.goos) {
		return nil, fmt.Errorf("%s not supported on %s", playerName, r.goos)
	}

	bin := def.Command
	if bin == "" {
		bin = playerName
	}
	args := append(slices.Clone(def.Args), url)
	return exec.Command(bin, args...), nil
}

// Executable returns the binary that must be on PATH for playerName.
func (r *PlayerRegistry) Executable(playerName string) string {
	if def, ok := r.players[playerName]; ok && def.Command != "" {
		return def.Command
	}
	return playerName
}
