package validation

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsafePath is wrapped by every path validation failure.
var ErrUnsafePath = errors.New("unsafe path")

// FilePathValidator checks user-supplied paths for the database and log file.
type FilePathValidator struct {
	// AllowedBaseDirs restricts paths to these directories. Empty allows all.
	AllowedBaseDirs    []string
	AllowHomeExpansion bool
	MaxPathLength      int
}

// NewFilePathValidator creates a validator restricted to larder's own
// directories and the temp dir.
func NewFilePathValidator() *FilePathValidator {
	homeDir, _ := os.UserHomeDir()
	return &FilePathValidator{
		AllowedBaseDirs: []string{
			filepath.Join(homeDir, ".larder"),
			filepath.Join(homeDir, ".config", "larder"),
			homeDir,
			os.TempDir(),
		},
		AllowHomeExpansion: true,
		MaxPathLength:      4096,
	}
}

// NewPermissiveFilePathValidator creates a validator for development/testing
func NewPermissiveFilePathValidator() *FilePathValidator {
	return &FilePathValidator{
		AllowHomeExpansion: true,
		MaxPathLength:      4096,
	}
}

func unsafe(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnsafePath, fmt.Sprintf(format, args...))
}

// ValidateAndSanitize expands and cleans path and returns it as an
// absolute path.
func (v *FilePathValidator) ValidateAndSanitize(path string) (string, error) {
	if path == "" {
		return "", unsafe("path cannot be empty")
	}
	if len(path) > v.MaxPathLength {
		return "", unsafe("path too long (max %d characters)", v.MaxPathLength)
	}
	for _, r := range path {
		if r == 0 {
			return "", unsafe("path contains null bytes")
		}
		if r < 32 && r != '\t' {
			return "", unsafe("path contains control characters")
		}
	}
	for _, part := range strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == ".." {
			return "", unsafe("directory traversal not allowed")
		}
	}

	if strings.HasPrefix(path, "~") {
		if !v.AllowHomeExpansion || !strings.HasPrefix(path, "~/") {
			return "", unsafe("tilde expansion not allowed or invalid tilde usage")
		}
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("cannot make path absolute: %w", err)
	}
	if err := v.checkBaseDirs(abs); err != nil {
		return "", err
	}
	return abs, nil
}

func (v *FilePathValidator) checkBaseDirs(path string) error {
	if len(v.AllowedBaseDirs) == 0 {
		return nil
	}
	for _, base := range v.AllowedBaseDirs {
		absBase, err := filepath.Abs(base)
		if err != nil {
			continue
		}
		rel, err := filepath.Rel(absBase, path)
		if err != nil {
			continue
		}
		if rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return nil
		}
	}
	return unsafe("path not within allowed directories: %v", v.AllowedBaseDirs)
}

// ValidateFile validates path as a regular file location. The file need not
// exist but must not be a directory.
func (v *FilePathValidator) ValidateFile(path string) (string, error) {
	p, err := v.ValidateAndSanitize(path)
	if err != nil {
		return "", err
	}
	if info, err := os.Stat(p); err == nil && info.IsDir() {
		return "", unsafe("path is a directory, not a file: %s", p)
	}
	return p, nil
}

// EnsureParentDir validates path as a file and creates its parent directory.
func (v *FilePathValidator) EnsureParentDir(path string) (string, error) {
	p, err := v.ValidateFile(path)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	return p, nil
}
