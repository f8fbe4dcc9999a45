package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains the resolved directories the application writes to
type Paths struct {
	UploadsDir string
	LogsDir    string
}

// ResolvePaths turns the configured directories into absolute paths. Relative
// paths are taken relative to the working directory.
func ResolvePaths(cfg *Config) (*Paths, error) {
	uploads, err := filepath.Abs(cfg.Storage.UploadsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve uploads dir: %w", err)
	}

	logsDir := DefaultLogsDir
	if cfg.Logging.FilePath != "" {
		logsDir = filepath.Dir(cfg.Logging.FilePath)
	}
	logs, err := filepath.Abs(logsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve logs dir: %w", err)
	}

	return &Paths{UploadsDir: uploads, LogsDir: logs}, nil
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.UploadsDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		slog.Debug("Ensured directory exists", slog.String("directory", dir))
	}
	return nil
}

// RunDir returns the directory of a single run
func (p *Paths) RunDir(runID string) string {
	return filepath.Join(p.UploadsDir, runID)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
