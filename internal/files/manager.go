package files

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/hdmquan/logos-living-capital/internal/config"
)

// RunTimeLayout is the timestamp prefix of a run ID.
const RunTimeLayout = "20060102_150405"

var runIDPattern = regexp.MustCompile(`^\d{8}_\d{6}_[0-9a-f]{8}$`)

var (
	ErrInvalidRunID  = errors.New("invalid run id")
	ErrRunNotFound   = errors.New("run not found")
	ErrRunExists     = errors.New("run already exists")
	ErrInvalidName   = errors.New("invalid file name")
	ErrNoRawWorkbook = errors.New("run has no raw workbook")
)

// Run is one upload and its derived files.
type Run struct {
	ID        string    `json:"id"`
	Dir       string    `json:"-"`
	Hash      string    `json:"hash"` // first 8 hex digits of the upload's MD5
	CreatedAt time.Time `json:"created_at"`
}

// RawDir holds the original upload.
func (r *Run) RawDir() string {
	return filepath.Join(r.Dir, config.RawDirName)
}

// ProcessedDir holds the tables and reports derived from the upload.
func (r *Run) ProcessedDir() string {
	return filepath.Join(r.Dir, config.ProcessedDirName)
}

// ProcessedPath returns the path of name inside the processed directory.
func (r *Run) ProcessedPath(name string) string {
	return filepath.Join(r.ProcessedDir(), name)
}

// Workbook returns the path of the uploaded workbook.
func (r *Run) Workbook() (string, error) {
	entries, err := os.ReadDir(r.RawDir())
	if err != nil {
		return "", fmt.Errorf("failed to read raw directory: %w", err)
	}
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			return filepath.Join(r.RawDir(), entry.Name()), nil
		}
	}
	return "", ErrNoRawWorkbook
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces the wall clock used to stamp new runs.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// Manager creates and opens run directories below the uploads root.
type Manager struct {
	root string
	now  func() time.Time
}

// NewManager creates a new run manager rooted at paths.UploadsDir
func NewManager(paths *config.Paths, opts ...Option) *Manager {
	m := &Manager{root: paths.UploadsDir, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Root returns the uploads directory.
func (m *Manager) Root() string {
	return m.root
}

// CreateRun stores content as name inside a new run directory and returns
// the run. The content is streamed to disk while it is hashed.
func (m *Manager) CreateRun(name string, content io.Reader) (*Run, error) {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "" || name == "." || name == ".." || name == string(filepath.Separator) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	if err := os.MkdirAll(m.root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}

	tmp, err := os.CreateTemp(m.root, ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create upload file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	hash := md5.New()
	size, err := io.Copy(io.MultiWriter(tmp, hash), content)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	createdAt := m.now()
	sum := hex.EncodeToString(hash.Sum(nil))
	run := &Run{
		ID:        fmt.Sprintf("%s_%s", createdAt.Format(RunTimeLayout), sum[:8]),
		Hash:      sum[:8],
		CreatedAt: createdAt.Truncate(time.Second),
	}
	run.Dir = filepath.Join(m.root, run.ID)

	if err := os.Mkdir(run.Dir, 0755); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("%w: %s", ErrRunExists, run.ID)
		}
		return nil, fmt.Errorf("failed to create run directory: %w", err)
	}
	for _, dir := range []string{run.RawDir(), run.ProcessedDir()} {
		if err := os.Mkdir(dir, 0755); err != nil {
			os.RemoveAll(run.Dir)
			return nil, fmt.Errorf("failed to create run directory: %w", err)
		}
	}

	if err := os.Rename(tmpPath, filepath.Join(run.RawDir(), name)); err != nil {
		os.RemoveAll(run.Dir)
		return nil, fmt.Errorf("failed to move upload into run: %w", err)
	}

	slog.Info("Created run",
		slog.String("run_id", run.ID),
		slog.String("file", name),
		slog.Int64("size_bytes", size))

	return run, nil
}

// ValidateRunID reports whether id has the run ID shape.
func ValidateRunID(id string) error {
	if !runIDPattern.MatchString(id) {
		return fmt.Errorf("%w: %q", ErrInvalidRunID, id)
	}
	return nil
}

// OpenRun returns an existing run.
func (m *Manager) OpenRun(id string) (*Run, error) {
	if err := ValidateRunID(id); err != nil {
		return nil, err
	}

	dir := filepath.Join(m.root, id)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}

	return runFromID(id, dir), nil
}

// ListRuns returns every run under the uploads root, newest first.
func (m *Manager) ListRuns() ([]*Run, error) {
	entries, err := os.ReadDir(m.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []*Run{}, nil
		}
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	runs := make([]*Run, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() || !runIDPattern.MatchString(entry.Name()) {
			continue
		}
		runs = append(runs, runFromID(entry.Name(), filepath.Join(m.root, entry.Name())))
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].ID > runs[j].ID })
	return runs, nil
}

func runFromID(id, dir string) *Run {
	run := &Run{ID: id, Dir: dir, Hash: id[len(RunTimeLayout)+1:]}
	if t, err := time.ParseInLocation(RunTimeLayout, id[:len(RunTimeLayout)], time.Local); err == nil {
		run.CreatedAt = t
	}
	return run
}
