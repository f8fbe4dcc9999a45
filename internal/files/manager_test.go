package files

import (
	"crypto/md5"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hdmquan/logos-living-capital/internal/config"
)

func fixedClock(t time.Time) Option {
	return WithClock(func() time.Time { return t })
}

func newTestManager(t *testing.T, opts ...Option) *Manager {
	t.Helper()
	return NewManager(&config.Paths{UploadsDir: filepath.Join(t.TempDir(), "uploads")}, opts...)
}

func TestCreateRun(t *testing.T) {
	content := "workbook bytes"
	sum := md5.Sum([]byte(content))
	wantID := "20240930_142501_" + hex.EncodeToString(sum[:])[:8]

	m := newTestManager(t, fixedClock(time.Date(2024, 9, 30, 14, 25, 1, 0, time.Local)))

	run, err := m.CreateRun("Statements.xlsx", strings.NewReader(content))
	require.NoError(t, err)

	assert.Equal(t, wantID, run.ID)
	assert.Equal(t, hex.EncodeToString(sum[:])[:8], run.Hash)
	assert.DirExists(t, run.ProcessedDir())

	data, err := os.ReadFile(filepath.Join(run.RawDir(), "Statements.xlsx"))
	require.NoError(t, err)
	assert.Equal(t, content, string(data))

	path, err := run.Workbook()
	require.NoError(t, err)
	assert.Equal(t, "Statements.xlsx", filepath.Base(path))

	leftovers, err := filepath.Glob(filepath.Join(m.Root(), ".upload-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestCreateRun_StripsDirectories(t *testing.T) {
	m := newTestManager(t)

	run, err := m.CreateRun("../../etc/Statements.xlsx", strings.NewReader("x"))
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(run.RawDir(), "Statements.xlsx"))
}

func TestCreateRun_InvalidName(t *testing.T) {
	m := newTestManager(t)

	for _, name := range []string{"", "  ", ".", ".."} {
		_, err := m.CreateRun(name, strings.NewReader("x"))
		assert.ErrorIs(t, err, ErrInvalidName, "name %q", name)
	}
}

func TestCreateRun_SameContentSameSecond(t *testing.T) {
	m := newTestManager(t, fixedClock(time.Date(2024, 9, 30, 14, 25, 1, 0, time.Local)))

	_, err := m.CreateRun("a.xlsx", strings.NewReader("same"))
	require.NoError(t, err)

	_, err = m.CreateRun("b.xlsx", strings.NewReader("same"))
	assert.ErrorIs(t, err, ErrRunExists)

	_, err = m.CreateRun("c.xlsx", strings.NewReader("different"))
	assert.NoError(t, err)
}

func TestOpenRun(t *testing.T) {
	created := time.Date(2024, 9, 30, 14, 25, 1, 0, time.Local)
	m := newTestManager(t, fixedClock(created))

	run, err := m.CreateRun("Statements.xlsx", strings.NewReader("x"))
	require.NoError(t, err)

	opened, err := m.OpenRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, opened.ID)
	assert.Equal(t, run.Dir, opened.Dir)
	assert.Equal(t, run.Hash, opened.Hash)
	assert.True(t, created.Equal(opened.CreatedAt))

	_, err = m.OpenRun("20240101_000000_deadbeef")
	assert.ErrorIs(t, err, ErrRunNotFound)

	for _, id := range []string{"", "latest", "../20240930_142501_abcdef12", "20240930_142501_ABCDEF12"} {
		_, err = m.OpenRun(id)
		assert.ErrorIs(t, err, ErrInvalidRunID, "id %q", id)
	}
}

func TestListRuns(t *testing.T) {
	m := newTestManager(t)

	runs, err := m.ListRuns()
	require.NoError(t, err)
	assert.Empty(t, runs)

	base := time.Date(2024, 9, 30, 8, 0, 0, 0, time.Local)
	var ids []string
	for i, content := range []string{"first", "second", "third"} {
		m.now = func() time.Time { return base.Add(time.Duration(i) * time.Hour) }
		run, err := m.CreateRun("w.xlsx", strings.NewReader(content))
		require.NoError(t, err)
		ids = append(ids, run.ID)
	}
	require.NoError(t, os.MkdirAll(filepath.Join(m.Root(), "not-a-run"), 0755))

	runs, err = m.ListRuns()
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, ids[2], runs[0].ID)
	assert.Equal(t, ids[0], runs[2].ID)
}

func TestRun_WorkbookMissing(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, config.RawDirName), 0755))

	run := &Run{ID: "20240930_142501_abcdef12", Dir: dir}
	_, err := run.Workbook()
	assert.ErrorIs(t, err, ErrNoRawWorkbook)
}
