package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/nova/internal/core/domain"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return dir
}

func TestIndexCmd_Report(t *testing.T) {
	a := newTestApp(t)
	dir := writeFiles(t, map[string]string{
		"garden.md":  "# Garden\n\nTomatoes need sunlight and water.\n",
		"todo.txt":   "buy compost and seeds",
		"blob.xyz":   "unsupported",
		".hidden.md": "# Secret\n\nnever indexed\n",
	})

	out, err := runCLI(t, a, "index", "--no-progress", dir)
	require.NoError(t, err)

	assert.Contains(t, out, "Index Summary")
	assert.Contains(t, out, "Files:      3")
	assert.Contains(t, out, "Successful: 2")
	assert.Contains(t, out, "Skipped:    1")
	assert.Contains(t, out, "[markdown]")
	assert.Contains(t, out, "[plaintext]")

	out, err = runCLI(t, a, "search", "tomatoes sunlight")
	require.NoError(t, err)
	assert.Contains(t, out, "[1] Garden")
	assert.Contains(t, out, filepath.Join(dir, "garden.md"))
}

func TestIndexCmd_JSON(t *testing.T) {
	a := newTestApp(t)
	dir := writeFiles(t, map[string]string{
		"notes/a.md": "# A\n\nalpha text\n",
		"notes/b.md": "# B\n\nbeta text\n",
	})

	out, err := runCLI(t, a, "index", "--json", dir)
	require.NoError(t, err)

	var report domain.IndexReport
	require.NoError(t, json.Unmarshal([]byte(out), &report), out)
	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 2, report.Successful)
	assert.Equal(t, 2, report.Chunks)
}

func TestIndexCmd_Reindex(t *testing.T) {
	a := newTestApp(t)
	dir := writeFiles(t, map[string]string{"note.md": "# One\n\nfirst\n\n# Two\n\nsecond\n"})

	_, err := runCLI(t, a, "index", "--no-progress", dir)
	require.NoError(t, err)
	_, err = runCLI(t, a, "index", "--no-progress", dir)
	require.NoError(t, err)

	out, err := runCLI(t, a, "stats", "--json")
	require.NoError(t, err)
	stats := statsOf(t, out)
	assert.Equal(t, 2, stats.Records)
	assert.Equal(t, 1, stats.Sources)
}

func TestIndexCmd_MissingPath(t *testing.T) {
	_, err := runCLI(t, newTestApp(t), "index", filepath.Join(t.TempDir(), "missing"))

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDescribeCmd(t *testing.T) {
	a := newTestApp(t)
	dir := writeFiles(t, map[string]string{
		"note.md": "# Trip\n\nPacking list #travel\n\n## Gear\n\ntent and stove\n",
	})

	out, err := runCLI(t, a, "describe", "--chunks", filepath.Join(dir, "note.md"))
	require.NoError(t, err)

	assert.Contains(t, out, "Handler: markdown")
	assert.Contains(t, out, "Title:   Trip")
	assert.Contains(t, out, "travel")
	assert.Contains(t, out, "2 chunks:")

	out, err = runCLI(t, a, "stats", "--json")
	require.NoError(t, err)
	assert.Equal(t, 0, statsOf(t, out).Records, "describe never writes")
}

func TestDescribeCmd_Unsupported(t *testing.T) {
	dir := writeFiles(t, map[string]string{"blob.xyz": "data"})

	_, err := runCLI(t, newTestApp(t), "describe", filepath.Join(dir, "blob.xyz"))

	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}
