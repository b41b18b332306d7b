package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/nova/internal/core/domain"
)

// setupTestIndex creates a SQLite vector index in a temporary directory.
func setupTestIndex(t *testing.T) (*VectorIndex, string) {
	t.Helper()

	dir := t.TempDir()
	idx, err := NewVectorIndex(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	return idx, dir
}

func record(id, source string, vec ...float32) domain.IndexedRecord {
	return domain.IndexedRecord{
		ID:     id,
		Vector: vec,
		Metadata: map[string]string{
			domain.MetaSource:  source,
			domain.MetaHeading: "Heading " + id,
			domain.MetaContent: "content " + id,
		},
	}
}

func TestNewVectorIndex_CreatesDatabase(t *testing.T) {
	idx, dir := setupTestIndex(t)

	assert.Equal(t, filepath.Join(dir, DatabaseFile), idx.Path())
	_, err := os.Stat(idx.Path())
	assert.NoError(t, err)

	var version int
	require.NoError(t, idx.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version))
	assert.Equal(t, 1, version)
}

func TestNewVectorIndex_RequiresDirectory(t *testing.T) {
	_, err := NewVectorIndex("")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNewVectorIndex_Unwritable(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o600))

	_, err := NewVectorIndex(filepath.Join(file, "store"))
	assert.ErrorIs(t, err, domain.ErrStoreIO)
}

func TestOpenVectorIndex_MissingStore(t *testing.T) {
	t.Run("missing directory is not created", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "typo")

		_, err := OpenVectorIndex(dir)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.NoDirExists(t, dir)
	})

	t.Run("empty directory gets no database", func(t *testing.T) {
		dir := t.TempDir()

		_, err := OpenVectorIndex(dir)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.NoFileExists(t, filepath.Join(dir, DatabaseFile))
	})

	t.Run("directory is required", func(t *testing.T) {
		_, err := OpenVectorIndex("")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestOpenVectorIndex_ExistingStore(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	idx, err := NewVectorIndex(dir)
	require.NoError(t, err)
	require.NoError(t, idx.Upsert(ctx, []domain.IndexedRecord{record("a", "one.md", 1, 0)}))
	require.NoError(t, idx.Close())

	idx, err = OpenVectorIndex(dir)
	require.NoError(t, err)
	defer idx.Close()

	records, _, err := idx.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, records)
}

func TestVectorIndex_Reopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	idx, err := NewVectorIndex(dir)
	require.NoError(t, err)
	require.NoError(t, idx.Upsert(ctx, []domain.IndexedRecord{record("a", "one.md", 1, 0)}))
	require.NoError(t, idx.Close())

	idx, err = NewVectorIndex(dir)
	require.NoError(t, err)
	defer idx.Close()

	got, err := idx.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0}, got.Vector)
	assert.Equal(t, "Heading a", got.Metadata[domain.MetaHeading])
}

func TestVectorIndex_UpsertReplaces(t *testing.T) {
	idx, _ := setupTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, []domain.IndexedRecord{record("a", "one.md", 1, 0)}))
	require.NoError(t, idx.Upsert(ctx, []domain.IndexedRecord{record("a", "two.md", 0, 1)}))

	records, sources, err := idx.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, records)
	assert.Equal(t, 1, sources)

	got, err := idx.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1}, got.Vector)
	assert.Equal(t, "two.md", got.Metadata[domain.MetaSource])
}

func TestVectorIndex_Query(t *testing.T) {
	idx, _ := setupTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, []domain.IndexedRecord{
		record("north", "a.md", 0, 1),
		record("east", "a.md", 1, 0),
		record("northeast", "b.md", 1, 1),
	}))

	hits, err := idx.Query(ctx, []float32{1, 0.1}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "east", hits[0].ID)
	assert.Equal(t, "northeast", hits[1].ID)
	assert.Less(t, hits[0].Distance, hits[1].Distance)
	assert.Equal(t, "content east", hits[0].Metadata[domain.MetaContent])
}

func TestVectorIndex_QueryEmpty(t *testing.T) {
	idx, _ := setupTestIndex(t)

	hits, err := idx.Query(context.Background(), []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestVectorIndex_QueryDimensionMismatch(t *testing.T) {
	idx, _ := setupTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, []domain.IndexedRecord{record("a", "a.md", 1, 0, 0)}))
	_, err := idx.Query(ctx, []float32{1, 0}, 5)
	assert.ErrorIs(t, err, domain.ErrStoreIO)
}

func TestVectorIndex_DeleteAndIDs(t *testing.T) {
	idx, _ := setupTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, []domain.IndexedRecord{
		record("b", "one.md", 1),
		record("a", "one.md", 1),
		record("c", "two.md", 1),
	}))

	ids, err := idx.IDs(ctx, "one.md")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)

	require.NoError(t, idx.Delete(ctx, "a"))
	assert.ErrorIs(t, idx.Delete(ctx, "a"), domain.ErrNotFound)

	ids, err = idx.IDs(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, ids)

	_, err = idx.Get(ctx, "a")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestVectorIndex_ClosedIsStoreIO(t *testing.T) {
	idx, err := NewVectorIndex(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, idx.Close())

	_, err = idx.Query(context.Background(), []float32{1}, 1)
	assert.ErrorIs(t, err, domain.ErrStoreIO)
}

func TestFloat32Conversion(t *testing.T) {
	in := []float32{0, -1.5, 3.25, 1e-7}
	assert.Equal(t, in, bytesToFloat32Slice(float32SliceToBytes(in)))
	assert.Nil(t, bytesToFloat32Slice(nil))
}
