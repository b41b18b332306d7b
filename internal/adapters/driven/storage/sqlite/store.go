package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/nova/internal/adapters/driven/storage/knn"
	"github.com/custodia-labs/nova/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/nova/internal/core/domain"
	"github.com/custodia-labs/nova/internal/core/ports/driven"
)

// DatabaseFile is the file name created inside the store directory.
const DatabaseFile = "vectors.db"

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// VectorIndex stores vectors in a SQLite database inside one directory.
type VectorIndex struct {
	db   *sql.DB
	path string
}

// NewVectorIndex opens (creating if needed) the index in dir.
func NewVectorIndex(dir string) (*VectorIndex, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: store directory is required", domain.ErrInvalidInput)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("%w: creating store directory: %w", domain.ErrStoreIO, err)
	}
	return open(filepath.Join(dir, DatabaseFile))
}

// OpenVectorIndex opens the index in dir without creating it. It returns
// domain.ErrNotFound when dir holds no database.
func OpenVectorIndex(dir string) (*VectorIndex, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: store directory is required", domain.ErrInvalidInput)
	}

	dbPath := filepath.Join(dir, DatabaseFile)
	info, err := os.Stat(dbPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("%w: no store at %s", domain.ErrNotFound, dir)
	case err != nil:
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreIO, err)
	case info.IsDir():
		return nil, fmt.Errorf("%w: %s is a directory", domain.ErrStoreIO, dbPath)
	}
	return open(dbPath)
}

func open(dbPath string) (*VectorIndex, error) {
	// WAL lets other processes read while this one writes.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %w", domain.ErrStoreIO, err)
	}

	v := &VectorIndex{db: db, path: dbPath}
	if err := v.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: running migrations: %w", domain.ErrStoreIO, err)
	}

	return v, nil
}

// Close closes the database connection.
func (v *VectorIndex) Close() error {
	return v.db.Close()
}

// Path returns the database file path.
func (v *VectorIndex) Path() string {
	return v.path
}

// migrate runs all pending migrations and records each applied version.
func (v *VectorIndex) migrate(fsys fs.FS) error {
	_, err := v.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := v.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_vectors.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		tx, err := v.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning migration %s: %w", name, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %s: %w", name, err)
		}
	}

	return nil
}

// Upsert writes every record in a single transaction.
func (v *VectorIndex) Upsert(ctx context.Context, records []domain.IndexedRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := v.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %w", domain.ErrStoreIO, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO vectors (id, source, dimensions, vector, metadata, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			source = excluded.source,
			dimensions = excluded.dimensions,
			vector = excluded.vector,
			metadata = excluded.metadata,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("%w: preparing statement: %w", domain.ErrStoreIO, err)
	}
	defer stmt.Close()

	for _, r := range records {
		metadataJSON, err := json.Marshal(r.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling metadata for %s: %w", r.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, r.ID, r.Metadata[domain.MetaSource], len(r.Vector),
			float32SliceToBytes(r.Vector), string(metadataJSON)); err != nil {
			return fmt.Errorf("%w: saving record %s: %w", domain.ErrStoreIO, r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing transaction: %w", domain.ErrStoreIO, err)
	}
	return nil
}

// Delete removes a record by id.
func (v *VectorIndex) Delete(ctx context.Context, id string) error {
	result, err := v.db.ExecContext(ctx, "DELETE FROM vectors WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("%w: deleting record: %w", domain.ErrStoreIO, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: deleting record: %w", domain.ErrStoreIO, err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Query scans every stored vector and keeps the k nearest.
func (v *VectorIndex) Query(ctx context.Context, vector []float32, k int) ([]driven.VectorHit, error) {
	rows, err := v.db.QueryContext(ctx, "SELECT id, vector, metadata FROM vectors")
	if err != nil {
		return nil, fmt.Errorf("%w: querying vectors: %w", domain.ErrStoreIO, err)
	}
	defer rows.Close()

	scan := knn.NewScanner(vector, k)
	for rows.Next() {
		var (
			id           string
			blob         []byte
			metadataJSON string
		)
		if err := rows.Scan(&id, &blob, &metadataJSON); err != nil {
			return nil, fmt.Errorf("%w: scanning vector: %w", domain.ErrStoreIO, err)
		}
		metadata, err := decodeMetadata(metadataJSON)
		if err != nil {
			return nil, fmt.Errorf("%w: record %s: %w", domain.ErrStoreIO, id, err)
		}
		if err := scan.Offer(id, bytesToFloat32Slice(blob), metadata); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating vectors: %w", domain.ErrStoreIO, err)
	}

	return scan.Hits(), nil
}

// Get retrieves a record by id.
func (v *VectorIndex) Get(ctx context.Context, id string) (*domain.IndexedRecord, error) {
	var (
		blob         []byte
		metadataJSON string
	)
	err := v.db.QueryRowContext(ctx, "SELECT vector, metadata FROM vectors WHERE id = ?", id).
		Scan(&blob, &metadataJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: getting record: %w", domain.ErrStoreIO, err)
	}

	metadata, err := decodeMetadata(metadataJSON)
	if err != nil {
		return nil, fmt.Errorf("%w: record %s: %w", domain.ErrStoreIO, id, err)
	}
	return &domain.IndexedRecord{ID: id, Vector: bytesToFloat32Slice(blob), Metadata: metadata}, nil
}

// IDs lists record ids in sorted order, optionally for one source.
func (v *VectorIndex) IDs(ctx context.Context, source string) ([]string, error) {
	query := "SELECT id FROM vectors ORDER BY id"
	var args []any
	if source != "" {
		query = "SELECT id FROM vectors WHERE source = ? ORDER BY id"
		args = append(args, source)
	}

	rows, err := v.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: listing ids: %w", domain.ErrStoreIO, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: scanning id: %w", domain.ErrStoreIO, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating ids: %w", domain.ErrStoreIO, err)
	}
	return ids, nil
}

// Stats counts records and distinct non-empty sources.
func (v *VectorIndex) Stats(ctx context.Context) (int, int, error) {
	var records, sources int
	err := v.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COUNT(DISTINCT NULLIF(source, '')) FROM vectors").Scan(&records, &sources)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: counting records: %w", domain.ErrStoreIO, err)
	}
	return records, sources, nil
}

func decodeMetadata(s string) (map[string]string, error) {
	if s == "" || s == "null" {
		return nil, nil
	}
	var m map[string]string
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, fmt.Errorf("unmarshalling metadata: %w", err)
	}
	return m, nil
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
