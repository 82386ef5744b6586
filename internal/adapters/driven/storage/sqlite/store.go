package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/artid/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/artid/internal/core/domain"
	"github.com/custodia-labs/artid/internal/core/ports/driven"
)

// timeFormat is fixed-width so stored timestamps sort lexically.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// Store is a unified SQLite-based storage that provides access to
// all store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.artid/data/artid.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".artid", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "artid.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
		now:  time.Now,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// CatalogStore returns a CatalogStore interface backed by this store.
func (s *Store) CatalogStore() driven.CatalogStore {
	return &catalogStore{store: s}
}

// CollectionStore returns a CollectionStore interface backed by this store.
func (s *Store) CollectionStore() driven.CollectionStore {
	return &collectionStore{store: s}
}

// QuotaGate returns a daily QuotaGate allowing limit recognitions per user.
// A limit of zero or less disables the gate.
func (s *Store) QuotaGate(limit int) driven.QuotaGate {
	return &quotaGate{store: s, limit: limit}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Catalog Store ====================

// catalogStore implements driven.CatalogStore.
type catalogStore struct {
	store *Store
}

var _ driven.CatalogStore = (*catalogStore)(nil)

// FindAllCandidates returns every entry in insertion order.
// Translations travel with each entry so the matcher can pick the language.
func (s *catalogStore) FindAllCandidates(ctx context.Context, _ string) ([]domain.CatalogEntry, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, title, artist_name, category, translations
		FROM catalog_entries ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("querying catalog: %w", err)
	}
	defer rows.Close()

	var entries []domain.CatalogEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating catalog: %w", err)
	}
	return entries, nil
}

// FindByID retrieves an entry by ID.
func (s *catalogStore) FindByID(ctx context.Context, id string) (*domain.CatalogEntry, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, title, artist_name, category, translations
		FROM catalog_entries WHERE id = ?
	`, id)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return entry, err
}

// Save stores or updates an entry, keeping its original position.
func (s *catalogStore) Save(ctx context.Context, entry domain.CatalogEntry) error {
	translations := entry.Translations
	if translations == nil {
		translations = map[string]domain.LocalizedFields{}
	}
	translationsJSON, err := json.Marshal(translations)
	if err != nil {
		return fmt.Errorf("marshalling translations: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO catalog_entries (id, title, artist_name, category, translations)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			artist_name = excluded.artist_name,
			category = excluded.category,
			translations = excluded.translations
	`, entry.ID, entry.Title, entry.ArtistName, entry.Category, string(translationsJSON))
	if err != nil {
		return fmt.Errorf("saving catalog entry: %w", err)
	}
	return nil
}

// Count returns the number of entries.
func (s *catalogStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM catalog_entries").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting catalog: %w", err)
	}
	return n, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*domain.CatalogEntry, error) {
	var entry domain.CatalogEntry
	var translationsJSON string
	if err := row.Scan(&entry.ID, &entry.Title, &entry.ArtistName, &entry.Category, &translationsJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning catalog entry: %w", err)
	}
	if err := json.Unmarshal([]byte(translationsJSON), &entry.Translations); err != nil {
		return nil, fmt.Errorf("unmarshaling translations: %w", err)
	}
	if len(entry.Translations) == 0 {
		entry.Translations = nil
	}
	return &entry, nil
}

// ==================== Collection Store ====================

// collectionStore implements driven.CollectionStore.
type collectionStore struct {
	store *Store
}

var _ driven.CollectionStore = (*collectionStore)(nil)

// CreateCollectionItem stores a new item with a fresh ID.
func (s *collectionStore) CreateCollectionItem(
	ctx context.Context, userID string, catalogEntryID *string, snapshot domain.Snapshot,
) (*domain.CollectionItem, error) {
	snapshotJSON, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("marshalling snapshot: %w", err)
	}

	item := domain.CollectionItem{
		ID:        uuid.New().String(),
		UserID:    userID,
		Snapshot:  snapshot,
		CreatedAt: s.store.now().UTC(),
	}
	var entryID sql.NullString
	if catalogEntryID != nil {
		id := *catalogEntryID
		item.CatalogEntryID = &id
		entryID = sql.NullString{String: id, Valid: true}
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO collection_items (id, user_id, catalog_entry_id, snapshot, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, item.ID, item.UserID, entryID, string(snapshotJSON), item.CreatedAt.Format(timeFormat))
	if err != nil {
		return nil, fmt.Errorf("saving collection item: %w", err)
	}
	return &item, nil
}

// ListByUser returns a user's items, newest first.
func (s *collectionStore) ListByUser(ctx context.Context, userID string) ([]domain.CollectionItem, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, user_id, catalog_entry_id, snapshot, created_at
		FROM collection_items WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying collection: %w", err)
	}
	defer rows.Close()

	items := make([]domain.CollectionItem, 0)
	for rows.Next() {
		var item domain.CollectionItem
		var entryID sql.NullString
		var snapshotJSON, createdAt string
		if err := rows.Scan(&item.ID, &item.UserID, &entryID, &snapshotJSON, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning collection item: %w", err)
		}
		if entryID.Valid {
			id := entryID.String
			item.CatalogEntryID = &id
		}
		if err := json.Unmarshal([]byte(snapshotJSON), &item.Snapshot); err != nil {
			return nil, fmt.Errorf("unmarshaling snapshot: %w", err)
		}
		if item.CreatedAt, err = time.Parse(timeFormat, createdAt); err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating collection: %w", err)
	}
	return items, nil
}

// ==================== Quota Gate ====================

// quotaGate implements driven.QuotaGate with one counter row per user per UTC day.
type quotaGate struct {
	store *Store
	limit int
}

var _ driven.QuotaGate = (*quotaGate)(nil)

// Check returns domain.ErrQuotaExceeded when the user's count is at the limit.
func (q *quotaGate) Check(ctx context.Context, userID string) error {
	if q.limit <= 0 {
		return nil
	}
	var count int
	err := q.store.db.QueryRowContext(ctx,
		"SELECT count FROM quota_usage WHERE user_id = ? AND day = ?",
		userID, q.day(),
	).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading quota: %w", err)
	}
	if count >= q.limit {
		return domain.ErrQuotaExceeded
	}
	return nil
}

// Increment records one recognition for the user today.
func (q *quotaGate) Increment(ctx context.Context, userID string) error {
	_, err := q.store.db.ExecContext(ctx, `
		INSERT INTO quota_usage (user_id, day, count) VALUES (?, ?, 1)
		ON CONFLICT(user_id, day) DO UPDATE SET count = count + 1
	`, userID, q.day())
	if err != nil {
		return fmt.Errorf("incrementing quota: %w", err)
	}
	return nil
}

func (q *quotaGate) day() string {
	return q.store.now().UTC().Format(time.DateOnly)
}
