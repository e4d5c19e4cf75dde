package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Asset kinds.
const (
	KindFavicon = "favicon"
	KindICO     = "ico"
	KindQR      = "qrcode"
)

// Asset is one generated file recorded in the manifest.
type Asset struct {
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	Variant     string `json:"variant"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Bytes       int64  `json:"bytes"`
	SHA256      string `json:"sha256"`
	GeneratedAt int64  `json:"generated_at"`
}

// ManifestStore keeps track of generated assets in SQLite.
type ManifestStore struct {
	db *sql.DB
}

const createAssetsTable = `
CREATE TABLE IF NOT EXISTS assets (
    name TEXT PRIMARY KEY,
    kind TEXT NOT NULL,
    variant TEXT NOT NULL DEFAULT '',
    width INTEGER NOT NULL,
    height INTEGER NOT NULL,
    bytes INTEGER NOT NULL,
    sha256 TEXT NOT NULL,
    generated_at INTEGER NOT NULL
);
`

const createIndexes = `
CREATE INDEX IF NOT EXISTS idx_assets_kind ON assets(kind);
`

// NewManifestStore opens (or creates) the SQLite database at dbPath and
// initialises the schema.
func NewManifestStore(dbPath string) (*ManifestStore, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	for _, stmt := range []string{createAssetsTable, createIndexes} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec schema statement: %w", err)
		}
	}

	return &ManifestStore{db: db}, nil
}

// Record inserts an asset, replacing any earlier entry with the same name.
func (s *ManifestStore) Record(a *Asset) error {
	const query = `
		INSERT INTO assets (name, kind, variant, width, height, bytes, sha256, generated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			kind = excluded.kind,
			variant = excluded.variant,
			width = excluded.width,
			height = excluded.height,
			bytes = excluded.bytes,
			sha256 = excluded.sha256,
			generated_at = excluded.generated_at
	`
	_, err := s.db.Exec(query,
		a.Name, a.Kind, a.Variant, a.Width, a.Height, a.Bytes, a.SHA256, a.GeneratedAt,
	)
	if err != nil {
		return fmt.Errorf("record asset %s: %w", a.Name, err)
	}
	return nil
}

// List returns recorded assets ordered by name. An empty kind lists all.
func (s *ManifestStore) List(kind string) ([]Asset, error) {
	const query = `
		SELECT name, kind, variant, width, height, bytes, sha256, generated_at
		FROM assets
		WHERE ? = '' OR kind = ?
		ORDER BY name
	`
	rows, err := s.db.Query(query, kind, kind)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	var assets []Asset
	for rows.Next() {
		var a Asset
		if err := rows.Scan(&a.Name, &a.Kind, &a.Variant, &a.Width, &a.Height, &a.Bytes, &a.SHA256, &a.GeneratedAt); err != nil {
			return nil, fmt.Errorf("scan asset row: %w", err)
		}
		assets = append(assets, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate asset rows: %w", err)
	}
	return assets, nil
}

// Get returns the asset named name. The bool is false when it is unknown.
func (s *ManifestStore) Get(name string) (Asset, bool, error) {
	const query = `
		SELECT name, kind, variant, width, height, bytes, sha256, generated_at
		FROM assets WHERE name = ?
	`
	var a Asset
	err := s.db.QueryRow(query, name).Scan(&a.Name, &a.Kind, &a.Variant, &a.Width, &a.Height, &a.Bytes, &a.SHA256, &a.GeneratedAt)
	if err == sql.ErrNoRows {
		return Asset{}, false, nil
	}
	if err != nil {
		return Asset{}, false, fmt.Errorf("get asset %s: %w", name, err)
	}
	return a, true, nil
}

// Count returns the number of recorded assets.
func (s *ManifestStore) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM assets`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count assets: %w", err)
	}
	return n, nil
}

// Close closes the underlying database connection.
func (s *ManifestStore) Close() error {
	return s.db.Close()
}
