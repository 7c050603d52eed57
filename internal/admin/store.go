// Package admin persists provider configuration and gates the admin HTTP
// surface. Grounded on the teacher's internal/admin: the same dual-dialect
// SQL persistence shape and bearer-auth middleware, repurposed from API-key
// management to provider-config management.
package admin

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/briefcasebrain/uir-gateway/provider"

	// Register Postgres SQL driver.
	_ "github.com/lib/pq"
	// Register SQLite SQL driver.
	_ "modernc.org/sqlite"
)

type sqlDialect string

const (
	dialectSQLite   sqlDialect = "sqlite"
	dialectPostgres sqlDialect = "postgres"
)

// Store persists provider configurations, encrypting credentials at rest.
type Store interface {
	Save(cfg provider.Config) error
	Get(name string) (provider.Config, bool, error)
	List() ([]provider.Config, error)
	Delete(name string) error
}

// SQLStore is a SQL-backed Store (SQLite or Postgres).
type SQLStore struct {
	db      *sql.DB
	dialect sqlDialect
	crypt   *Encryptor
}

// NewSQLiteStore opens a SQLite-backed provider config store. dsn can be a
// file path or a SQLite DSN; empty defaults to "uir-gateway-providers.db".
func NewSQLiteStore(dsn string, crypt *Encryptor) (*SQLStore, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		dsn = "uir-gateway-providers.db"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	store := &SQLStore{db: db, dialect: dialectSQLite, crypt: crypt}
	if err := store.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// NewPostgresStore opens a Postgres-backed provider config store.
func NewPostgresStore(dsn string, crypt *Encryptor) (*SQLStore, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn is required")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres store: %w", err)
	}
	store := &SQLStore{db: db, dialect: dialectPostgres, crypt: crypt}
	if err := store.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLStore) init() error {
	if err := s.db.Ping(); err != nil {
		return fmt.Errorf("ping %s store: %w", s.dialect, err)
	}

	ddl := `
CREATE TABLE IF NOT EXISTS provider_configs (
	name TEXT PRIMARY KEY,
	config TEXT NOT NULL,
	credentials BLOB,
	updated_at DATETIME NOT NULL
);`
	if s.dialect == dialectPostgres {
		ddl = `
CREATE TABLE IF NOT EXISTS provider_configs (
	name TEXT PRIMARY KEY,
	config TEXT NOT NULL,
	credentials BYTEA,
	updated_at TIMESTAMPTZ NOT NULL
);`
	}
	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("initialize %s store schema: %w", s.dialect, err)
	}
	return nil
}

// Save upserts cfg, encrypting cfg.Credentials if the store has an
// Encryptor; otherwise credentials are stored as plain JSON alongside the
// rest of the config (used only in tests with no EncryptionKey set).
func (s *SQLStore) Save(cfg provider.Config) error {
	var sealed []byte
	bare := cfg
	bare.Credentials = nil

	if s.crypt != nil {
		b, err := s.crypt.Seal(cfg.Credentials)
		if err != nil {
			return fmt.Errorf("seal credentials: %w", err)
		}
		sealed = b
	} else if len(cfg.Credentials) > 0 {
		b, err := json.Marshal(cfg.Credentials)
		if err != nil {
			return fmt.Errorf("encode credentials: %w", err)
		}
		sealed = b
	}

	configJSON, err := json.Marshal(bare)
	if err != nil {
		return fmt.Errorf("encode provider config: %w", err)
	}

	q := s.bind(`
INSERT INTO provider_configs(name, config, credentials, updated_at)
VALUES(?, ?, ?, ?)
ON CONFLICT(name) DO UPDATE SET config = excluded.config, credentials = excluded.credentials, updated_at = excluded.updated_at`)

	if _, err := s.db.Exec(q, cfg.Name, string(configJSON), sealed, time.Now().UTC()); err != nil {
		return fmt.Errorf("save provider config: %w", err)
	}
	return nil
}

// Get loads one provider config by name.
func (s *SQLStore) Get(name string) (provider.Config, bool, error) {
	q := s.bind(`SELECT config, credentials FROM provider_configs WHERE name = ?`)
	row := s.db.QueryRow(q, name)

	var configJSON string
	var sealed []byte
	if err := row.Scan(&configJSON, &sealed); err == sql.ErrNoRows {
		return provider.Config{}, false, nil
	} else if err != nil {
		return provider.Config{}, false, fmt.Errorf("load provider config: %w", err)
	}

	cfg, err := s.decode(configJSON, sealed)
	if err != nil {
		return provider.Config{}, false, err
	}
	return cfg, true, nil
}

// List loads every stored provider config.
func (s *SQLStore) List() ([]provider.Config, error) {
	rows, err := s.db.Query(`SELECT config, credentials FROM provider_configs ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list provider configs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	configs := make([]provider.Config, 0)
	for rows.Next() {
		var configJSON string
		var sealed []byte
		if err := rows.Scan(&configJSON, &sealed); err != nil {
			return nil, fmt.Errorf("scan provider config row: %w", err)
		}
		cfg, err := s.decode(configJSON, sealed)
		if err != nil {
			return nil, err
		}
		configs = append(configs, cfg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate provider configs: %w", err)
	}
	return configs, nil
}

// Delete removes a provider config by name. Deleting a name that doesn't
// exist is not an error.
func (s *SQLStore) Delete(name string) error {
	q := s.bind(`DELETE FROM provider_configs WHERE name = ?`)
	if _, err := s.db.Exec(q, name); err != nil {
		return fmt.Errorf("delete provider config: %w", err)
	}
	return nil
}

func (s *SQLStore) decode(configJSON string, sealed []byte) (provider.Config, error) {
	var cfg provider.Config
	if err := json.Unmarshal([]byte(configJSON), &cfg); err != nil {
		return provider.Config{}, fmt.Errorf("decode provider config: %w", err)
	}

	if len(sealed) == 0 {
		return cfg, nil
	}
	if s.crypt != nil {
		creds, err := s.crypt.Open(sealed)
		if err != nil {
			return provider.Config{}, fmt.Errorf("open credentials: %w", err)
		}
		cfg.Credentials = creds
		return cfg, nil
	}
	var creds map[string]string
	if err := json.Unmarshal(sealed, &creds); err != nil {
		return provider.Config{}, fmt.Errorf("decode credentials: %w", err)
	}
	cfg.Credentials = creds
	return cfg, nil
}

func (s *SQLStore) bind(query string) string {
	if s.dialect != dialectPostgres {
		return query
	}
	var (
		b      strings.Builder
		argNum = 1
	)
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			b.WriteString(fmt.Sprintf("$%d", argNum))
			argNum++
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// Close releases the underlying database handle.
func (s *SQLStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
