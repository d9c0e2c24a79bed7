package storage

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"
	"github.com/qubitlabs/mediakeeper/internal/dbx"
	"github.com/qubitlabs/mediakeeper/internal/logging"
	"github.com/qubitlabs/mediakeeper/internal/models"
	"github.com/qubitlabs/mediakeeper/internal/storage/migrations"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

func init() {
	RegisterFactory("sqlite", OpenSQLiteBackend)
}

// sqliteConns memoizes open database handles per DSN so the open/migrate
// handshake runs once per process and every caller shares one connection.
var sqliteConns = struct {
	mu    sync.Mutex
	conns map[string]*SQLiteBackend
}{
	conns: map[string]*SQLiteBackend{},
}

// SQLiteBackend is the embedded structured store. Array-shaped values are
// stored natively: each element becomes a row in collection_items,
// replaced wholesale on every write. Other values fall back to a single
// blob in the records table.
type SQLiteBackend struct {
	db  *sql.DB
	log logging.Logger
}

// OpenSQLiteBackend opens (or reuses) the database at dsn and applies the
// embedded migrations. The handshake is memoized process-wide.
func OpenSQLiteBackend(dsn string, log logging.Logger) (Backend, error) {
	sqliteConns.mu.Lock()
	defer sqliteConns.mu.Unlock()

	if b, ok := sqliteConns.conns[dsn]; ok {
		return b, nil
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dsn, err)
	}
	// modernc.org/sqlite serializes writes; a single connection avoids
	// SQLITE_BUSY under concurrent use.
	db.SetMaxOpenConns(1)

	if err := runMigrations(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate sqlite %s: %w", dsn, err)
	}

	b := &SQLiteBackend{db: db, log: log}
	sqliteConns.conns[dsn] = b
	return b, nil
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

func (s *SQLiteBackend) Name() string { return "sqlite" }

func (s *SQLiteBackend) Read(ctx context.Context, key string) (*models.StampedRecord, error) {
	var (
		value   []byte
		ts      int64
		writer  string
		isArray bool
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT value, timestamp, writer, is_array FROM records WHERE key = ?`, key).
		Scan(&value, &ts, &writer, &isArray)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select record %s: %w", key, err)
	}

	rec := &models.StampedRecord{Timestamp: ts, Writer: writer}
	if !isArray {
		if !json.Valid(value) {
			s.log.Warn(ctx, "discarding corrupt record", "backend", s.Name(), "key", key)
			return nil, nil
		}
		rec.Value = value
		return rec, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM collection_items WHERE key = ? ORDER BY pos`, key)
	if err != nil {
		return nil, fmt.Errorf("select items %s: %w", key, err)
	}
	defer rows.Close()

	var elems []json.RawMessage
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan item %s: %w", key, err)
		}
		elems = append(elems, payload)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items %s: %w", key, err)
	}

	rec.Value = assembleArray(elems)
	return rec, nil
}

// Write replaces the record and, for array payloads, all of its element
// rows inside one transaction.
func (s *SQLiteBackend) Write(ctx context.Context, key string, rec *models.StampedRecord) error {
	elems, isArray := splitArray(rec.Value)

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var blob []byte
		if !isArray {
			blob = rec.Value
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO records (key, value, timestamp, writer, is_array) VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value,
				timestamp = excluded.timestamp,
				writer = excluded.writer,
				is_array = excluded.is_array
		`, key, blob, rec.Timestamp, rec.Writer, isArray)
		if err != nil {
			return fmt.Errorf("upsert record %s: %w", key, err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM collection_items WHERE key = ?`, key); err != nil {
			return fmt.Errorf("clear items %s: %w", key, err)
		}
		if !isArray {
			return nil
		}
		for pos, elem := range elems {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO collection_items (key, pos, payload) VALUES (?, ?, ?)`,
				key, pos, []byte(elem))
			if err != nil {
				return fmt.Errorf("insert item %s[%d]: %w", key, pos, err)
			}
		}
		return nil
	})
}

func (s *SQLiteBackend) Close() error {
	sqliteConns.mu.Lock()
	defer sqliteConns.mu.Unlock()
	for dsn, b := range sqliteConns.conns {
		if b == s {
			delete(sqliteConns.conns, dsn)
		}
	}
	return s.db.Close()
}

// splitArray decomposes a JSON array into its raw elements. The second
// return is false when value is not an array.
func splitArray(value json.RawMessage) ([]json.RawMessage, bool) {
	trimmed := bytes.TrimSpace(value)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, false
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(trimmed, &elems); err != nil {
		return nil, false
	}
	return elems, true
}

func assembleArray(elems []json.RawMessage) json.RawMessage {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, e := range elems {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(e)
	}
	buf.WriteByte(']')
	return buf.Bytes()
}
