package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"credentialing/pkg/types"

	_ "modernc.org/sqlite"
)

const MemoryPath = ":memory:"

// preferredDrivers is probed in order against the registered database/sql
// drivers.
var preferredDrivers = []string{"sqlite", "sqlite3"}

// DB owns a single pinned connection to an embedded SQLite database. Every
// statement runs on that connection, so BEGIN and SAVEPOINT issued by
// Transaction apply to everything executed with the transaction's context.
type DB struct {
	pool   *sql.DB
	conn   *sql.Conn
	driver string
	path   string

	// mu is held for the lifetime of the outermost transaction.
	mu    sync.Mutex
	depth int

	clockMu sync.Mutex
	clock   func() time.Time
	last    time.Time

	closeOnce sync.Once
	closeErr  error
}

type Option func(*DB)

// WithClock replaces the wall clock used for record timestamps.
func WithClock(clock func() time.Time) Option {
	return func(d *DB) {
		d.clock = clock
	}
}

// Open connects to the database at path (":memory:" for an in-memory
// instance), enables foreign keys and WAL, applies the schema and seeds the
// default facility template on first initialization.
func Open(ctx context.Context, path string, opts ...Option) (*DB, error) {
	driver, err := selectDriver(sql.Drivers())
	if err != nil {
		return nil, &DatabaseError{Op: "probe driver", Err: err}
	}

	if path == "" {
		path = MemoryPath
	}

	if path != MemoryPath && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, &DatabaseError{Op: "create directory", Err: err}
		}
	}

	pool, err := sql.Open(driver, path)
	if err != nil {
		return nil, &DatabaseError{Op: "open", Err: err}
	}
	pool.SetMaxOpenConns(1)

	conn, err := pool.Conn(ctx)
	if err != nil {
		_ = pool.Close()
		return nil, &DatabaseError{Op: "connect", Err: err}
	}

	d := &DB{
		pool:   pool,
		conn:   conn,
		driver: driver,
		path:   path,
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}

	if err := d.initialize(ctx); err != nil {
		_ = d.Close()
		return nil, err
	}

	return d, nil
}

func selectDriver(available []string) (string, error) {
	registered := make(map[string]bool, len(available))
	for _, name := range available {
		registered[name] = true
	}

	for _, name := range preferredDrivers {
		if registered[name] {
			return name, nil
		}
	}

	return "", fmt.Errorf("no sqlite driver registered (tried %s)", strings.Join(preferredDrivers, ", "))
}

func (d *DB) initialize(ctx context.Context) error {
	if _, err := d.conn.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		return &DatabaseError{Op: "enable foreign keys", Err: err}
	}

	var journalMode string
	if err := d.conn.QueryRowContext(ctx, "PRAGMA journal_mode = WAL").Scan(&journalMode); err != nil {
		return &DatabaseError{Op: "enable wal", Err: err}
	}

	for _, stmt := range schemaStatements {
		if _, err := d.conn.ExecContext(ctx, stmt); err != nil {
			return &DatabaseError{Op: "apply schema", Err: err}
		}
	}

	if err := d.seed(ctx); err != nil {
		return &DatabaseError{Op: "seed", Err: err}
	}

	return nil
}

func (d *DB) Driver() string {
	return d.driver
}

func (d *DB) Path() string {
	return d.path
}

// Now returns a strictly increasing timestamp so that creation order is
// preserved by "latest" queries even within one clock tick.
func (d *DB) Now() types.Timestamp {
	d.clockMu.Lock()
	defer d.clockMu.Unlock()

	now := d.clock().UTC().Truncate(time.Microsecond)
	if !now.After(d.last) {
		now = d.last.Add(time.Microsecond)
	}
	d.last = now

	return types.Timestamp{Time: now}
}

// ExecContext runs a statement outside any prepared helper. It waits for an
// open transaction unless ctx belongs to it.
func (d *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	unlock := d.acquire(ctx)
	defer unlock()

	return d.conn.ExecContext(ctx, query, args...)
}

// Exec runs raw SQL, typically DDL.
func (d *DB) Exec(ctx context.Context, query string) error {
	_, err := d.ExecContext(ctx, query)
	return err
}

func (d *DB) acquire(ctx context.Context) func() {
	if d.InTransaction(ctx) {
		return func() {}
	}

	d.mu.Lock()
	return d.mu.Unlock
}

// Close releases the connection. Errors are wrapped, never swallowed, and
// repeated calls return the first result.
func (d *DB) Close() error {
	d.closeOnce.Do(func() {
		var errs []error
		if d.conn != nil {
			if err := d.conn.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		if err := d.pool.Close(); err != nil {
			errs = append(errs, err)
		}
		if len(errs) > 0 {
			d.closeErr = &DatabaseError{Op: "close", Err: errors.Join(errs...)}
		}
	})

	return d.closeErr
}
