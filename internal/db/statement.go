package db

import (
	"context"
	"database/sql"

	"github.com/georgysavva/scany/v2/sqlscan"
)

// Statement is a reusable query bound to a DB. Scanning goes through scany so
// destination structs only need db tags.
type Statement struct {
	db    *DB
	query string
}

func (d *DB) Prepare(query string) *Statement {
	return &Statement{db: d, query: query}
}

// All scans every row into dst, a pointer to a slice. The connection stays
// locked until the rows are drained.
func (s *Statement) All(ctx context.Context, dst any, args ...any) error {
	unlock := s.db.acquire(ctx)
	defer unlock()

	return sqlscan.Select(ctx, s.db.conn, dst, s.query, args...)
}

// Get scans the first row into dst. It reports false when there are no rows.
func (s *Statement) Get(ctx context.Context, dst any, args ...any) (bool, error) {
	unlock := s.db.acquire(ctx)
	defer unlock()

	err := sqlscan.Get(ctx, s.db.conn, dst, s.query, args...)
	if err != nil {
		if sqlscan.NotFound(err) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

func (s *Statement) Run(ctx context.Context, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, s.query, args...)
}
