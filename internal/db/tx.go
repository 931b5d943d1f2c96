package db

import (
	"context"
	"errors"
	"fmt"
)

type txKey struct{}

// InTransaction reports whether ctx was issued by Transaction on this DB.
func (d *DB) InTransaction(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*DB)
	return owner == d
}

// Transaction runs fn atomically. The outermost call issues BEGIN and
// COMMIT/ROLLBACK; a call made with a context already inside a transaction
// issues SAVEPOINT/RELEASE instead, and a failure there rolls back only that
// savepoint. fn must use the context it is given for every statement.
func (d *DB) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if d.InTransaction(ctx) {
		return d.savepoint(ctx, fn)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, err := d.conn.ExecContext(ctx, "BEGIN IMMEDIATE"); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	d.depth = 1
	defer func() { d.depth = 0 }()

	txCtx := context.WithValue(ctx, txKey{}, d)

	committed := false
	defer func() {
		if committed {
			return
		}
		if p := recover(); p != nil {
			_, _ = d.conn.ExecContext(context.WithoutCancel(ctx), "ROLLBACK")
			panic(p)
		}
	}()

	if err := fn(txCtx); err != nil {
		committed = true
		if _, rbErr := d.conn.ExecContext(context.WithoutCancel(ctx), "ROLLBACK"); rbErr != nil {
			return errors.Join(err, fmt.Errorf("failed to rollback transaction: %w", rbErr))
		}
		return err
	}

	committed = true
	if _, err := d.conn.ExecContext(ctx, "COMMIT"); err != nil {
		_, _ = d.conn.ExecContext(context.WithoutCancel(ctx), "ROLLBACK")
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Depth is the current nesting level, zero outside a transaction.
func (d *DB) Depth(ctx context.Context) int {
	if !d.InTransaction(ctx) {
		return 0
	}
	return d.depth
}

func (d *DB) savepoint(ctx context.Context, fn func(ctx context.Context) error) error {
	d.depth++
	name := fmt.Sprintf("sp_%d", d.depth)
	defer func() { d.depth-- }()

	if _, err := d.conn.ExecContext(ctx, "SAVEPOINT "+name); err != nil {
		return fmt.Errorf("failed to create savepoint %s: %w", name, err)
	}

	done := false
	defer func() {
		if done {
			return
		}
		if p := recover(); p != nil {
			d.rollbackTo(ctx, name)
			panic(p)
		}
	}()

	if err := fn(ctx); err != nil {
		done = true
		if rbErr := d.rollbackTo(ctx, name); rbErr != nil {
			return errors.Join(err, rbErr)
		}
		return err
	}

	done = true
	if _, err := d.conn.ExecContext(ctx, "RELEASE SAVEPOINT "+name); err != nil {
		return fmt.Errorf("failed to release savepoint %s: %w", name, err)
	}

	return nil
}

func (d *DB) rollbackTo(ctx context.Context, name string) error {
	ctx = context.WithoutCancel(ctx)
	if _, err := d.conn.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+name); err != nil {
		return fmt.Errorf("failed to rollback to savepoint %s: %w", name, err)
	}
	if _, err := d.conn.ExecContext(ctx, "RELEASE SAVEPOINT "+name); err != nil {
		return fmt.Errorf("failed to release savepoint %s: %w", name, err)
	}
	return nil
}
