package db

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T, opts ...Option) *DB {
	t.Helper()

	d, err := Open(context.Background(), MemoryPath, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	return d
}

func countRows(t *testing.T, d *DB, table string) int {
	t.Helper()

	var n int
	_, err := d.Prepare("SELECT COUNT(*) FROM " + table).Get(context.Background(), &n)
	require.NoError(t, err)
	return n
}

func insertClinician(ctx context.Context, d *DB, id string) error {
	_, err := d.Prepare(`INSERT INTO clinicians
		(id, name, profession, npi, primary_license_state, primary_license_number, email, phone, created_at)
		VALUES (?, 'n', 'RN', '1', 'TX', '1', 'a@b.c', '1', ?)`).Run(ctx, id, d.Now())
	return err
}

func TestSelectDriver(t *testing.T) {
	name, err := selectDriver([]string{"postgres", "sqlite3", "sqlite"})
	require.NoError(t, err)
	assert.Equal(t, "sqlite", name)

	name, err = selectDriver([]string{"sqlite3"})
	require.NoError(t, err)
	assert.Equal(t, "sqlite3", name)

	_, err = selectDriver([]string{"postgres"})
	assert.Error(t, err)
}

func TestOpenSeedsDefaultTemplateOnce(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "credentialing.sqlite")

	d, err := Open(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", d.Driver())
	assert.Equal(t, 1, countRows(t, d, "facility_templates"))

	var name string
	_, err = d.Prepare("SELECT name FROM facility_templates LIMIT 1").Get(ctx, &name)
	require.NoError(t, err)
	assert.Equal(t, "General Hospital TX", name)
	require.NoError(t, d.Close())

	d, err = Open(ctx, path)
	require.NoError(t, err)
	defer d.Close()
	assert.Equal(t, 1, countRows(t, d, "facility_templates"))
}

func TestOpenWrapsInitializationErrors(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	_, err := Open(context.Background(), filepath.Join(blocker, "sub", "db.sqlite"))
	require.Error(t, err)

	var dbErr *DatabaseError
	require.True(t, errors.As(err, &dbErr))
	assert.Equal(t, "create directory", dbErr.Op)
}

func TestCloseIsIdempotent(t *testing.T) {
	d, err := Open(context.Background(), MemoryPath)
	require.NoError(t, err)
	assert.NoError(t, d.Close())
	assert.NoError(t, d.Close())
}

func TestForeignKeysEnforced(t *testing.T) {
	d := openMemory(t)

	_, err := d.Prepare(`INSERT INTO documents (id, case_id, doc_type, status, created_at, updated_at)
		VALUES ('d1', 'missing-case', 'rn_license', 'pending', 'x', 'x')`).Run(context.Background())
	assert.Error(t, err)
}

func TestTransaction(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")

	t.Run("commit", func(t *testing.T) {
		d := openMemory(t)
		err := d.Transaction(ctx, func(ctx context.Context) error {
			assert.Equal(t, 1, d.Depth(ctx))
			return insertClinician(ctx, d, "c1")
		})
		require.NoError(t, err)
		assert.Equal(t, 1, countRows(t, d, "clinicians"))
		assert.Equal(t, 0, d.Depth(ctx))
	})

	t.Run("outer rollback discards everything", func(t *testing.T) {
		d := openMemory(t)
		err := d.Transaction(ctx, func(ctx context.Context) error {
			require.NoError(t, insertClinician(ctx, d, "c1"))
			require.NoError(t, d.Transaction(ctx, func(ctx context.Context) error {
				return insertClinician(ctx, d, "c2")
			}))
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 0, countRows(t, d, "clinicians"))
	})

	t.Run("nested failure rolls back only its savepoint", func(t *testing.T) {
		d := openMemory(t)
		err := d.Transaction(ctx, func(ctx context.Context) error {
			require.NoError(t, insertClinician(ctx, d, "c1"))

			inner := d.Transaction(ctx, func(ctx context.Context) error {
				assert.Equal(t, 2, d.Depth(ctx))
				require.NoError(t, insertClinician(ctx, d, "c2"))
				return boom
			})
			assert.ErrorIs(t, inner, boom)

			return insertClinician(ctx, d, "c3")
		})
		require.NoError(t, err)
		assert.Equal(t, 2, countRows(t, d, "clinicians"))

		var ids []string
		require.NoError(t, d.Prepare("SELECT id FROM clinicians ORDER BY id").All(ctx, &ids))
		assert.Equal(t, []string{"c1", "c3"}, ids)
	})

	t.Run("panic rolls back", func(t *testing.T) {
		d := openMemory(t)
		assert.Panics(t, func() {
			_ = d.Transaction(ctx, func(ctx context.Context) error {
				require.NoError(t, insertClinician(ctx, d, "c1"))
				panic("kaboom")
			})
		})
		assert.Equal(t, 0, countRows(t, d, "clinicians"))
	})
}

func TestNowIsStrictlyIncreasing(t *testing.T) {
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	d := openMemory(t, WithClock(func() time.Time { return fixed }))

	first := d.Now()
	second := d.Now()
	assert.True(t, second.After(first.Time))
	assert.Equal(t, time.Microsecond, second.Sub(first.Time))
}

func TestStatementGetReportsMissingRows(t *testing.T) {
	d := openMemory(t)

	var id string
	found, err := d.Prepare("SELECT id FROM clinicians WHERE id = ?").Get(context.Background(), &id, "nope")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestReadsWaitForOpenTransaction(t *testing.T) {
	ctx := context.Background()
	d := openMemory(t)
	abort := errors.New("abort")

	inserted := make(chan struct{})
	release := make(chan struct{})
	txDone := make(chan error, 1)
	go func() {
		txDone <- d.Transaction(ctx, func(ctx context.Context) error {
			err := insertClinician(ctx, d, "c1")
			close(inserted)
			if err != nil {
				return err
			}
			<-release
			return abort
		})
	}()
	<-inserted

	read := make(chan []string, 1)
	go func() {
		var ids []string
		_ = d.Prepare("SELECT id FROM clinicians").All(ctx, &ids)
		read <- ids
	}()

	select {
	case ids := <-read:
		t.Fatalf("read ran inside another transaction and saw %v", ids)
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	assert.ErrorIs(t, <-txDone, abort)
	assert.Empty(t, <-read)
}
