package metadata

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE metadata (key TEXT PRIMARY KEY, value BLOB NOT NULL)`)
	require.NoError(t, err)
	return db
}

func count(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM metadata`).Scan(&n))
	return n
}

func TestGetSet(t *testing.T) {
	ctx := context.Background()
	r := NewSQLiteRepository(openDB(t))

	v, err := r.Get(ctx, "access_token")
	require.NoError(t, err)
	assert.Nil(t, v, "missing key")

	require.NoError(t, r.Set(ctx, "access_token", []byte("first")))
	require.NoError(t, r.Set(ctx, "access_token", []byte("second")))

	v, err = r.Get(ctx, "access_token")
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), v)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		keys []string
		left int
	}{
		{"none", nil, 3},
		{"one", []string{"access_token"}, 2},
		{"several", []string{"access_token", "access_token_saved_at"}, 1},
		{"missing keys are ignored", []string{"nope", "access_token"}, 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			db := openDB(t)
			r := NewSQLiteRepository(db)
			for _, k := range []string{"access_token", "access_token_saved_at", "other"} {
				require.NoError(t, r.Set(ctx, k, []byte("v")))
			}

			require.NoError(t, r.Delete(ctx, tc.keys...))
			assert.Equal(t, tc.left, count(t, db))
		})
	}
}

func TestSet_RolledBackWithTransaction(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, NewSQLiteRepository(tx).Set(ctx, "access_token", []byte("abc")))
	require.NoError(t, tx.Rollback())

	assert.Zero(t, count(t, db))
}

func TestErrorsNameTheKey(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	r := NewSQLiteRepository(db)
	require.NoError(t, db.Close())

	_, err := r.Get(ctx, "k")
	require.ErrorContains(t, err, `get metadata "k"`)

	err = r.Set(ctx, "k", []byte("v"))
	require.ErrorContains(t, err, `set metadata "k"`)

	err = r.Delete(ctx, "k", "j")
	require.ErrorContains(t, err, `delete metadata ["k" "j"]`)
}
