package credentials

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/trinhnguyen1810/stock-advisor-app/internal/client/repositories/metadata"
	"github.com/trinhnguyen1810/stock-advisor-app/internal/common"
	"github.com/trinhnguyen1810/stock-advisor-app/internal/dbx"
)

// Backend is durable credential storage. Load reports ok=false when no
// credential is stored.
type Backend interface {
	Load(ctx context.Context) (cred string, ok bool, err error)
	Save(ctx context.Context, cred string) error
	Clear(ctx context.Context) error
}

// SQLiteBackend keeps the credential and the time it was saved in the
// metadata table.
type SQLiteBackend struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteBackend(db *sql.DB) *SQLiteBackend {
	return &SQLiteBackend{db: db, now: time.Now}
}

func (b *SQLiteBackend) Load(ctx context.Context) (string, bool, error) {
	v, err := metadata.NewSQLiteRepository(b.db).Get(ctx, common.CredentialMetadataKey)
	if err != nil {
		return "", false, err
	}
	if len(v) == 0 {
		return "", false, nil
	}
	return string(v), true, nil
}

func (b *SQLiteBackend) Save(ctx context.Context, cred string) error {
	savedAt := b.now().UTC().Format(time.RFC3339)
	return dbx.WithTx(ctx, b.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, common.CredentialMetadataKey, []byte(cred)); err != nil {
			return err
		}
		return repo.Set(ctx, common.CredentialSavedAtMetadataKey, []byte(savedAt))
	})
}

func (b *SQLiteBackend) Clear(ctx context.Context) error {
	return metadata.NewSQLiteRepository(b.db).Delete(ctx,
		common.CredentialMetadataKey,
		common.CredentialSavedAtMetadataKey,
	)
}

// SavedAt returns when the current credential was written.
func (b *SQLiteBackend) SavedAt(ctx context.Context) (time.Time, bool, error) {
	v, err := metadata.NewSQLiteRepository(b.db).Get(ctx, common.CredentialSavedAtMetadataKey)
	if err != nil {
		return time.Time{}, false, err
	}
	if v == nil {
		return time.Time{}, false, nil
	}
	ts, err := time.Parse(time.RFC3339, string(v))
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse %s: %w", common.CredentialSavedAtMetadataKey, err)
	}
	return ts, true, nil
}

func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}
