package installed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/brightstudy/internal/client/models"
	"github.com/dmitrijs2005/brightstudy/internal/common"
	"github.com/dmitrijs2005/brightstudy/internal/dbx"
)

type SQLiteRepository struct {
	db  dbx.DBTX
	now func() time.Time
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

func (r *SQLiteRepository) GetVersion(ctx context.Context, id string, kind models.Kind) (int64, bool, error) {
	var version int64
	err := r.db.QueryRowContext(ctx,
		`SELECT version FROM installed_content WHERE content_id = ? AND type = ?`,
		id, string(kind)).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("%w: failed to get installed version[%s/%s]: %v", common.ErrPersistence, kind, id, err)
	}
	return version, true, nil
}

func (r *SQLiteRepository) SetVersion(ctx context.Context, id string, kind models.Kind, version int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO installed_content (content_id, type, version, installed_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(content_id, type) DO UPDATE SET
			version = excluded.version,
			installed_at = excluded.installed_at
	`, id, string(kind), version, r.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("%w: failed to set installed version[%s/%s]: %v", common.ErrPersistence, kind, id, err)
	}
	return nil
}

func (r *SQLiteRepository) All(ctx context.Context) ([]*models.InstalledRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT content_id, type, version, installed_at FROM installed_content ORDER BY type, content_id`)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list installed content: %v", common.ErrPersistence, err)
	}
	defer rows.Close()

	result := make([]*models.InstalledRecord, 0)
	for rows.Next() {
		var (
			rec         models.InstalledRecord
			kind, stamp string
		)
		if err := rows.Scan(&rec.ContentID, &kind, &rec.Version, &stamp); err != nil {
			return nil, fmt.Errorf("%w: failed to scan installed row: %v", common.ErrPersistence, err)
		}
		rec.Kind = models.Kind(kind)
		rec.InstalledAt = parseStamp(stamp)
		result = append(result, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to iterate installed rows: %v", common.ErrPersistence, err)
	}

	return result, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string, kind models.Kind) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM installed_content WHERE content_id = ? AND type = ?`, id, string(kind))
	if err != nil {
		return fmt.Errorf("%w: failed to delete installed[%s/%s]: %v", common.ErrPersistence, kind, id, err)
	}
	return nil
}

// parseStamp tolerates rows written by older tools that stored no timestamp.
func parseStamp(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.000Z", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
