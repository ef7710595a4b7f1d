package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

func NewRepo(db *sql.DB) *Repo { return &Repo{db: db} }

// ThumbTouch records a cache hit, or a fresh download when created is
// set. created_at survives re-downloads of the same thumbnail.
func (r *Repo) ThumbTouch(ctx context.Context, videoID string, size int64, created bool) error {
	now := time.Now().Unix()
	if created {
		_, err := r.db.ExecContext(ctx,
			`INSERT OR REPLACE INTO thumb_cache(video_id,bytes,accessed_at,created_at)
			 VALUES (?,?,?,COALESCE((SELECT created_at FROM thumb_cache WHERE video_id=?),?))`,
			videoID, size, now, videoID, now)
		return err
	}
	_, err := r.db.ExecContext(ctx, `UPDATE thumb_cache SET accessed_at=? WHERE video_id=?`, now, videoID)
	return err
}

func (r *Repo) ThumbRemove(ctx context.Context, videoID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM thumb_cache WHERE video_id=?`, videoID)
	return err
}

func (r *Repo) ThumbTotalBytes(ctx context.Context) (int64, error) {
	row := r.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(bytes),0) FROM thumb_cache`)
	var v int64
	if err := row.Scan(&v); err != nil {
		return 0, err
	}
	return v, nil
}

// ThumbOldest returns the least recently accessed entry, or "" when the
// ledger is empty.
func (r *Repo) ThumbOldest(ctx context.Context) (string, error) {
	row := r.db.QueryRowContext(ctx, `SELECT video_id FROM thumb_cache ORDER BY accessed_at ASC LIMIT 1`)
	var id string
	if err := row.Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return id, nil
}

func (r *Repo) ThumbList(ctx context.Context) ([]ThumbEntry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT video_id, bytes, accessed_at, created_at FROM thumb_cache ORDER BY video_id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ThumbEntry
	for rows.Next() {
		var e ThumbEntry
		if err := rows.Scan(&e.VideoID, &e.Bytes, &e.AccessedAt, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
