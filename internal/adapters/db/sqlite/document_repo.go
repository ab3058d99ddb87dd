package sqlite

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/seven-pz/translationmdexe/internal/domain"
)

type DocumentRepo struct{ *Repo }

func NewDocumentRepo(db *sql.DB) *DocumentRepo { return &DocumentRepo{NewRepo(db)} }

func HashBytes(b []byte) string {
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:])
}

var documentCols = []string{"id", "name", "path", "format", "file_hash", "content_hash", "status", "metadata_json", "created_at"}

func (r *DocumentRepo) Create(ctx context.Context, d *domain.Document) error {
	now := time.Now().UTC().Format(time.RFC3339)
	if d.Status == "" {
		d.Status = domain.DocumentStatusPending
	}
	q := r.SQ.Insert("documents").Columns("name", "path", "format", "file_hash", "content_hash", "status", "metadata_json", "created_at").
		Values(d.Name, d.Path, d.Format, d.FileHash, d.ContentHash, d.Status, d.MetadataRaw, now)
	sqlStr, args, _ := q.ToSql()
	res, err := r.DB.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	id, _ := res.LastInsertId()
	d.ID = id
	return nil
}

func (r *DocumentRepo) Get(ctx context.Context, id int64) (*domain.Document, error) {
	d, err := r.getOne(ctx, sq.Eq{"id": id})
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return d, err
}

// GetByContentHash returns nil without error when no document matches.
func (r *DocumentRepo) GetByContentHash(ctx context.Context, hash string) (*domain.Document, error) {
	d, err := r.getOne(ctx, sq.Eq{"content_hash": hash})
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return d, err
}

func (r *DocumentRepo) getOne(ctx context.Context, pred any) (*domain.Document, error) {
	q := r.SQ.Select(documentCols...).From("documents").Where(pred).Limit(1)
	sqlStr, args, _ := q.ToSql()
	row := r.DB.QueryRowContext(ctx, sqlStr, args...)
	var d domain.Document
	var created string
	if err := row.Scan(&d.ID, &d.Name, &d.Path, &d.Format, &d.FileHash, &d.ContentHash, &d.Status, &d.MetadataRaw, &created); err != nil {
		return nil, err
	}
	d.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return &d, nil
}

func (r *DocumentRepo) List(ctx context.Context, limit int) ([]*domain.Document, error) {
	if limit <= 0 {
		limit = 50
	}
	q := r.SQ.Select(documentCols...).From("documents").OrderBy("id DESC").Limit(uint64(limit))
	sqlStr, args, _ := q.ToSql()
	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Document
	for rows.Next() {
		var d domain.Document
		var created string
		if err := rows.Scan(&d.ID, &d.Name, &d.Path, &d.Format, &d.FileHash, &d.ContentHash, &d.Status, &d.MetadataRaw, &created); err != nil {
			return nil, err
		}
		d.CreatedAt, _ = time.Parse(time.RFC3339, created)
		out = append(out, &d)
	}
	return out, rows.Err()
}

func (r *DocumentRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	q := r.SQ.Update("documents").Set("status", status).Where(sq.Eq{"id": id})
	sqlStr, args, _ := q.ToSql()
	_, err := r.DB.ExecContext(ctx, sqlStr, args...)
	return err
}
