package sqlite

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/seven-pz/translationmdexe/internal/domain"
)

type SegmentRepo struct{ *Repo }

func NewSegmentRepo(db *sql.DB) *SegmentRepo { return &SegmentRepo{NewRepo(db)} }

// ReplaceForDocument swaps the stored decomposition in one transaction so a
// re-import never leaves a document with mixed segment sets.
func (r *SegmentRepo) ReplaceForDocument(ctx context.Context, documentID int64, segs []*domain.Segment) error {
	now := time.Now().UTC().Format(time.RFC3339)
	return WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM segments WHERE document_id = ?`, documentID); err != nil {
			return err
		}
		for _, s := range segs {
			s.DocumentID = documentID
			res, err := tx.ExecContext(ctx,
				`INSERT INTO segments(document_id, idx, kind, text, created_at) VALUES (?, ?, ?, ?, ?)`,
				documentID, s.Idx, s.Kind, s.Text, now)
			if err != nil {
				return err
			}
			s.ID, _ = res.LastInsertId()
		}
		return nil
	})
}

func (r *SegmentRepo) ListByDocument(ctx context.Context, documentID int64) ([]*domain.Segment, error) {
	q := r.SQ.Select("id", "document_id", "idx", "kind", "text", "created_at").
		From("segments").Where(sq.Eq{"document_id": documentID}).OrderBy("idx")
	sqlStr, args, _ := q.ToSql()
	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Segment
	for rows.Next() {
		var s domain.Segment
		var created string
		if err := rows.Scan(&s.ID, &s.DocumentID, &s.Idx, &s.Kind, &s.Text, &created); err != nil {
			return nil, err
		}
		s.CreatedAt, _ = time.Parse(time.RFC3339, created)
		out = append(out, &s)
	}
	return out, rows.Err()
}

func (r *SegmentRepo) Get(ctx context.Context, id int64) (*domain.Segment, error) {
	q := r.SQ.Select("id", "document_id", "idx", "kind", "text", "created_at").
		From("segments").Where(sq.Eq{"id": id}).Limit(1)
	sqlStr, args, _ := q.ToSql()
	row := r.DB.QueryRowContext(ctx, sqlStr, args...)
	var s domain.Segment
	var created string
	if err := row.Scan(&s.ID, &s.DocumentID, &s.Idx, &s.Kind, &s.Text, &created); err != nil {
		return nil, err
	}
	s.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return &s, nil
}
