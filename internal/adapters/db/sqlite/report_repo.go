package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/seven-pz/translationmdexe/internal/domain"
)

type ReportRepo struct{ *Repo }

func NewReportRepo(db *sql.DB) *ReportRepo { return &ReportRepo{NewRepo(db)} }

func (r *ReportRepo) History(ctx context.Context, limit int) ([]*domain.HistoryEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.DB.QueryContext(ctx, `
        SELECT d.id, d.name, t.lang_pair, t.version, t.status, t.revised_by, t.quality_score, t.created_at
        FROM translations t
        JOIN documents d ON d.id = t.document_id
        ORDER BY t.created_at DESC, t.id DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.HistoryEntry
	for rows.Next() {
		var e domain.HistoryEntry
		var score sql.NullInt64
		var created string
		if err := rows.Scan(&e.DocumentID, &e.DocumentName, &e.Pair, &e.Version, &e.Status, &e.RevisedBy, &score, &created); err != nil {
			return nil, err
		}
		if score.Valid {
			v := int(score.Int64)
			e.QualityScore = &v
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339, created)
		out = append(out, &e)
	}
	return out, rows.Err()
}

func (r *ReportRepo) Stats(ctx context.Context) (*domain.Stats, error) {
	var s domain.Stats
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&s.TotalDocuments); err != nil {
		return nil, err
	}
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM translations`).Scan(&s.TotalTranslations); err != nil {
		return nil, err
	}
	var revised int64
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM translations WHERE is_revised = 1`).Scan(&revised); err != nil {
		return nil, err
	}
	if s.TotalTranslations > 0 {
		s.RevisionRate = float64(revised) / float64(s.TotalTranslations) * 100
	}
	var reused int64
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM cache`).Scan(&s.CacheEntries); err != nil {
		return nil, err
	}
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM cache WHERE usage_count > 1`).Scan(&reused); err != nil {
		return nil, err
	}
	if s.CacheEntries > 0 {
		s.ReuseRate = float64(reused) / float64(s.CacheEntries) * 100
	}
	return &s, nil
}
