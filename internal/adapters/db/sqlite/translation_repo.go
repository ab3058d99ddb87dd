package sqlite

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/seven-pz/translationmdexe/internal/domain"
)

type TranslationRepo struct{ *Repo }

func NewTranslationRepo(db *sql.DB) *TranslationRepo { return &TranslationRepo{NewRepo(db)} }

var translationCols = []string{"id", "document_id", "lang_pair", "content", "version", "status", "is_revised", "revised_by", "revision_comment", "quality_score", "created_at", "updated_at"}

// Create stores t with the next version number for its document.
func (r *TranslationRepo) Create(ctx context.Context, t *domain.Translation) error {
	now := time.Now().UTC().Format(time.RFC3339)
	if t.Status == "" {
		t.Status = domain.TranslationStatusMachine
	}
	res, err := r.DB.ExecContext(ctx, `
        INSERT INTO translations (document_id, lang_pair, content, version, status, is_revised, revised_by, revision_comment, quality_score, created_at, updated_at)
        VALUES (?, ?, ?, (SELECT COALESCE(MAX(version), 0) + 1 FROM translations WHERE document_id = ?), ?, ?, ?, ?, ?, ?, ?)`,
		t.DocumentID, t.Pair, t.Content, t.DocumentID, t.Status, t.IsRevised, t.RevisedBy, t.RevisionComment, t.QualityScore, now, now)
	if err != nil {
		return err
	}
	t.ID, _ = res.LastInsertId()
	row := r.DB.QueryRowContext(ctx, `SELECT version FROM translations WHERE id = ?`, t.ID)
	return row.Scan(&t.Version)
}

// Latest returns nil without error when the document has no translation for the pair.
func (r *TranslationRepo) Latest(ctx context.Context, documentID int64, pair string) (*domain.Translation, error) {
	q := r.SQ.Select(translationCols...).From("translations").
		Where(sq.Eq{"document_id": documentID, "lang_pair": pair}).
		OrderBy("version DESC").Limit(1)
	t, err := r.scanOne(ctx, q)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return t, err
}

func (r *TranslationRepo) Get(ctx context.Context, id int64) (*domain.Translation, error) {
	q := r.SQ.Select(translationCols...).From("translations").Where(sq.Eq{"id": id}).Limit(1)
	return r.scanOne(ctx, q)
}

func (r *TranslationRepo) ListByDocument(ctx context.Context, documentID int64) ([]*domain.Translation, error) {
	q := r.SQ.Select(translationCols...).From("translations").
		Where(sq.Eq{"document_id": documentID}).OrderBy("version DESC")
	sqlStr, args, _ := q.ToSql()
	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Translation
	for rows.Next() {
		t, err := scanTranslation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *TranslationRepo) scanOne(ctx context.Context, q sq.SelectBuilder) (*domain.Translation, error) {
	sqlStr, args, _ := q.ToSql()
	row := r.DB.QueryRowContext(ctx, sqlStr, args...)
	return scanTranslation(row)
}

type rowScanner interface{ Scan(dest ...any) error }

func scanTranslation(row rowScanner) (*domain.Translation, error) {
	var t domain.Translation
	var created, updated string
	var score sql.NullInt64
	if err := row.Scan(&t.ID, &t.DocumentID, &t.Pair, &t.Content, &t.Version, &t.Status, &t.IsRevised, &t.RevisedBy, &t.RevisionComment, &score, &created, &updated); err != nil {
		return nil, err
	}
	if score.Valid {
		v := int(score.Int64)
		t.QualityScore = &v
	}
	t.CreatedAt, _ = time.Parse(time.RFC3339, created)
	t.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
	return &t, nil
}
