package sqlite

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/seven-pz/translationmdexe/internal/domain"
)

type TemplateRepo struct{ *Repo }

func NewTemplateRepo(db *sql.DB) *TemplateRepo { return &TemplateRepo{NewRepo(db)} }

// GetEffective resolves provider scope before global; returns nil when no
// stored template matches so the caller can fall back to builtins.
func (r *TemplateRepo) GetEffective(ctx context.Context, scope, refName, typ, role string) (*domain.Template, error) {
	if scope == "provider" && refName != "" {
		t, err := r.getOne(ctx, scope, refName, typ, role)
		if err != nil {
			return nil, err
		}
		if t != nil {
			return t, nil
		}
	}
	return r.getOne(ctx, "global", "", typ, role)
}

func (r *TemplateRepo) getOne(ctx context.Context, scope, refName, typ, role string) (*domain.Template, error) {
	q := r.SQ.Select("id", "scope", "ref_name", "type", "role", "body", "is_default", "updated_at").
		From("templates").
		Where(sq.Eq{"scope": scope, "ref_name": refName, "type": typ, "role": role}).
		OrderBy("id DESC").Limit(1)
	sqlStr, args, _ := q.ToSql()
	row := r.DB.QueryRowContext(ctx, sqlStr, args...)
	var t domain.Template
	var updated string
	if err := row.Scan(&t.ID, &t.Scope, &t.RefName, &t.Type, &t.Role, &t.Body, &t.IsDefault, &updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	t.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
	return &t, nil
}

func (r *TemplateRepo) Upsert(ctx context.Context, t *domain.Template) error {
	now := time.Now().UTC().Format(time.RFC3339)
	q := r.SQ.Insert("templates").Columns("scope", "ref_name", "type", "role", "body", "is_default", "updated_at").
		Values(t.Scope, t.RefName, t.Type, t.Role, t.Body, t.IsDefault, now).
		Suffix("ON CONFLICT(scope, ref_name, type, role) DO UPDATE SET body = excluded.body, is_default = excluded.is_default, updated_at = excluded.updated_at")
	sqlStr, args, _ := q.ToSql()
	_, err := r.DB.ExecContext(ctx, sqlStr, args...)
	return err
}
