package sqlite

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/seven-pz/translationmdexe/internal/domain"
)

type CacheRepo struct{ *Repo }

func NewCacheRepo(db *sql.DB) *CacheRepo { return &CacheRepo{NewRepo(db)} }

var cacheCols = []string{"id", "source_text", "src_lang", "tgt_lang", "provider", "model", "translation", "usage_count", "last_used", "created_at"}

func (r *CacheRepo) Get(ctx context.Context, src, srcLang, tgtLang, provider, model string) (*domain.CacheEntry, error) {
	q := r.SQ.Select(cacheCols...).From("cache").
		Where(sq.Eq{
			"source_text": src,
			"src_lang":    srcLang,
			"tgt_lang":    tgtLang,
			"provider":    provider,
			"model":       model,
		}).Limit(1)
	sqlStr, args, _ := q.ToSql()
	row := r.DB.QueryRowContext(ctx, sqlStr, args...)
	e, err := scanCacheEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return e, err
}

func (r *CacheRepo) Put(ctx context.Context, entry *domain.CacheEntry) error {
	now := time.Now().UTC().Format(time.RFC3339)
	q := r.SQ.Insert("cache").
		Columns("source_text", "src_lang", "tgt_lang", "provider", "model", "translation", "usage_count", "last_used", "created_at").
		Values(entry.SourceText, entry.SrcLang, entry.TgtLang, entry.Provider, entry.Model, entry.Translation, 1, now, now).
		Suffix("ON CONFLICT(source_text, src_lang, tgt_lang, provider, model) DO UPDATE SET translation=excluded.translation, usage_count=cache.usage_count+1, last_used=excluded.last_used")
	sqlStr, args, _ := q.ToSql()
	_, err := r.DB.ExecContext(ctx, sqlStr, args...)
	return err
}

// Touch bumps the usage counter on a cache hit.
func (r *CacheRepo) Touch(ctx context.Context, id int64) error {
	now := time.Now().UTC().Format(time.RFC3339)
	q := r.SQ.Update("cache").
		Set("usage_count", sq.Expr("usage_count + 1")).
		Set("last_used", now).
		Where(sq.Eq{"id": id})
	sqlStr, args, _ := q.ToSql()
	_, err := r.DB.ExecContext(ctx, sqlStr, args...)
	return err
}

// RecentByPair returns the most recently used entries for a language pair,
// which bounds the fuzzy-match scan.
func (r *CacheRepo) RecentByPair(ctx context.Context, srcLang, tgtLang string, limit int) ([]*domain.CacheEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	q := r.SQ.Select(cacheCols...).From("cache").
		Where(sq.Eq{"src_lang": srcLang, "tgt_lang": tgtLang}).
		OrderBy("last_used DESC").Limit(uint64(limit))
	sqlStr, args, _ := q.ToSql()
	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.CacheEntry
	for rows.Next() {
		e, err := scanCacheEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanCacheEntry(row rowScanner) (*domain.CacheEntry, error) {
	var e domain.CacheEntry
	var lastUsed, created string
	if err := row.Scan(&e.ID, &e.SourceText, &e.SrcLang, &e.TgtLang, &e.Provider, &e.Model, &e.Translation, &e.UsageCount, &lastUsed, &created); err != nil {
		return nil, err
	}
	e.LastUsed, _ = time.Parse(time.RFC3339, lastUsed)
	e.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return &e, nil
}
