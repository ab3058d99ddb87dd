package ports

import (
	"context"

	"github.com/seven-pz/translationmdexe/internal/domain"
)

type DocumentRepository interface {
	Create(ctx context.Context, d *domain.Document) error
	Get(ctx context.Context, id int64) (*domain.Document, error)
	GetByContentHash(ctx context.Context, hash string) (*domain.Document, error)
	List(ctx context.Context, limit int) ([]*domain.Document, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
}

type SegmentRepository interface {
	ReplaceForDocument(ctx context.Context, documentID int64, segs []*domain.Segment) error
	ListByDocument(ctx context.Context, documentID int64) ([]*domain.Segment, error)
	Get(ctx context.Context, id int64) (*domain.Segment, error)
}

type TranslationRepository interface {
	// Create assigns the next version for the document and stores t.
	Create(ctx context.Context, t *domain.Translation) error
	Latest(ctx context.Context, documentID int64, pair string) (*domain.Translation, error)
	Get(ctx context.Context, id int64) (*domain.Translation, error)
	ListByDocument(ctx context.Context, documentID int64) ([]*domain.Translation, error)
}

type CacheRepository interface {
	Get(ctx context.Context, src, srcLang, tgtLang, provider, model string) (*domain.CacheEntry, error)
	Put(ctx context.Context, entry *domain.CacheEntry) error
	Touch(ctx context.Context, id int64) error
	RecentByPair(ctx context.Context, srcLang, tgtLang string, limit int) ([]*domain.CacheEntry, error)
}

type JobRepository interface {
	Create(ctx context.Context, j *domain.Job) (int64, error)
	UpdateProgress(ctx context.Context, jobID int64, done, total int, status string) error
	AddItem(ctx context.Context, ji *domain.JobItem) (int64, error)
	UpdateItem(ctx context.Context, itemID int64, status, errMsg string) error
	AddLog(ctx context.Context, jl *domain.JobLog) error
	Get(ctx context.Context, jobID int64) (*domain.Job, error)
	List(ctx context.Context, limit int) ([]*domain.Job, error)
	ListItems(ctx context.Context, jobID int64) ([]*domain.JobItem, error)
	ListLogs(ctx context.Context, jobID int64, limit int) ([]*domain.JobLog, error)
}

type TemplateRepository interface {
	GetEffective(ctx context.Context, scope, refName, typ, role string) (*domain.Template, error)
	Upsert(ctx context.Context, t *domain.Template) error
}

type SettingsRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

type ReportRepository interface {
	History(ctx context.Context, limit int) ([]*domain.HistoryEntry, error)
	Stats(ctx context.Context) (*domain.Stats, error)
}
