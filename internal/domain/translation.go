package domain

import "time"

const (
	TranslationStatusMachine = "machine"
	TranslationStatusRevised = "revised"
)

// Translation is an assembled document translation. Versions increment per
// document; revisions create a new version instead of overwriting.
type Translation struct {
	ID              int64     `json:"id"`
	DocumentID      int64     `json:"document_id"`
	Pair            string    `json:"lang_pair"`
	Content         string    `json:"content"`
	Version         int       `json:"version"`
	Status          string    `json:"status"`
	IsRevised       bool      `json:"is_revised"`
	RevisedBy       string    `json:"revised_by"`
	RevisionComment string    `json:"revision_comment"`
	QualityScore    *int      `json:"quality_score"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// CacheEntry is a translation memory record for a single segment.
type CacheEntry struct {
	ID          int64     `json:"id"`
	SourceText  string    `json:"source_text"`
	SrcLang     string    `json:"src_lang"`
	TgtLang     string    `json:"tgt_lang"`
	Provider    string    `json:"provider"`
	Model       string    `json:"model"`
	Translation string    `json:"translation"`
	UsageCount  int       `json:"usage_count"`
	LastUsed    time.Time `json:"last_used"`
	CreatedAt   time.Time `json:"created_at"`
}

type HistoryEntry struct {
	DocumentID   int64     `json:"document_id"`
	DocumentName string    `json:"document_name"`
	Pair         string    `json:"lang_pair"`
	Version      int       `json:"version"`
	Status       string    `json:"status"`
	RevisedBy    string    `json:"revised_by"`
	QualityScore *int      `json:"quality_score"`
	CreatedAt    time.Time `json:"created_at"`
}

type Stats struct {
	TotalDocuments    int64   `json:"total_documents"`
	TotalTranslations int64   `json:"total_translations"`
	RevisionRate      float64 `json:"revision_rate"`
	CacheEntries      int64   `json:"cache_entries"`
	ReuseRate         float64 `json:"reuse_rate"`
}
