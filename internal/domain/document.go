package domain

import "time"

const (
	DocumentStatusPending    = "pending"
	DocumentStatusTranslated = "translated"
	DocumentStatusFailed     = "failed"
)

type Document struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Path        string    `json:"path"`
	Format      string    `json:"format"`
	FileHash    string    `json:"file_hash"`
	ContentHash string    `json:"content_hash"`
	Status      string    `json:"status"`
	MetadataRaw string    `json:"metadata_json"`
	CreatedAt   time.Time `json:"created_at"`
}

// Segment kinds. Passthrough segments are emitted verbatim on export.
const (
	SegmentText        = "text"
	SegmentPassthrough = "passthrough"
)

type Segment struct {
	ID         int64     `json:"id"`
	DocumentID int64     `json:"document_id"`
	Idx        int       `json:"idx"`
	Kind       string    `json:"kind"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}
