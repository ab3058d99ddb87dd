package review

import (
	"context"
	"fmt"
	"strings"

	"github.com/seven-pz/translationmdexe/internal/domain"
	"github.com/seven-pz/translationmdexe/internal/ports"
)

// Service records human revisions of machine translations. A revision
// never overwrites: it becomes the next version for the document.
type Service struct {
	docs         ports.DocumentRepository
	translations ports.TranslationRepository
}

func NewService(docs ports.DocumentRepository, translations ports.TranslationRepository) *Service {
	return &Service{docs: docs, translations: translations}
}

type Revision struct {
	DocumentID   int64
	Pair         string
	Content      string
	RevisedBy    string
	Comment      string
	QualityScore *int
}

func (s *Service) Submit(ctx context.Context, rev Revision) (*domain.Translation, error) {
	if strings.TrimSpace(rev.Content) == "" {
		return nil, fmt.Errorf("revision content is empty")
	}
	if rev.RevisedBy == "" {
		return nil, fmt.Errorf("revised_by is required")
	}
	if rev.QualityScore != nil && (*rev.QualityScore < 1 || *rev.QualityScore > 5) {
		return nil, fmt.Errorf("quality score must be between 1 and 5")
	}
	if _, err := domain.ParsePair(rev.Pair); err != nil {
		return nil, err
	}
	doc, err := s.docs.Get(ctx, rev.DocumentID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("document %d not found", rev.DocumentID)
	}
	prev, err := s.translations.Latest(ctx, rev.DocumentID, rev.Pair)
	if err != nil {
		return nil, err
	}
	if prev == nil {
		return nil, fmt.Errorf("document %d has no translation for %s to revise", rev.DocumentID, rev.Pair)
	}
	t := &domain.Translation{
		DocumentID:      rev.DocumentID,
		Pair:            rev.Pair,
		Content:         rev.Content,
		Status:          domain.TranslationStatusRevised,
		IsRevised:       true,
		RevisedBy:       rev.RevisedBy,
		RevisionComment: rev.Comment,
		QualityScore:    rev.QualityScore,
	}
	if err := s.translations.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}
