package review

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seven-pz/translationmdexe/internal/adapters/db/sqlite"
	"github.com/seven-pz/translationmdexe/internal/domain"
)

func setup(t *testing.T) (*Service, *domain.Document, *sqlite.TranslationRepo) {
	t.Helper()
	db, err := sqlite.Init(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	docRepo := sqlite.NewDocumentRepo(db)
	trRepo := sqlite.NewTranslationRepo(db)

	doc := &domain.Document{
		Name: "a.md", Path: "/tmp/a.md", Format: "markdown",
		FileHash: sqlite.HashBytes([]byte("a")), ContentHash: sqlite.HashBytes([]byte("b")),
		Status: domain.DocumentStatusTranslated,
	}
	require.NoError(t, docRepo.Create(context.Background(), doc))
	require.NoError(t, trRepo.Create(context.Background(), &domain.Translation{
		DocumentID: doc.ID, Pair: "fr-en", Content: "machine output",
	}))
	return NewService(docRepo, trRepo), doc, trRepo
}

func TestSubmitRevision(t *testing.T) {
	svc, doc, trRepo := setup(t)
	score := 5
	rev, err := svc.Submit(context.Background(), Revision{
		DocumentID:   doc.ID,
		Pair:         "fr-en",
		Content:      "human output",
		RevisedBy:    "admin",
		Comment:      "fixed terminology",
		QualityScore: &score,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, rev.Version)
	assert.True(t, rev.IsRevised)
	assert.Equal(t, domain.TranslationStatusRevised, rev.Status)

	latest, err := trRepo.Latest(context.Background(), doc.ID, "fr-en")
	require.NoError(t, err)
	assert.Equal(t, "human output", latest.Content)
	assert.Equal(t, "admin", latest.RevisedBy)
	assert.Equal(t, "fixed terminology", latest.RevisionComment)
}

func TestSubmitValidation(t *testing.T) {
	svc, doc, _ := setup(t)
	ctx := context.Background()

	_, err := svc.Submit(ctx, Revision{DocumentID: doc.ID, Pair: "fr-en", Content: " ", RevisedBy: "a"})
	require.Error(t, err)

	_, err = svc.Submit(ctx, Revision{DocumentID: doc.ID, Pair: "fr-en", Content: "x"})
	require.Error(t, err)

	bad := 9
	_, err = svc.Submit(ctx, Revision{DocumentID: doc.ID, Pair: "fr-en", Content: "x", RevisedBy: "a", QualityScore: &bad})
	require.Error(t, err)

	_, err = svc.Submit(ctx, Revision{DocumentID: doc.ID, Pair: "bogus", Content: "x", RevisedBy: "a"})
	require.Error(t, err)

	_, err = svc.Submit(ctx, Revision{DocumentID: 999, Pair: "fr-en", Content: "x", RevisedBy: "a"})
	require.Error(t, err)

	// no prior translation for the pair
	_, err = svc.Submit(ctx, Revision{DocumentID: doc.ID, Pair: "en-de", Content: "x", RevisedBy: "a"})
	require.Error(t, err)
}
