package prompt

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seven-pz/translationmdexe/internal/domain"
	"github.com/seven-pz/translationmdexe/internal/ports"
)

type stubTemplates struct {
	tpl *domain.Template
}

func (s stubTemplates) GetEffective(context.Context, string, string, string, string) (*domain.Template, error) {
	return s.tpl, nil
}

func (s stubTemplates) Upsert(context.Context, *domain.Template) error { return nil }

func TestRenderBuiltinSystem(t *testing.T) {
	r := NewRenderer(nil)
	out, err := r.Render(context.Background(), domain.ScopeProvider, "ollama",
		domain.TemplateTranslateSegment, domain.RoleSystem, ports.PromptData{
			SrcLang:      "fr",
			TgtLang:      "en",
			Placeholders: []string{"__PH_0__"},
		})
	require.NoError(t, err)
	assert.Contains(t, out, "from fr to en")
	assert.Contains(t, out, "__PH_0__")
	assert.Contains(t, out, `{"translation"`)
}

func TestRenderBuiltinUser(t *testing.T) {
	r := NewRenderer(nil)
	out, err := r.Render(context.Background(), domain.ScopeGlobal, "",
		domain.TemplateTranslateSegment, domain.RoleUser, ports.PromptData{
			Text:         "Bonjour",
			DocumentName: "guide.md",
		})
	require.NoError(t, err)
	assert.Contains(t, out, "guide.md")
	assert.Contains(t, out, "Bonjour")
}

func TestRenderStoredTemplateWins(t *testing.T) {
	r := NewRenderer(stubTemplates{tpl: &domain.Template{Body: "custom {{.Text}}"}})
	out, err := r.Render(context.Background(), domain.ScopeGlobal, "",
		domain.TemplateTranslateSegment, domain.RoleUser, ports.PromptData{Text: "x"})
	require.NoError(t, err)
	assert.Equal(t, "custom x", out)
}

func TestRenderUnknownType(t *testing.T) {
	r := NewRenderer(nil)
	_, err := r.Render(context.Background(), domain.ScopeGlobal, "", "nonsense", domain.RoleUser, ports.PromptData{})
	require.Error(t, err)
}
