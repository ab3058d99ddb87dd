package prompt

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	"github.com/seven-pz/translationmdexe/internal/domain"
	"github.com/seven-pz/translationmdexe/internal/ports"
)

// Renderer renders prompts from templates stored in the database,
// falling back to the builtin defaults when no override exists.
type Renderer struct {
	templates ports.TemplateRepository
}

func NewRenderer(templates ports.TemplateRepository) *Renderer {
	return &Renderer{templates: templates}
}

var builtin = map[string]string{
	domain.TemplateTranslateSegment + "/" + domain.RoleSystem: `You are a professional document translator. Translate the given text from {{.SrcLang}} to {{.TgtLang}}.
Rules:
- Translate only the text, never add explanations or commentary.
- Preserve every placeholder token ({{range .Placeholders}}{{.}} {{end}}) exactly as written.
- Keep the tone and register of the source.
Return a JSON object: {"translation": "<translated text>"}`,
	domain.TemplateTranslateSegment + "/" + domain.RoleUser: `Document: {{.DocumentName}}
Source text:
{{.Text}}`,
	domain.TemplateDetectLanguage + "/" + domain.RoleSystem: `You detect the language of a text.
Return a JSON object: {"translation": "<two-letter ISO 639-1 code>"}`,
	domain.TemplateDetectLanguage + "/" + domain.RoleUser: `Text:
{{.Text}}`,
}

func (r *Renderer) Render(ctx context.Context, scope, refName, typ, role string, data ports.PromptData) (string, error) {
	body, err := r.body(ctx, scope, refName, typ, role)
	if err != nil {
		return "", err
	}
	tpl, err := template.New(typ + "/" + role).Parse(body)
	if err != nil {
		return "", fmt.Errorf("parse template %s/%s: %w", typ, role, err)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render template %s/%s: %w", typ, role, err)
	}
	return buf.String(), nil
}

func (r *Renderer) body(ctx context.Context, scope, refName, typ, role string) (string, error) {
	if r.templates != nil {
		t, err := r.templates.GetEffective(ctx, scope, refName, typ, role)
		if err != nil {
			return "", err
		}
		if t != nil {
			return t.Body, nil
		}
	}
	if b, ok := builtin[typ+"/"+role]; ok {
		return b, nil
	}
	return "", fmt.Errorf("no template for %s/%s", typ, role)
}
