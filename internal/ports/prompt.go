package ports

import "context"

type PromptData struct {
	SrcLang      string
	TgtLang      string
	Text         string
	DocumentName string
	Placeholders []string
}

type PromptRenderer interface {
	Render(ctx context.Context, scope, refName, typ, role string, data PromptData) (string, error)
}
