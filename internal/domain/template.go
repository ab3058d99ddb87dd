package domain

import "time"

const (
	ScopeGlobal   = "global"
	ScopeProvider = "provider"

	TemplateTranslateSegment = "translate_segment"
	TemplateDetectLanguage   = "detect_language"

	RoleSystem = "system"
	RoleUser   = "user"
)

type Template struct {
	ID        int64     `json:"id"`
	Scope     string    `json:"scope"` // global | provider
	RefName   string    `json:"ref_name"`
	Type      string    `json:"type"` // translate_segment | detect_language
	Role      string    `json:"role"` // system | user
	Body      string    `json:"body"`
	IsDefault bool      `json:"is_default"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Setting struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}
