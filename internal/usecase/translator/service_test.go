package translator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seven-pz/translationmdexe/internal/domain"
	"github.com/seven-pz/translationmdexe/internal/ports"
)

type fakeProvider struct {
	name      string
	calls     int
	translate func(call int, p ports.TranslateParams) (ports.TranslateResult, error)
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Translate(_ context.Context, _ string, p ports.TranslateParams) (ports.TranslateResult, error) {
	f.calls++
	return f.translate(f.calls, p)
}

func (f *fakeProvider) ListModels(context.Context) ([]ports.ModelInfo, error) { return nil, nil }
func (f *fakeProvider) Test(context.Context) error                           { return nil }

type fakeRenderer struct{}

func (fakeRenderer) Render(_ context.Context, _, _, _, role string, data ports.PromptData) (string, error) {
	if role == domain.RoleUser {
		return data.Text, nil
	}
	return "translate", nil
}

type memCache struct {
	entries []*domain.CacheEntry
	nextID  int64
}

func (m *memCache) Get(_ context.Context, src, srcLang, tgtLang, provider, model string) (*domain.CacheEntry, error) {
	for _, e := range m.entries {
		if e.SourceText == src && e.SrcLang == srcLang && e.TgtLang == tgtLang && e.Provider == provider && e.Model == model {
			return e, nil
		}
	}
	return nil, nil
}

func (m *memCache) Put(_ context.Context, entry *domain.CacheEntry) error {
	m.nextID++
	entry.ID = m.nextID
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memCache) Touch(_ context.Context, id int64) error {
	for _, e := range m.entries {
		if e.ID == id {
			e.UsageCount++
		}
	}
	return nil
}

func (m *memCache) RecentByPair(_ context.Context, srcLang, tgtLang string, limit int) ([]*domain.CacheEntry, error) {
	var out []*domain.CacheEntry
	for _, e := range m.entries {
		if e.SrcLang == srcLang && e.TgtLang == tgtLang {
			out = append(out, e)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func jsonResult(text string) (ports.TranslateResult, error) {
	return ports.TranslateResult{Translation: text, Raw: fmt.Sprintf(`{"translation": %q}`, text)}, nil
}

var pairFREN = domain.LangPair{Src: "fr", Tgt: "en"}

func TestTranslateSegmentProviderAndCache(t *testing.T) {
	prov := &fakeProvider{name: "ollama", translate: func(int, ports.TranslateParams) (ports.TranslateResult, error) {
		return jsonResult("Hello world")
	}}
	cache := &memCache{}
	svc := NewService(prov, fakeRenderer{}, cache, nil)

	res, err := svc.TranslateSegment(context.Background(), "Bonjour le monde", Options{Pair: pairFREN})
	require.NoError(t, err)
	assert.Equal(t, "Hello world", res.Text)
	assert.Equal(t, "provider", res.Source)
	assert.Equal(t, 1, prov.calls)

	// second call is served from the cache
	res, err = svc.TranslateSegment(context.Background(), "Bonjour le monde", Options{Pair: pairFREN})
	require.NoError(t, err)
	assert.Equal(t, "Hello world", res.Text)
	assert.Equal(t, "cache", res.Source)
	assert.Equal(t, 1, prov.calls)
}

func TestTranslateSegmentBypassCache(t *testing.T) {
	prov := &fakeProvider{name: "ollama", translate: func(int, ports.TranslateParams) (ports.TranslateResult, error) {
		return jsonResult("Hello")
	}}
	cache := &memCache{}
	svc := NewService(prov, fakeRenderer{}, cache, nil)

	_, err := svc.TranslateSegment(context.Background(), "Bonjour", Options{Pair: pairFREN})
	require.NoError(t, err)
	_, err = svc.TranslateSegment(context.Background(), "Bonjour", Options{Pair: pairFREN, BypassCache: true})
	require.NoError(t, err)
	assert.Equal(t, 2, prov.calls)
}

func TestTranslateSegmentFuzzyReuse(t *testing.T) {
	prov := &fakeProvider{name: "ollama", translate: func(int, ports.TranslateParams) (ports.TranslateResult, error) {
		return jsonResult("unused")
	}}
	cache := &memCache{}
	require.NoError(t, cache.Put(context.Background(), &domain.CacheEntry{
		SourceText:  "Le serveur redémarre automatiquement après une mise à jour.",
		SrcLang:     "fr",
		TgtLang:     "en",
		Provider:    "ollama",
		Translation: "The server restarts automatically after an update.",
	}))
	svc := NewService(prov, fakeRenderer{}, cache, nil)

	res, err := svc.TranslateSegment(context.Background(),
		"Le serveur redémarre automatiquement après une mise à jour .",
		Options{Pair: pairFREN})
	require.NoError(t, err)
	assert.Equal(t, "fuzzy", res.Source)
	assert.Equal(t, "The server restarts automatically after an update.", res.Text)
	assert.Zero(t, prov.calls)
}

func TestTranslateSegmentEmptyText(t *testing.T) {
	prov := &fakeProvider{name: "ollama", translate: func(int, ports.TranslateParams) (ports.TranslateResult, error) {
		t.Fatal("provider must not be called")
		return ports.TranslateResult{}, nil
	}}
	svc := NewService(prov, fakeRenderer{}, &memCache{}, nil)
	res, err := svc.TranslateSegment(context.Background(), "   ", Options{Pair: pairFREN})
	require.NoError(t, err)
	assert.Equal(t, "   ", res.Text)
}

func TestTranslateSegmentRetriesOnParseError(t *testing.T) {
	prov := &fakeProvider{name: "ollama", translate: func(call int, _ ports.TranslateParams) (ports.TranslateResult, error) {
		if call < 3 {
			return ports.TranslateResult{}, errors.New("failed to parse translation JSON")
		}
		return jsonResult("Hello")
	}}
	svc := NewService(prov, fakeRenderer{}, &memCache{}, nil)
	res, err := svc.TranslateSegment(context.Background(), "Bonjour", Options{Pair: pairFREN})
	require.NoError(t, err)
	assert.Equal(t, "Hello", res.Text)
	assert.Equal(t, 3, prov.calls)
}

func TestTranslateSegmentPlaceholdersRestored(t *testing.T) {
	prov := &fakeProvider{name: "ollama", translate: func(_ int, p ports.TranslateParams) (ports.TranslateResult, error) {
		// echo the masked text back, token included
		return jsonResult("Translated " + p.UserPrompt)
	}}
	svc := NewService(prov, fakeRenderer{}, &memCache{}, nil)
	res, err := svc.TranslateSegment(context.Background(), "Voir [le guide](guide.md)", Options{Pair: pairFREN})
	require.NoError(t, err)
	assert.Contains(t, res.Text, "[le guide](guide.md)")
	assert.NotContains(t, res.Text, "__PH_")
}

func TestTranslateSegmentFailsWhenPlaceholderLost(t *testing.T) {
	prov := &fakeProvider{name: "ollama", translate: func(int, ports.TranslateParams) (ports.TranslateResult, error) {
		return jsonResult("token is gone")
	}}
	svc := NewService(prov, fakeRenderer{}, &memCache{}, nil)
	_, err := svc.TranslateSegment(context.Background(), "Voir [le guide](guide.md)", Options{Pair: pairFREN})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "placeholder")
	assert.Equal(t, 3, prov.calls)
}

func TestTranslateText(t *testing.T) {
	prov := &fakeProvider{name: "ollama", translate: func(_ int, p ports.TranslateParams) (ports.TranslateResult, error) {
		return jsonResult("T(" + strings.TrimSpace(p.UserPrompt) + ")")
	}}
	svc := NewService(prov, fakeRenderer{}, &memCache{}, nil)
	out, err := svc.TranslateText(context.Background(), "Premier point. Deuxième point.", Options{Pair: pairFREN})
	require.NoError(t, err)
	assert.Equal(t, "T(Premier point.) T(Deuxième point.)", out)
	assert.Equal(t, 2, prov.calls)
}
