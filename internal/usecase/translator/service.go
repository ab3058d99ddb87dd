package translator

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/seven-pz/translationmdexe/internal/adapters/llm/parse"
	"github.com/seven-pz/translationmdexe/internal/domain"
	"github.com/seven-pz/translationmdexe/internal/metrics"
	"github.com/seven-pz/translationmdexe/internal/ports"
)

const (
	maxAttempts      = 3
	fuzzyThreshold   = 0.95
	fuzzyWindow      = 100
	defaultTemp      = 0.3
	retryBackoffUnit = 200 * time.Millisecond
)

// Options control a single translation request.
type Options struct {
	Pair         domain.LangPair
	Model        string
	DocumentName string
	BypassCache  bool
}

// Result carries the translation and where it came from.
type Result struct {
	Text   string
	Source string // provider | cache | fuzzy
}

// Service translates text segments through a provider, backed by a
// translation memory with exact and fuzzy reuse.
type Service struct {
	provider ports.Provider
	prompts  ports.PromptRenderer
	cache    ports.CacheRepository
	log      *zap.Logger
}

func NewService(provider ports.Provider, prompts ports.PromptRenderer, cache ports.CacheRepository, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{provider: provider, prompts: prompts, cache: cache, log: log}
}

// TranslateText splits free text into sentences, translates each and
// joins the results with single spaces.
func (s *Service) TranslateText(ctx context.Context, text string, opts Options) (string, error) {
	sentences := SplitSentences(text)
	if len(sentences) == 0 {
		return "", nil
	}
	parts := make([]string, 0, len(sentences))
	for _, sent := range sentences {
		res, err := s.TranslateSegment(ctx, sent, opts)
		if err != nil {
			return "", err
		}
		parts = append(parts, res.Text)
	}
	return strings.Join(parts, " "), nil
}

// TranslateSegment translates one segment, consulting the translation
// memory first unless opts.BypassCache is set.
func (s *Service) TranslateSegment(ctx context.Context, text string, opts Options) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return Result{Text: text, Source: "cache"}, nil
	}
	model := opts.Model
	provider := s.provider.Name()

	if !opts.BypassCache {
		if hit, err := s.cache.Get(ctx, text, opts.Pair.Src, opts.Pair.Tgt, provider, model); err != nil {
			return Result{}, err
		} else if hit != nil {
			if err := s.cache.Touch(ctx, hit.ID); err != nil {
				return Result{}, err
			}
			metrics.CacheHitsTotal.WithLabelValues("exact").Inc()
			return Result{Text: hit.Translation, Source: "cache"}, nil
		}
		if text, ok, err := s.fuzzyLookup(ctx, text, opts.Pair); err != nil {
			return Result{}, err
		} else if ok {
			metrics.CacheHitsTotal.WithLabelValues("fuzzy").Inc()
			return Result{Text: text, Source: "fuzzy"}, nil
		}
	}

	masked, tokens, unmask := Mask(text)
	data := ports.PromptData{
		SrcLang:      opts.Pair.Src,
		TgtLang:      opts.Pair.Tgt,
		Text:         masked,
		DocumentName: opts.DocumentName,
		Placeholders: tokens,
	}
	system, err := s.prompts.Render(ctx, domain.ScopeProvider, provider, domain.TemplateTranslateSegment, domain.RoleSystem, data)
	if err != nil {
		return Result{}, err
	}
	user, err := s.prompts.Render(ctx, domain.ScopeProvider, provider, domain.TemplateTranslateSegment, domain.RoleUser, data)
	if err != nil {
		return Result{}, err
	}

	params := ports.TranslateParams{
		SourceLang:   opts.Pair.Src,
		TargetLang:   opts.Pair.Tgt,
		Model:        model,
		Temperature:  defaultTemp,
		SystemPrompt: system,
		UserPrompt:   user,
	}

	var out string
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		start := time.Now()
		res, err := s.provider.Translate(ctx, masked, params)
		metrics.ProviderLatency.WithLabelValues(provider).Observe(time.Since(start).Seconds())
		if err != nil {
			lastErr = err
			if !isRetryable(err) || attempt == maxAttempts {
				metrics.TranslationsTotal.WithLabelValues(provider, "error").Inc()
				return Result{}, fmt.Errorf("translate attempt %d: %w", attempt, err)
			}
			s.log.Warn("translate retry",
				zap.Int("attempt", attempt),
				zap.String("pair", opts.Pair.String()),
				zap.Error(err))
			select {
			case <-ctx.Done():
				return Result{}, ctx.Err()
			case <-time.After(retryBackoffUnit * time.Duration(attempt)):
			}
			continue
		}
		candidate := CleanOutput(res.Translation)
		if len(tokens) > 0 && !TokensSurvived(candidate, tokens) {
			lastErr = fmt.Errorf("placeholder tokens lost in output %q", parse.Abbreviate(candidate, 120))
			if attempt == maxAttempts {
				metrics.TranslationsTotal.WithLabelValues(provider, "error").Inc()
				return Result{}, lastErr
			}
			continue
		}
		out = candidate
		lastErr = nil
		break
	}
	if lastErr != nil {
		metrics.TranslationsTotal.WithLabelValues(provider, "error").Inc()
		return Result{}, lastErr
	}

	out = StripStrayTokens(out, tokens)
	out = unmask(out)
	out = strings.TrimSpace(out)

	if err := s.cache.Put(ctx, &domain.CacheEntry{
		SourceText:  text,
		SrcLang:     opts.Pair.Src,
		TgtLang:     opts.Pair.Tgt,
		Provider:    provider,
		Model:       model,
		Translation: out,
	}); err != nil {
		return Result{}, err
	}
	metrics.TranslationsTotal.WithLabelValues(provider, "ok").Inc()
	return Result{Text: out, Source: "provider"}, nil
}

// DetectLanguage asks the provider for a two-letter language code.
func (s *Service) DetectLanguage(ctx context.Context, text string) (string, error) {
	data := ports.PromptData{Text: parse.Abbreviate(text, 400)}
	system, err := s.prompts.Render(ctx, domain.ScopeProvider, s.provider.Name(), domain.TemplateDetectLanguage, domain.RoleSystem, data)
	if err != nil {
		return "", err
	}
	user, err := s.prompts.Render(ctx, domain.ScopeProvider, s.provider.Name(), domain.TemplateDetectLanguage, domain.RoleUser, data)
	if err != nil {
		return "", err
	}
	res, err := s.provider.Translate(ctx, text, ports.TranslateParams{
		Temperature:  0,
		SystemPrompt: system,
		UserPrompt:   user,
	})
	if err != nil {
		return "", err
	}
	code := strings.ToLower(strings.TrimSpace(res.Translation))
	if len(code) != 2 {
		return "", fmt.Errorf("unexpected language code %q", code)
	}
	return code, nil
}

func (s *Service) fuzzyLookup(ctx context.Context, text string, pair domain.LangPair) (string, bool, error) {
	recent, err := s.cache.RecentByPair(ctx, pair.Src, pair.Tgt, fuzzyWindow)
	if err != nil {
		return "", false, err
	}
	var best *domain.CacheEntry
	bestScore := fuzzyThreshold
	for _, e := range recent {
		if score := DiceSimilarity(text, e.SourceText); score > bestScore {
			best, bestScore = e, score
		}
	}
	if best == nil {
		return "", false, nil
	}
	if err := s.cache.Touch(ctx, best.ID); err != nil {
		return "", false, err
	}
	s.log.Debug("fuzzy cache reuse",
		zap.String("score", strconv.FormatFloat(bestScore, 'f', 3, 64)),
		zap.String("source", parse.Abbreviate(best.SourceText, 60)))
	return best.Translation, true, nil
}

func isRetryable(err error) bool {
	msg := err.Error()
	for _, marker := range []string{"no translation", "parse", "unmarshal", "unexpected end", "invalid character", "timeout", "deadline"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
