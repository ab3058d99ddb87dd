package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/seven-pz/translationmdexe/internal/domain"
	"github.com/seven-pz/translationmdexe/internal/metrics"
	"github.com/seven-pz/translationmdexe/internal/ports"
	"github.com/seven-pz/translationmdexe/internal/usecase/exporter"
	"github.com/seven-pz/translationmdexe/internal/usecase/translator"
)

const segmentTimeout = 60 * time.Second

// TranslateDocumentParams are the persisted parameters of a document job.
type TranslateDocumentParams struct {
	DocumentID  int64  `json:"document_id"`
	Pair        string `json:"lang_pair"`
	Model       string `json:"model,omitempty"`
	OutputPath  string `json:"output_path,omitempty"`
	BypassCache bool   `json:"bypass_cache,omitempty"`
}

// EventEmitter receives job lifecycle notifications.
type EventEmitter interface {
	Emit(event string, payload any)
}

type nopEmitter struct{}

func (nopEmitter) Emit(string, any) {}

// Runner executes document translation jobs in the background, one
// goroutine per job, and tracks cancel functions for active jobs.
type Runner struct {
	jobs         ports.JobRepository
	docs         ports.DocumentRepository
	segs         ports.SegmentRepository
	translations ports.TranslationRepository
	translator   *translator.Service
	exporter     *exporter.Service
	emitter      EventEmitter
	log          *zap.Logger

	mu     sync.Mutex
	active map[int64]context.CancelFunc
	done   map[int64]chan struct{}
}

func NewRunner(
	jobs ports.JobRepository,
	docs ports.DocumentRepository,
	segs ports.SegmentRepository,
	translations ports.TranslationRepository,
	tr *translator.Service,
	exp *exporter.Service,
	emitter EventEmitter,
	log *zap.Logger,
) *Runner {
	if emitter == nil {
		emitter = nopEmitter{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{
		jobs:         jobs,
		docs:         docs,
		segs:         segs,
		translations: translations,
		translator:   tr,
		exporter:     exp,
		emitter:      emitter,
		log:          log,
		active:       map[int64]context.CancelFunc{},
		done:         map[int64]chan struct{}{},
	}
}

// StartTranslateDocument creates the job record and launches the worker.
func (r *Runner) StartTranslateDocument(ctx context.Context, params TranslateDocumentParams) (int64, error) {
	pair, err := domain.ParsePair(params.Pair)
	if err != nil {
		return 0, err
	}
	doc, err := r.docs.Get(ctx, params.DocumentID)
	if err != nil {
		return 0, err
	}
	if doc == nil {
		return 0, fmt.Errorf("document %d not found", params.DocumentID)
	}
	segs, err := r.segs.ListByDocument(ctx, doc.ID)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, sg := range segs {
		if sg.Kind == domain.SegmentText && strings.TrimSpace(sg.Text) != "" {
			total++
		}
	}
	raw, _ := json.Marshal(params)
	jobID, err := r.jobs.Create(ctx, &domain.Job{
		Type:       domain.JobTranslateDocument,
		Status:     domain.JobStatusQueued,
		DocumentID: &doc.ID,
		ParamsRaw:  string(raw),
		Total:      total,
	})
	if err != nil {
		return 0, err
	}

	jctx, cancel := context.WithCancel(context.Background())
	doneCh := make(chan struct{})
	r.mu.Lock()
	r.active[jobID] = cancel
	r.done[jobID] = doneCh
	r.mu.Unlock()

	go func() {
		defer close(doneCh)
		defer func() {
			if rec := recover(); rec != nil {
				r.fail(context.Background(), jobID, doc.ID, 0, total, fmt.Errorf("job panicked: %v", rec))
			}
			r.mu.Lock()
			delete(r.active, jobID)
			delete(r.done, jobID)
			r.mu.Unlock()
			cancel()
		}()
		r.run(jctx, jobID, doc, segs, total, pair, params)
	}()
	return jobID, nil
}

// Cancel stops a running job. Canceling an inactive job is a no-op.
func (r *Runner) Cancel(jobID int64) {
	r.mu.Lock()
	cancel, ok := r.active[jobID]
	r.mu.Unlock()
	if ok {
		cancel()
	}
}

// Wait blocks until the job goroutine exits. For inactive jobs it
// returns immediately.
func (r *Runner) Wait(jobID int64) {
	r.mu.Lock()
	ch, ok := r.done[jobID]
	r.mu.Unlock()
	if ok {
		<-ch
	}
}

func (r *Runner) run(ctx context.Context, jobID int64, doc *domain.Document, segs []*domain.Segment, total int, pair domain.LangPair, params TranslateDocumentParams) {
	bg := context.Background()
	r.setStatus(bg, jobID, 0, total, domain.JobStatusRunning)
	r.logJob(bg, jobID, "info", fmt.Sprintf("translating %s (%s)", doc.Name, pair))
	r.emitter.Emit("job:started", map[string]any{"job_id": jobID, "document_id": doc.ID})

	opts := translator.Options{
		Pair:         pair,
		Model:        params.Model,
		DocumentName: doc.Name,
		BypassCache:  params.BypassCache,
	}

	translated := make(map[int64]string, len(segs))
	done := 0
	for _, sg := range segs {
		if ctx.Err() != nil {
			r.finish(bg, jobID, done, total, domain.JobStatusCanceled, "canceled")
			return
		}
		if sg.Kind != domain.SegmentText || strings.TrimSpace(sg.Text) == "" {
			continue
		}
		itemID, err := r.jobs.AddItem(bg, &domain.JobItem{JobID: jobID, SegmentID: &sg.ID, Status: domain.JobStatusRunning})
		if err != nil {
			r.fail(bg, jobID, doc.ID, done, total, err)
			return
		}

		sctx, scancel := context.WithTimeout(ctx, segmentTimeout)
		res, err := r.translator.TranslateSegment(sctx, sg.Text, opts)
		scancel()
		if err != nil {
			if ctx.Err() != nil {
				_ = r.jobs.UpdateItem(bg, itemID, domain.JobStatusCanceled, "")
				r.finish(bg, jobID, done, total, domain.JobStatusCanceled, "canceled")
				return
			}
			_ = r.jobs.UpdateItem(bg, itemID, domain.JobStatusFailed, err.Error())
			r.fail(bg, jobID, doc.ID, done, total, fmt.Errorf("segment %d: %w", sg.Idx, err))
			return
		}
		if err := r.jobs.UpdateItem(bg, itemID, domain.JobStatusDone, ""); err != nil {
			r.fail(bg, jobID, doc.ID, done, total, err)
			return
		}
		translated[sg.ID] = res.Text
		done++
		r.setStatus(bg, jobID, done, total, domain.JobStatusRunning)
		r.emitter.Emit("job:progress", map[string]any{"job_id": jobID, "done": done})
	}

	outPath, err := r.exporter.BuildToFile(bg, doc, segs, translated, params.OutputPath)
	if err != nil {
		r.fail(bg, jobID, doc.ID, done, total, err)
		return
	}

	content := assembleContent(segs, translated)
	if err := r.translations.Create(bg, &domain.Translation{
		DocumentID: doc.ID,
		Pair:       pair.String(),
		Content:    content,
		Status:     domain.TranslationStatusMachine,
	}); err != nil {
		r.fail(bg, jobID, doc.ID, done, total, err)
		return
	}
	if err := r.docs.UpdateStatus(bg, doc.ID, domain.DocumentStatusTranslated); err != nil {
		r.fail(bg, jobID, doc.ID, done, total, err)
		return
	}

	r.finish(bg, jobID, done, total, domain.JobStatusDone, "output written to "+outPath)
	r.emitter.Emit("job:done", map[string]any{"job_id": jobID, "output": outPath})
}

func (r *Runner) setStatus(ctx context.Context, jobID int64, done, total int, status string) {
	if err := r.jobs.UpdateProgress(ctx, jobID, done, total, status); err != nil {
		r.log.Error("update job progress", zap.Int64("job_id", jobID), zap.Error(err))
	}
}

func (r *Runner) logJob(ctx context.Context, jobID int64, level, msg string) {
	if err := r.jobs.AddLog(ctx, &domain.JobLog{JobID: jobID, Level: level, Message: msg}); err != nil {
		r.log.Error("append job log", zap.Int64("job_id", jobID), zap.Error(err))
	}
}

func (r *Runner) finish(ctx context.Context, jobID int64, done, total int, status, msg string) {
	r.setStatus(ctx, jobID, done, total, status)
	r.logJob(ctx, jobID, "info", msg)
	metrics.JobsTotal.WithLabelValues(status).Inc()
}

func (r *Runner) fail(ctx context.Context, jobID, docID int64, done, total int, err error) {
	r.log.Error("job failed", zap.Int64("job_id", jobID), zap.Error(err))
	r.logJob(ctx, jobID, "error", err.Error())
	r.setStatus(ctx, jobID, done, total, domain.JobStatusFailed)
	if uerr := r.docs.UpdateStatus(ctx, docID, domain.DocumentStatusFailed); uerr != nil {
		r.log.Error("update document status", zap.Int64("document_id", docID), zap.Error(uerr))
	}
	metrics.JobsTotal.WithLabelValues(domain.JobStatusFailed).Inc()
	r.emitter.Emit("job:failed", map[string]any{"job_id": jobID, "error": err.Error()})
}

func assembleContent(segs []*domain.Segment, translated map[int64]string) string {
	lines := make([]string, 0, len(segs))
	for _, sg := range segs {
		if t, ok := translated[sg.ID]; ok {
			lines = append(lines, t)
			continue
		}
		lines = append(lines, sg.Text)
	}
	return strings.Join(lines, "\n")
}
