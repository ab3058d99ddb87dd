package cli

import (
	"database/sql"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	exporterreg "github.com/seven-pz/translationmdexe/internal/adapters/exporter/registry"
	docxexport "github.com/seven-pz/translationmdexe/internal/adapters/exporter/docx"
	mdexport "github.com/seven-pz/translationmdexe/internal/adapters/exporter/markdown"
	txtexport "github.com/seven-pz/translationmdexe/internal/adapters/exporter/text"
	"github.com/seven-pz/translationmdexe/internal/adapters/db/sqlite"
	"github.com/seven-pz/translationmdexe/internal/adapters/llm/factory"
	docxparse "github.com/seven-pz/translationmdexe/internal/adapters/parser/docx"
	mdparse "github.com/seven-pz/translationmdexe/internal/adapters/parser/markdown"
	parserreg "github.com/seven-pz/translationmdexe/internal/adapters/parser/registry"
	txtparse "github.com/seven-pz/translationmdexe/internal/adapters/parser/text"
	"github.com/seven-pz/translationmdexe/internal/adapters/prompt"
	"github.com/seven-pz/translationmdexe/internal/config"
	"github.com/seven-pz/translationmdexe/internal/license"
	"github.com/seven-pz/translationmdexe/internal/logging"
	"github.com/seven-pz/translationmdexe/internal/ports"
	"github.com/seven-pz/translationmdexe/internal/usecase/documents"
	"github.com/seven-pz/translationmdexe/internal/usecase/exporter"
	"github.com/seven-pz/translationmdexe/internal/usecase/jobs"
	"github.com/seven-pz/translationmdexe/internal/usecase/review"
	"github.com/seven-pz/translationmdexe/internal/usecase/translator"
)

// App wires the whole service together for the CLI commands.
type App struct {
	Cfg *config.Config
	Log *zap.Logger
	DB  *sql.DB

	Docs         *documents.Service
	Translator   *translator.Service
	Exporter     *exporter.Service
	Review       *review.Service
	Runner       *jobs.Runner
	Provider     ports.Provider
	Vault        *license.Vault
	Lock         *license.MachineLock
	JobRepo      ports.JobRepository
	Translations ports.TranslationRepository
	Reports      ports.ReportRepository
	Settings     ports.SettingsRepository
	Templates    ports.TemplateRepository
}

func NewApp(cfgPath string) (*App, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	log, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, err
	}

	db, err := sqlite.Init(cfg.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	vault, err := license.OpenVault(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	generated, err := vault.Bootstrap(cfg.License.BootstrapPassword)
	if err != nil {
		return nil, err
	}
	if generated != "" {
		fmt.Printf("admin account created, password: %s\n", generated)
	}
	lock := license.NewMachineLock(vault, cfg.License.ActivationCodes)

	provider, err := factory.New(factory.Options{
		Type:    cfg.Provider.Type,
		APIKey:  cfg.Provider.APIKey,
		BaseURL: cfg.Provider.BaseURL,
		Model:   cfg.Provider.Model,
		Timeout: cfg.Provider.Timeout,
	})
	if err != nil {
		return nil, err
	}

	docsRepo := sqlite.NewDocumentRepo(db)
	segRepo := sqlite.NewSegmentRepo(db)
	trRepo := sqlite.NewTranslationRepo(db)
	cacheRepo := sqlite.NewCacheRepo(db)
	jobRepo := sqlite.NewJobRepo(db)
	tplRepo := sqlite.NewTemplateRepo(db)
	reportRepo := sqlite.NewReportRepo(db)
	settingsRepo := sqlite.NewSettingsRepo(db)

	parsers := parserreg.New()
	parsers.Register(mdparse.New())
	parsers.Register(txtparse.New())
	parsers.Register(docxparse.New())

	exporters := exporterreg.New()
	exporters.Register(mdexport.New())
	exporters.Register(txtexport.New())
	exporters.Register(docxexport.New())

	renderer := prompt.NewRenderer(tplRepo)
	trSvc := translator.NewService(provider, renderer, cacheRepo, log)
	expSvc := exporter.NewService(exporters)
	docSvc := documents.NewService(docsRepo, segRepo, parsers)
	reviewSvc := review.NewService(docsRepo, trRepo)
	runner := jobs.NewRunner(jobRepo, docsRepo, segRepo, trRepo, trSvc, expSvc, nil, log)

	return &App{
		Cfg:          cfg,
		Log:          log,
		DB:           db,
		Docs:         docSvc,
		Translator:   trSvc,
		Exporter:     expSvc,
		Review:       reviewSvc,
		Runner:       runner,
		Provider:     provider,
		Vault:        vault,
		Lock:         lock,
		JobRepo:      jobRepo,
		Translations: trRepo,
		Reports:      reportRepo,
		Settings:     settingsRepo,
		Templates:    tplRepo,
	}, nil
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
	if a.Log != nil {
		_ = a.Log.Sync()
	}
}

// UploadDir is where the HTTP server stores uploaded originals.
func (a *App) UploadDir() string {
	return filepath.Join(a.Cfg.DataDir, "uploads")
}
