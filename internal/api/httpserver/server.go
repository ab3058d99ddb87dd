package httpserver

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/seven-pz/translationmdexe/internal/license"
	"github.com/seven-pz/translationmdexe/internal/metrics"
	"github.com/seven-pz/translationmdexe/internal/ports"
	"github.com/seven-pz/translationmdexe/internal/usecase/documents"
	"github.com/seven-pz/translationmdexe/internal/usecase/jobs"
	"github.com/seven-pz/translationmdexe/internal/usecase/review"
	"github.com/seven-pz/translationmdexe/internal/usecase/translator"
)

// Texter translates free text.
type Texter interface {
	TranslateText(ctx context.Context, text string, opts translator.Options) (string, error)
}

// JobStarter launches and cancels document jobs.
type JobStarter interface {
	StartTranslateDocument(ctx context.Context, params jobs.TranslateDocumentParams) (int64, error)
	Cancel(jobID int64)
}

// Authenticator checks credentials against the vault.
type Authenticator interface {
	Check(user, password string) (*license.Status, error)
}

type Server struct {
	echo         *echo.Echo
	log          *zap.Logger
	auth         Authenticator
	sessions     *sessionStore
	docs         *documents.Service
	texter       Texter
	jobs         JobStarter
	review       *review.Service
	jobRepo      ports.JobRepository
	translations ports.TranslationRepository
	reports      ports.ReportRepository
	settings     ports.SettingsRepository
	templates    ports.TemplateRepository
	defaultPair  string
	uploadDir    string
}

type Deps struct {
	Log          *zap.Logger
	Auth         Authenticator
	Docs         *documents.Service
	Texter       Texter
	Jobs         JobStarter
	Review       *review.Service
	JobRepo      ports.JobRepository
	Translations ports.TranslationRepository
	Reports      ports.ReportRepository
	Settings     ports.SettingsRepository
	Templates    ports.TemplateRepository
	DefaultPair  string
	UploadDir    string
}

func New(d Deps) *Server {
	s := &Server{
		log:          d.Log,
		auth:         d.Auth,
		sessions:     newSessionStore(),
		docs:         d.Docs,
		texter:       d.Texter,
		jobs:         d.Jobs,
		review:       d.Review,
		jobRepo:      d.JobRepo,
		translations: d.Translations,
		reports:      d.Reports,
		settings:     d.Settings,
		templates:    d.Templates,
		defaultPair:  d.DefaultPair,
		uploadDir:    d.UploadDir,
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(s.requestLogger)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")
	api.POST("/login", s.handleLogin)

	authed := api.Group("", s.requireSession)
	authed.POST("/text", s.handleText)
	authed.POST("/documents", s.handleUpload)
	authed.GET("/documents", s.handleListDocuments)
	authed.GET("/documents/:id/latest", s.handleLatestTranslation)
	authed.GET("/documents/:id/translations", s.handleListTranslations)
	authed.POST("/documents/:id/revise", s.handleRevise)
	authed.GET("/jobs", s.handleListJobs)
	authed.GET("/jobs/:id", s.handleGetJob)
	authed.GET("/jobs/:id/logs", s.handleJobLogs)
	authed.DELETE("/jobs/:id", s.handleCancelJob)
	authed.GET("/history", s.handleHistory)
	authed.GET("/stats", s.handleStats)
	authed.GET("/settings/:key", s.handleGetSetting)
	authed.PUT("/settings/:key", s.handlePutSetting)
	authed.PUT("/templates", s.handlePutTemplate)

	s.echo = e
	return s
}

func (s *Server) Start(addr string) error { return s.echo.Start(addr) }

func (s *Server) Shutdown(ctx context.Context) error { return s.echo.Shutdown(ctx) }

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler { return s.echo }

func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		reqID := uuid.NewString()
		c.Response().Header().Set("X-Request-Id", reqID)

		err := next(c)
		if err != nil {
			c.Error(err)
		}

		status := c.Response().Status
		route := c.Path()
		metrics.HTTPDuration.WithLabelValues(route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
		s.log.Info("http request",
			zap.String("request_id", reqID),
			zap.String("method", c.Request().Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("took", time.Since(start)))
		return nil
	}
}

func (s *Server) requireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
		}
		user, ok := s.sessions.lookup(token)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}
		c.Set("user", user)
		return next(c)
	}
}
