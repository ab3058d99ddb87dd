package httpserver

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/seven-pz/translationmdexe/internal/domain"
	"github.com/seven-pz/translationmdexe/internal/license"
	"github.com/seven-pz/translationmdexe/internal/usecase/documents"
	"github.com/seven-pz/translationmdexe/internal/usecase/jobs"
	"github.com/seven-pz/translationmdexe/internal/usecase/review"
	"github.com/seven-pz/translationmdexe/internal/usecase/translator"
)

type loginRequest struct {
	User     string `json:"user"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token       string `json:"token"`
	LicenseType string `json:"license_type"`
	DaysLeft    int    `json:"days_left"`
}

func (s *Server) handleLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	st, err := s.auth.Check(req.User, req.Password)
	switch {
	case errors.Is(err, license.ErrUnknownUser), errors.Is(err, license.ErrBadPassword):
		return echo.NewHTTPError(http.StatusUnauthorized, "bad credentials")
	case errors.Is(err, license.ErrLicenseExpired):
		return echo.NewHTTPError(http.StatusForbidden, "license expired")
	case err != nil:
		return err
	}
	return c.JSON(http.StatusOK, loginResponse{
		Token:       s.sessions.issue(st.User),
		LicenseType: st.LicenseType,
		DaysLeft:    st.DaysLeft,
	})
}

type textRequest struct {
	Text        string `json:"text"`
	Pair        string `json:"pair"`
	BypassCache bool   `json:"bypass_cache"`
}

func (s *Server) handleText(c echo.Context) error {
	var req textRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Text == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "text is required")
	}
	if req.Pair == "" {
		req.Pair = s.defaultPair
	}
	pair, err := domain.ParsePair(req.Pair)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	out, err := s.texter.TranslateText(c.Request().Context(), req.Text, translator.Options{
		Pair:        pair,
		BypassCache: req.BypassCache,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"translation": out})
}

func (s *Server) handleUpload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	pairStr := c.FormValue("pair")
	if pairStr == "" {
		pairStr = s.defaultPair
	}
	if _, err := domain.ParsePair(pairStr); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	format, err := documents.FormatForPath(fh.Filename)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	src, err := fh.Open()
	if err != nil {
		return err
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return err
	}

	// Persist the upload so exporters can reread the original bytes.
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(s.uploadDir, filepath.Base(fh.Filename))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}

	doc, _, err := s.docs.Ingest(c.Request().Context(), fh.Filename, path, format, data)
	if err != nil {
		return err
	}
	jobID, err := s.jobs.StartTranslateDocument(c.Request().Context(), jobs.TranslateDocumentParams{
		DocumentID:  doc.ID,
		Pair:        pairStr,
		BypassCache: c.FormValue("bypass_cache") == "true",
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, map[string]any{
		"document_id": doc.ID,
		"job_id":      jobID,
	})
}

func (s *Server) handleListDocuments(c echo.Context) error {
	docs, err := s.docs.List(c.Request().Context(), queryLimit(c, 50))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, docs)
}

func (s *Server) handleLatestTranslation(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	pair := c.QueryParam("pair")
	if pair == "" {
		pair = s.defaultPair
	}
	t, err := s.translations.Latest(c.Request().Context(), id, pair)
	if err != nil {
		return err
	}
	if t == nil {
		return echo.NewHTTPError(http.StatusNotFound, "no translation for document")
	}
	return c.JSON(http.StatusOK, t)
}

func (s *Server) handleListJobs(c echo.Context) error {
	list, err := s.jobRepo.List(c.Request().Context(), queryLimit(c, 50))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (s *Server) handleGetJob(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	j, err := s.jobRepo.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if j == nil {
		return echo.NewHTTPError(http.StatusNotFound, "job not found")
	}
	return c.JSON(http.StatusOK, j)
}

func (s *Server) handleJobLogs(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	logs, err := s.jobRepo.ListLogs(c.Request().Context(), id, queryLimit(c, 200))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, logs)
}

func (s *Server) handleCancelJob(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	s.jobs.Cancel(id)
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleHistory(c echo.Context) error {
	entries, err := s.reports.History(c.Request().Context(), queryLimit(c, 100))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entries)
}

func (s *Server) handleStats(c echo.Context) error {
	st, err := s.reports.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, st)
}

func (s *Server) handleListTranslations(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	list, err := s.translations.ListByDocument(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

type reviseRequest struct {
	Pair         string `json:"pair"`
	Content      string `json:"content"`
	Comment      string `json:"comment"`
	QualityScore *int   `json:"quality_score"`
}

func (s *Server) handleRevise(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req reviseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Pair == "" {
		req.Pair = s.defaultPair
	}
	user, _ := c.Get("user").(string)
	t, err := s.review.Submit(c.Request().Context(), review.Revision{
		DocumentID:   id,
		Pair:         req.Pair,
		Content:      req.Content,
		RevisedBy:    user,
		Comment:      req.Comment,
		QualityScore: req.QualityScore,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, t)
}

func (s *Server) handleGetSetting(c echo.Context) error {
	val, err := s.settings.Get(c.Request().Context(), c.Param("key"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, domain.Setting{Key: c.Param("key"), Value: val})
}

func (s *Server) handlePutSetting(c echo.Context) error {
	var req struct {
		Value string `json:"value"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := s.settings.Set(c.Request().Context(), c.Param("key"), req.Value); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handlePutTemplate(c echo.Context) error {
	var t domain.Template
	if err := c.Bind(&t); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if t.Scope == "" || t.Type == "" || t.Role == "" || t.Body == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "scope, type, role and body are required")
	}
	if err := s.templates.Upsert(c.Request().Context(), &t); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func queryLimit(c echo.Context, def int) int {
	if raw := c.QueryParam("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			return n
		}
	}
	return def
}
