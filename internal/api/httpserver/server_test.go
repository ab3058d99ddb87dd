package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seven-pz/translationmdexe/internal/adapters/db/sqlite"
	mdparse "github.com/seven-pz/translationmdexe/internal/adapters/parser/markdown"
	parserreg "github.com/seven-pz/translationmdexe/internal/adapters/parser/registry"
	"github.com/seven-pz/translationmdexe/internal/domain"
	"github.com/seven-pz/translationmdexe/internal/license"
	"github.com/seven-pz/translationmdexe/internal/usecase/documents"
	"github.com/seven-pz/translationmdexe/internal/usecase/jobs"
	"github.com/seven-pz/translationmdexe/internal/usecase/review"
	"github.com/seven-pz/translationmdexe/internal/usecase/translator"
)

type stubAuth struct{}

func (stubAuth) Check(user, password string) (*license.Status, error) {
	if user == "admin" && password == "pw" {
		return &license.Status{User: "admin", LicenseType: license.LicenseAdmin, DaysLeft: 10}, nil
	}
	return nil, license.ErrBadPassword
}

type stubTexter struct{}

func (stubTexter) TranslateText(_ context.Context, text string, _ translator.Options) (string, error) {
	return "T(" + text + ")", nil
}

type stubJobs struct {
	started  []jobs.TranslateDocumentParams
	canceled []int64
}

func (s *stubJobs) StartTranslateDocument(_ context.Context, p jobs.TranslateDocumentParams) (int64, error) {
	s.started = append(s.started, p)
	return int64(len(s.started)), nil
}

func (s *stubJobs) Cancel(id int64) { s.canceled = append(s.canceled, id) }

type testServer struct {
	srv     *Server
	jobs    *stubJobs
	docRepo *sqlite.DocumentRepo
	trRepo  *sqlite.TranslationRepo
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	dir := t.TempDir()
	db, err := sqlite.Init(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	docRepo := sqlite.NewDocumentRepo(db)
	segRepo := sqlite.NewSegmentRepo(db)
	trRepo := sqlite.NewTranslationRepo(db)

	parsers := parserreg.New()
	parsers.Register(mdparse.New())

	js := &stubJobs{}
	srv := New(Deps{
		Auth:         stubAuth{},
		Docs:         documents.NewService(docRepo, segRepo, parsers),
		Texter:       stubTexter{},
		Jobs:         js,
		Review:       review.NewService(docRepo, trRepo),
		JobRepo:      sqlite.NewJobRepo(db),
		Translations: trRepo,
		Reports:      sqlite.NewReportRepo(db),
		Settings:     sqlite.NewSettingsRepo(db),
		Templates:    sqlite.NewTemplateRepo(db),
		DefaultPair:  "fr-en",
		UploadDir:    filepath.Join(dir, "uploads"),
	})
	return &testServer{srv: srv, jobs: js, docRepo: docRepo, trRepo: trRepo}
}

func (ts *testServer) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	ts.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) login(t *testing.T) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/login",
		strings.NewReader(`{"user":"admin","password":"pw"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := ts.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp loginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func authed(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t)
	assert.NotEmpty(t, token)

	req := httptest.NewRequest(http.MethodPost, "/api/login",
		strings.NewReader(`{"user":"admin","password":"nope"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := ts.do(t, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, httptest.NewRequest(http.MethodGet, "/api/history", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := authed(httptest.NewRequest(http.MethodGet, "/api/history", nil), "bogus-token")
	rec = ts.do(t, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealthzOpen(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTranslateTextEndpoint(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t)

	req := authed(httptest.NewRequest(http.MethodPost, "/api/text",
		strings.NewReader(`{"text":"Bonjour"}`)), token)
	req.Header.Set("Content-Type", "application/json")
	rec := ts.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"translation":"T(Bonjour)"}`, rec.Body.String())

	// empty text rejected
	req = authed(httptest.NewRequest(http.MethodPost, "/api/text",
		strings.NewReader(`{"text":""}`)), token)
	req.Header.Set("Content-Type", "application/json")
	rec = ts.do(t, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// bad pair rejected
	req = authed(httptest.NewRequest(http.MethodPost, "/api/text",
		strings.NewReader(`{"text":"x","pair":"nope"}`)), token)
	req.Header.Set("Content-Type", "application/json")
	rec = ts.do(t, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadStartsJob(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "guide.md")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("# Titre\n\nBonjour."))
	require.NoError(t, mw.WriteField("pair", "fr-en"))
	require.NoError(t, mw.Close())

	req := authed(httptest.NewRequest(http.MethodPost, "/api/documents", &buf), token)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := ts.do(t, req)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp map[string]int64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotZero(t, resp["document_id"])
	assert.NotZero(t, resp["job_id"])
	require.Len(t, ts.jobs.started, 1)
	assert.Equal(t, "fr-en", ts.jobs.started[0].Pair)
}

func TestReviseEndpoint(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t)
	ctx := context.Background()

	doc := &domain.Document{
		Name: "a.md", Path: "/tmp/a.md", Format: "markdown",
		FileHash: sqlite.HashBytes([]byte("a")), ContentHash: sqlite.HashBytes([]byte("b")),
		Status: domain.DocumentStatusTranslated,
	}
	require.NoError(t, ts.docRepo.Create(ctx, doc))
	require.NoError(t, ts.trRepo.Create(ctx, &domain.Translation{
		DocumentID: doc.ID, Pair: "fr-en", Content: "machine",
	}))

	req := authed(httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/api/documents/%d/revise", doc.ID),
		strings.NewReader(`{"content":"human","comment":"better"}`)), token)
	req.Header.Set("Content-Type", "application/json")
	rec := ts.do(t, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var tr domain.Translation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tr))
	assert.Equal(t, 2, tr.Version)
	assert.Equal(t, "admin", tr.RevisedBy)

	// latest now serves the revision
	req = authed(httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/api/documents/%d/latest", doc.ID), nil), token)
	rec = ts.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tr))
	assert.Equal(t, "human", tr.Content)
}

func TestSettingsEndpoints(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t)

	req := authed(httptest.NewRequest(http.MethodPut, "/api/settings/theme",
		strings.NewReader(`{"value":"dark"}`)), token)
	req.Header.Set("Content-Type", "application/json")
	rec := ts.do(t, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	req = authed(httptest.NewRequest(http.MethodGet, "/api/settings/theme", nil), token)
	rec = ts.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"key":"theme","value":"dark"}`, rec.Body.String())
}

func TestStatsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t)

	req := authed(httptest.NewRequest(http.MethodGet, "/api/stats", nil), token)
	rec := ts.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var st domain.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Zero(t, st.TotalDocuments)
}

func TestCancelJobEndpoint(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t)

	req := authed(httptest.NewRequest(http.MethodDelete, "/api/jobs/7", nil), token)
	rec := ts.do(t, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []int64{7}, ts.jobs.canceled)
}
