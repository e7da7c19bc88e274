package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/nsvirk/ssqapi/internal/api"
	"github.com/nsvirk/ssqapi/internal/api/middleware"
	"github.com/nsvirk/ssqapi/internal/config"
	"github.com/nsvirk/ssqapi/internal/lottery"
	"github.com/nsvirk/ssqapi/internal/scraper"
	"github.com/nsvirk/ssqapi/internal/service"
	"github.com/nsvirk/ssqapi/internal/testutil"
	"github.com/nsvirk/ssqapi/pkg/utils/response"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type envelope struct {
	Status    string          `json:"status"`
	Data      json.RawMessage `json:"data"`
	ErrorType string          `json:"error_type"`
	Message   string          `json:"message"`
}

type testServer struct {
	t   *testing.T
	e   *echo.Echo
	db  *gorm.DB
	svc *api.Services
}

func newTestServer(t *testing.T, overrides ...func(*api.Services, *gorm.DB)) *testServer {
	t.Helper()
	cfg, err := config.Load(func(key string) string {
		if key == "SSQ_API_PG_DSN" {
			return "postgres://ssq@localhost/ssq"
		}
		return ""
	})
	require.NoError(t, err)

	db := testutil.NewDB(t)
	svc, err := api.NewServices(cfg, db, nil)
	require.NoError(t, err)
	for _, override := range overrides {
		override(svc, db)
	}

	e := echo.New()
	e.HTTPErrorHandler = api.HTTPErrorHandler
	api.SetupRoutes(e, cfg, svc)
	return &testServer{t: t, e: e, db: db, svc: svc}
}

func (s *testServer) do(req *http.Request, session string) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()
	if session != "" {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: session})
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func (s *testServer) json(method, path string, body interface{}, session string) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return s.do(req, session)
}

func (s *testServer) register(username, password string) {
	s.t.Helper()
	rec, env := s.json(http.MethodPost, "/api/register", map[string]string{"username": username, "password": password}, "")
	require.Equal(s.t, http.StatusCreated, rec.Code, env.Message)
}

func (s *testServer) login(username, password string) string {
	s.t.Helper()
	rec, env := s.json(http.MethodPost, "/api/login", map[string]string{"username": username, "password": password}, "")
	require.Equal(s.t, http.StatusOK, rec.Code, env.Message)
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c.Value
		}
	}
	s.t.Fatal("no session cookie set")
	return ""
}

func TestApprovalFlow(t *testing.T) {
	s := newTestServer(t)
	s.register("admin", "secret1")
	s.register("alice", "secret2")

	rec, env := s.json(http.MethodPost, "/api/register", map[string]string{"username": "alice", "password": "secret3"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, response.InputException, env.ErrorType)

	rec, env = s.json(http.MethodPost, "/api/login", map[string]string{"username": "alice", "password": "secret2"}, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, env.Message, "pending")

	rec, _ = s.json(http.MethodPost, "/api/login", map[string]string{"username": "admin", "password": "nope-nope"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	admin := s.login("admin", "secret1")

	rec, env = s.json(http.MethodGet, "/api/admin/pending-users", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	var pending []struct {
		ID       uint   `json:"id"`
		Username string `json:"username"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &pending))
	require.Len(t, pending, 1)
	assert.Equal(t, "alice", pending[0].Username)

	rec, env = s.json(http.MethodPost, "/api/admin/approve-user", map[string]uint{"user_id": 999}, admin)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, response.NotFoundException, env.ErrorType)

	rec, _ = s.json(http.MethodPost, "/api/admin/approve-user", map[string]uint{"user_id": pending[0].ID}, admin)
	require.Equal(t, http.StatusOK, rec.Code)

	alice := s.login("alice", "secret2")

	rec, env = s.json(http.MethodGet, "/api/me", nil, alice)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"is_admin":false`)

	rec, env = s.json(http.MethodGet, "/api/admin/pending-users", nil, alice)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, response.PermissionException, env.ErrorType)

	rec, _ = s.json(http.MethodPost, "/api/crawl", nil, alice)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestLoginCookie(t *testing.T) {
	s := newTestServer(t)
	s.register("admin", "secret1")

	body := strings.NewReader(`{"username":"admin","password":"secret1"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/login", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderXForwardedProto, "https")
	rec, _ := s.do(req, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	assert.InDelta(t, 86400, cookie.MaxAge, 5)
}

func TestLogout(t *testing.T) {
	s := newTestServer(t)
	s.register("admin", "secret1")
	first := s.login("admin", "secret1")
	second := s.login("admin", "secret1")

	rec, _ := s.json(http.MethodPost, "/api/logout", nil, first)
	require.Equal(t, http.StatusOK, rec.Code)
	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared)

	rec, _ = s.json(http.MethodGet, "/api/me", nil, first)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec, _ = s.json(http.MethodGet, "/api/me", nil, second)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBearerToken(t *testing.T) {
	s := newTestServer(t)
	s.register("admin", "secret1")
	token := s.login("admin", "secret1")

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec, _ := s.do(req, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGenerate(t *testing.T) {
	s := newTestServer(t)
	s.register("admin", "secret1")
	session := s.login("admin", "secret1")

	rec, env := s.json(http.MethodGet, "/api/generate?count=5", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, response.AuthenticationException, env.ErrorType)

	rec, env = s.json(http.MethodGet, "/api/generate?count=5", nil, session)
	require.Equal(t, http.StatusOK, rec.Code, env.Message)
	var data struct {
		Count int            `json:"count"`
		Plays []lottery.Play `json:"plays"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, 5, data.Count)
	require.Len(t, data.Plays, 5)
	for _, p := range data.Plays {
		assert.Len(t, p.Reds, 6)
		assert.Len(t, p.Blue, 2)
	}

	rec, env = s.json(http.MethodGet, "/api/generate", nil, session)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, 1, data.Count)

	for _, q := range []string{"0", "11", "abc"} {
		rec, env = s.json(http.MethodGet, "/api/generate?count="+q, nil, session)
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
		assert.Equal(t, response.InputException, env.ErrorType, q)
	}

	rec, env = s.json(http.MethodGet, "/api/plays", nil, session)
	require.Equal(t, http.StatusOK, rec.Code)
	var plays []json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &plays))
	assert.Len(t, plays, 6)
}

func TestImportAndHistory(t *testing.T) {
	s := newTestServer(t)
	s.register("admin", "secret1")
	session := s.login("admin", "secret1")

	csv := "期号,开奖日期,红1,红2,红3,红4,红5,红6,蓝球\n" +
		"24001,2024-01-02,05,01,03,09,22,33,07\n" +
		"2024002,2024-01-04,12,02,04,06,08,10,12\n"

	upload := func() envelope {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		part, err := w.CreateFormFile("file", "history.csv")
		require.NoError(t, err)
		_, err = part.Write([]byte(csv))
		require.NoError(t, err)
		require.NoError(t, w.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/import", &buf)
		req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
		rec, env := s.do(req, session)
		require.Equal(t, http.StatusOK, rec.Code, env.Message)
		return env
	}

	var summary service.ImportSummary
	require.NoError(t, json.Unmarshal(upload().Data, &summary))
	assert.Equal(t, 2, summary.Imported)
	require.NoError(t, json.Unmarshal(upload().Data, &summary))
	assert.Equal(t, 0, summary.Imported)
	assert.Equal(t, 2, summary.Skipped)

	rec, env := s.json(http.MethodGet, "/api/history?limit=1", nil, session)
	require.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Total int64 `json:"total"`
		Items []struct {
			IssueNumber string `json:"issue_number"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.EqualValues(t, 2, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "2024002", page.Items[0].IssueNumber)

	rec, _ = s.json(http.MethodGet, "/api/history?limit=-3", nil, session)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/history/export", nil)
	rec, _ = s.do(req, session)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), ".xlsx")
	assert.NotZero(t, rec.Body.Len())

	req = httptest.NewRequest(http.MethodPost, "/api/import", strings.NewReader(""))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec, _ = s.do(req, session)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type syntheticRunner struct{}

func (syntheticRunner) Run(ctx context.Context, limit int) scraper.Outcome {
	return scraper.Outcome{
		Source:    "synthetic",
		Synthetic: true,
		Results:   []lottery.Result{testutil.Result("2024901", "2024-01-02", 7, 5, 1, 3, 9, 22, 33)},
	}
}

func TestCrawlReportsSynthetic(t *testing.T) {
	s := newTestServer(t, func(svc *api.Services, _ *gorm.DB) {
		svc.Crawl = service.NewCrawlService(syntheticRunner{}, svc.Import, nil, nil, nil, 10)
	})

	s.register("admin", "secret1")
	session := s.login("admin", "secret1")

	rec, env := s.json(http.MethodPost, "/api/crawl", nil, session)
	require.Equal(t, http.StatusOK, rec.Code, env.Message)
	var summary struct {
		Source    string         `json:"source"`
		Synthetic bool           `json:"synthetic"`
		Imported  int            `json:"imported"`
		Preview   []lottery.Play `json:"preview"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	assert.True(t, summary.Synthetic)
	assert.Equal(t, "synthetic", summary.Source)
	assert.Zero(t, summary.Imported)
	assert.Len(t, summary.Preview, 1)
}

// drawnAfterFirst reports every candidate after the first as already drawn.
type drawnAfterFirst struct {
	calls int
}

func (c *drawnAfterFirst) DrawExists(ctx context.Context, play lottery.Play) (bool, error) {
	c.calls++
	return c.calls > 1, nil
}

func TestGenerateExhaustionReturnsAcceptedPlays(t *testing.T) {
	s := newTestServer(t, func(svc *api.Services, db *gorm.DB) {
		svc.Generator = service.NewGeneratorService(db, service.WithGenerator(&lottery.Generator{
			Domain:      lottery.Standard,
			Checker:     &drawnAfterFirst{},
			MaxAttempts: 5,
		}))
	})

	s.register("admin", "secret1")
	session := s.login("admin", "secret1")

	rec, env := s.json(http.MethodGet, "/api/generate?count=3", nil, session)
	require.Equal(t, http.StatusInternalServerError, rec.Code, env.Message)
	assert.Equal(t, "error", env.Status)
	assert.Equal(t, response.GeneratorException, env.ErrorType)

	var data struct {
		Plays []lottery.Play `json:"plays"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Len(t, data.Plays, 1)
	assert.Len(t, data.Plays[0].Reds, 6)
}

func TestPagesAndNotFound(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/", "/login", "/login.html", "/app", "/app.html"} {
		rec, _ := s.do(httptest.NewRequest(http.MethodGet, path, nil), "")
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "text/html", path)
		assert.Contains(t, rec.Body.String(), "双色球", path)
	}

	rec, env := s.do(httptest.NewRequest(http.MethodGet, "/api/nope", nil), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, response.NotFoundException, env.ErrorType)

	rec, env = s.do(httptest.NewRequest(http.MethodGet, "/api/", nil), "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), "SSQ Picker API")
}

func TestAuditLogs(t *testing.T) {
	s := newTestServer(t)
	s.register("admin", "secret1")
	s.register("bob", "secret2")
	admin := s.login("admin", "secret1")

	rec, env := s.json(http.MethodGet, "/api/admin/pending-users", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	var pending []struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &pending))
	require.Len(t, pending, 1)

	rec, _ = s.json(http.MethodPost, "/api/admin/approve-user", map[string]uint{"user_id": pending[0].ID}, admin)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env = s.json(http.MethodGet, "/api/admin/audit-logs?limit=10", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []struct {
		Actor  string `json:"actor"`
		Action string `json:"action"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "admin", entries[0].Actor)
	assert.Equal(t, "approve-user", entries[0].Action)
}
