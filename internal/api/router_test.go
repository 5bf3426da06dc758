package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/user-admin/internal/core/service"
	"github.com/99minutos/user-admin/internal/infrastructure/db/sqlite"
	"github.com/99minutos/user-admin/internal/infrastructure/http/handlers"
)

type testApp struct {
	e     *echo.Echo
	users *service.UserService
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	ctx := context.Background()
	log := zerolog.Nop()

	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "router.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	hasher := service.NewBcryptHasher(bcrypt.MinCost)
	roles := service.NewRoleService(sqlite.NewRoleRepository(db), log)
	users := service.NewUserService(sqlite.NewUserRepository(db), roles, hasher, nil, log)
	require.NoError(t, service.Bootstrap(ctx, roles, users, "root", "rootpw", log))

	e, err := NewRouter(Deps{
		Users:     users,
		Roles:     roles,
		Auth:      service.NewAuthService(users, hasher, nil, "secret", time.Hour, log),
		JWTSecret: "secret",
		TokenTTL:  time.Hour,
		Readiness: map[string]handlers.Pinger{"store": db},
		Registry:  prometheus.NewRegistry(),
		Log:       log,
	})
	require.NoError(t, err)
	return &testApp{e: e, users: users}
}

func (a *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) login(t *testing.T, username, password string) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/login",
		strings.NewReader(`{"username":"`+username+`","password":"`+password+`"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := a.do(req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func authed(method, target, token string, form url.Values) *http.Request {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	return req
}

func TestRouter_AdminFlow(t *testing.T) {
	app := newTestApp(t)
	token := app.login(t, "root", "rootpw")

	rec := app.do(authed(http.MethodPost, "/admin/add", token, url.Values{
		"username": {"bob"}, "password": {"pw1"}, "age": {"30"}, "roleIds": {"2"},
	}))
	require.Equal(t, http.StatusFound, rec.Code, rec.Body.String())
	assert.Equal(t, "/admin", rec.Header().Get(echo.HeaderLocation))

	bob, err := app.users.Authenticate(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"ROLE_USER"}, bob.RoleNames())

	rec = app.do(authed(http.MethodGet, "/admin", token, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "bob")

	rec = app.do(authed(http.MethodPost, "/admin/add", token, url.Values{"username": {"bob"}, "password": {"x"}}))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = app.do(authed(http.MethodGet, "/admin/edit/999", token, nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/admin?error=user_not_found", rec.Header().Get(echo.HeaderLocation))

	rec = app.do(authed(http.MethodPost, "/admin/edit", token, url.Values{
		"userId": {"2"}, "username": {"bobby"}, "firstName": {"Bob"},
	}))
	require.Equal(t, http.StatusFound, rec.Code, rec.Body.String())
	renamed, err := app.users.GetUser(context.Background(), bob.ID)
	require.NoError(t, err)
	assert.Equal(t, "bobby", renamed.Username)
	assert.Empty(t, renamed.Roles)
	assert.Equal(t, bob.PasswordHash, renamed.PasswordHash)

	rec = app.do(authed(http.MethodPost, "/admin/delete/2", token, nil))
	require.Equal(t, http.StatusFound, rec.Code)
	_, err = app.users.GetUser(context.Background(), bob.ID)
	assert.Error(t, err)

	rec = app.do(authed(http.MethodPost, "/admin/delete/2", token, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_AccessControl(t *testing.T) {
	app := newTestApp(t)
	rootToken := app.login(t, "root", "rootpw")

	rec := app.do(authed(http.MethodPost, "/admin/add", rootToken, url.Values{
		"username": {"carol"}, "password": {"pw"}, "roleIds": {"2"},
	}))
	require.Equal(t, http.StatusFound, rec.Code)

	userToken := app.login(t, "carol", "pw")
	assert.Equal(t, http.StatusForbidden, app.do(authed(http.MethodGet, "/admin", userToken, nil)).Code)

	req := authed(http.MethodGet, "/user", userToken, nil)
	req.Header.Set(echo.HeaderAccept, echo.MIMEApplicationJSON)
	rec = app.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"carol"`)

	assert.Equal(t, http.StatusUnauthorized, app.do(httptest.NewRequest(http.MethodGet, "/admin", nil)).Code)

	browser := httptest.NewRequest(http.MethodGet, "/admin", nil)
	browser.Header.Set(echo.HeaderAccept, "text/html")
	rec = app.do(browser)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
}

func TestRouter_DemotedOrDeletedAdminLosesAccess(t *testing.T) {
	app := newTestApp(t)
	rootToken := app.login(t, "root", "rootpw")

	for _, name := range []string{"dan", "erin"} {
		rec := app.do(authed(http.MethodPost, "/admin/add", rootToken, url.Values{
			"username": {name}, "password": {"pw"}, "roleIds": {"1"},
		}))
		require.Equal(t, http.StatusFound, rec.Code, rec.Body.String())
	}
	danToken := app.login(t, "dan", "pw")
	erinToken := app.login(t, "erin", "pw")
	require.Equal(t, http.StatusOK, app.do(authed(http.MethodGet, "/admin", danToken, nil)).Code)
	require.Equal(t, http.StatusOK, app.do(authed(http.MethodGet, "/admin", erinToken, nil)).Code)

	dan, err := app.users.Authenticate(context.Background(), "dan")
	require.NoError(t, err)
	erin, err := app.users.Authenticate(context.Background(), "erin")
	require.NoError(t, err)

	rec := app.do(authed(http.MethodPost, "/admin/delete/"+strconv.FormatInt(dan.ID, 10), rootToken, nil))
	require.Equal(t, http.StatusFound, rec.Code)
	rec = app.do(authed(http.MethodPost, "/admin/edit", rootToken, url.Values{
		"userId": {strconv.FormatInt(erin.ID, 10)}, "username": {"erin"}, "roleIds": {"2"},
	}))
	require.Equal(t, http.StatusFound, rec.Code, rec.Body.String())

	assert.Equal(t, http.StatusUnauthorized, app.do(authed(http.MethodGet, "/admin", danToken, nil)).Code)
	assert.Equal(t, http.StatusForbidden, app.do(authed(http.MethodGet, "/admin", erinToken, nil)).Code)
	assert.Equal(t, http.StatusOK, app.do(authed(http.MethodGet, "/user", erinToken, nil)).Code)
}

func TestRouter_LoginRejectsBadCredentials(t *testing.T) {
	app := newTestApp(t)

	for _, body := range []string{
		`{"username":"root","password":"nope"}`,
		`{"username":"ghost","password":"nope"}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := app.do(req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid credentials")
	}
}

func TestRouter_FormPostsRequireCSRF(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(httptest.NewRequest(http.MethodGet, "/login", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(url.Values{
		"username": {"root"}, "password": {"rootpw"},
	}.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec = app.do(req)
	assert.NotEqual(t, http.StatusFound, rec.Code, "form login without csrf token must be rejected")
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	app := newTestApp(t)

	assert.Equal(t, http.StatusOK, app.do(httptest.NewRequest(http.MethodGet, "/health", nil)).Code)

	rec := app.do(httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"store"`)

	rec = app.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "useradmin")
}
