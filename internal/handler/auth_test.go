package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdantlabs/verdant-backend/internal/config"
	"github.com/verdantlabs/verdant-backend/internal/model"
	"github.com/verdantlabs/verdant-backend/internal/repository"
	"github.com/verdantlabs/verdant-backend/internal/utils"
)

func testCfg() config.Config {
	return config.Config{
		Env:          "test",
		JWTSecret:    "test-secret",
		TokenTTLDays: 7,
		BcryptCost:   4,
	}
}

// newJSONContext builds an echo context carrying a JSON body.
func newJSONContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestRegisterMissingFields(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	h := NewAuthHandler(testCfg(), repository.NewUserRepo(db))

	cases := []string{
		`{}`,
		`{"name":"n","email":"e@x.com","password":"pw"}`,
		`{"name":"n","email":"e@x.com","role":"NGO"}`,
		`{"name":"n","password":"pw","role":"NGO"}`,
		`{"email":"e@x.com","password":"pw","role":"NGO"}`,
	}
	for _, body := range cases {
		c, rec := newJSONContext(t, http.MethodPost, "/v1/auth/register", body)
		require.NoError(t, h.Register(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %s", body)
	}
	assert.NoError(t, mock.ExpectationsWereMet()) // no DB calls happened
}

func TestRegisterUnknownRole(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	h := NewAuthHandler(testCfg(), repository.NewUserRepo(db))
	c, rec := newJSONContext(t, http.MethodPost, "/v1/auth/register",
		`{"name":"n","email":"e@x.com","password":"pw","role":"WIZARD"}`)
	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterIssuesTokenWithRole(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(11, 1))

	h := NewAuthHandler(testCfg(), repository.NewUserRepo(db))
	c, rec := newJSONContext(t, http.MethodPost, "/v1/auth/register",
		`{"name":"Mangrove Org","email":"NGO@x.com","password":"pw1","role":"ngo"}`)
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		User  userPart `json:"user"`
		Token struct {
			Token string `json:"token"`
		} `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, uint64(11), resp.User.ID)
	assert.Equal(t, "ngo@x.com", resp.User.Email)
	assert.Equal(t, model.RoleNGO, resp.User.Role)

	// The embedded role must match the registered role.
	p, err := utils.ParseBearerToken("test-secret", resp.Token.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(11), p.ID)
	assert.Equal(t, model.RoleNGO, p.Role)
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(repositoryDuplicateErr())

	h := NewAuthHandler(testCfg(), repository.NewUserRepo(db))
	c, rec := newJSONContext(t, http.MethodPost, "/v1/auth/register",
		`{"name":"n","email":"ngo@x.com","password":"pw1","role":"NGO"}`)
	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLoginSuccessAfterRegister(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	hash, err := utils.HashPassword("pw1", 4)
	require.NoError(t, err)
	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WillReturnRows(userRow(5, "Mangrove Org", "ngo@x.com", hash, model.RoleNGO))

	h := NewAuthHandler(testCfg(), repository.NewUserRepo(db))
	c, rec := newJSONContext(t, http.MethodPost, "/v1/auth/login",
		`{"email":"ngo@x.com","password":"pw1"}`)
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Token struct {
			Token string `json:"token"`
		} `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	p, err := utils.ParseBearerToken("test-secret", resp.Token.Token)
	require.NoError(t, err)
	assert.Equal(t, model.RoleNGO, p.Role)
}

func TestLoginBadPassword(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	hash, err := utils.HashPassword("pw1", 4)
	require.NoError(t, err)
	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WillReturnRows(userRow(5, "Mangrove Org", "ngo@x.com", hash, model.RoleNGO))

	h := NewAuthHandler(testCfg(), repository.NewUserRepo(db))
	c, rec := newJSONContext(t, http.MethodPost, "/v1/auth/login",
		`{"email":"ngo@x.com","password":"wrong"}`)
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginUnknownEmailSameError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	h := NewAuthHandler(testCfg(), repository.NewUserRepo(db))
	c, rec := newJSONContext(t, http.MethodPost, "/v1/auth/login",
		`{"email":"nobody@x.com","password":"pw1"}`)
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	// Same undifferentiated message as a bad password.
	assert.Contains(t, rec.Body.String(), "invalid credentials")
}
