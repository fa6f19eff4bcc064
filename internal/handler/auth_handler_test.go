package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"app/internal/domain/model"
	appmw "app/internal/middleware"
	"app/internal/repository"
	"app/internal/token"
	"app/internal/usecase"
	"app/internal/validator"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// =====================
// Fake: BusinessRepository（メモリ実装）
// =====================

type fakeBusinessRepository struct {
	mu         sync.Mutex
	businesses map[string]*model.Business
}

func newFakeBusinessRepository() *fakeBusinessRepository {
	return &fakeBusinessRepository{businesses: map[string]*model.Business{}}
}

func (f *fakeBusinessRepository) Create(ctx context.Context, business *model.Business) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, b := range f.businesses {
		if b.Email == business.Email || b.BusinessName == business.BusinessName {
			return repository.ErrBusinessDuplicate
		}
	}

	cp := *business
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	f.businesses[cp.ID] = &cp
	return nil
}

func (f *fakeBusinessRepository) FindByID(ctx context.Context, id string) (*model.Business, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	b, ok := f.businesses[id]
	if !ok {
		return nil, repository.ErrBusinessNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBusinessRepository) FindByEmail(ctx context.Context, email string) (*model.Business, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, b := range f.businesses {
		if b.Email == email {
			cp := *b
			return &cp, nil
		}
	}
	return nil, repository.ErrBusinessNotFound
}

func (f *fakeBusinessRepository) FindByName(ctx context.Context, businessName string) (*model.Business, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, b := range f.businesses {
		if b.BusinessName == businessName {
			cp := *b
			return &cp, nil
		}
	}
	return nil, repository.ErrBusinessNotFound
}

func (f *fakeBusinessRepository) UpdateRefreshToken(ctx context.Context, businessID string, refreshToken *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	b, ok := f.businesses[businessID]
	if !ok {
		return repository.ErrBusinessNotFound
	}
	if refreshToken == nil {
		b.RefreshToken = nil
	} else {
		v := *refreshToken
		b.RefreshToken = &v
	}
	return nil
}

// =====================
// helpers
// =====================

// 本番と同じ配線のechoをメモリ上に組む
func newTestServer(t *testing.T) (*echo.Echo, *fakeBusinessRepository) {
	t.Helper()

	repo := newFakeBusinessRepository()
	tokens := token.NewManager(token.Config{
		AccessSecret:  []byte("access-secret"),
		RefreshSecret: []byte("refresh-secret"),
		AccessExpiry:  time.Hour,
		RefreshExpiry: 7 * 24 * time.Hour,
	})
	hasher := usecase.NewBcryptPasswordHasher(bcrypt.MinCost)
	uc := usecase.NewAuthUsecase(repo, tokens, hasher, validator.NewAuthValidator())
	authH := NewAuthHandler(uc)
	guard := appmw.AuthJWT(tokens, repo)

	e := echo.New()
	g := e.Group("/api/auth")
	g.POST("/register", authH.Register)
	g.POST("/login", authH.Login)
	g.POST("/logout", authH.Logout, guard)
	g.POST("/refresh-token", authH.Refresh)

	return e, repo
}

type envelope struct {
	StatusCode int                    `json:"statusCode"`
	Data       map[string]interface{} `json:"data"`
	Message    string                 `json:"message"`
	Success    bool                   `json:"success"`
}

func postJSON(e *echo.Echo, path string, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

const acmeJSON = `{
	"businessName": "Acme",
	"address": "1 Rd",
	"postalNumber": "00000",
	"city": "X",
	"email": "a@acme.com",
	"phoneNumber": "123",
	"password": "secret1"
}`

// =====================
// Register
// =====================

func TestRegisterHandler_Created(t *testing.T) {
	e, _ := newTestServer(t)

	rec := postJSON(e, "/api/auth/register", acmeJSON)

	assert.Equal(t, http.StatusCreated, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
	assert.Equal(t, http.StatusCreated, env.StatusCode)
	assert.Equal(t, "Business registered successfully", env.Message)
	assert.Equal(t, "Acme", env.Data["businessName"])
	assert.NotEmpty(t, env.Data["id"])

	// サニタイズ済み：password系のキーは出てこない
	assert.NotContains(t, env.Data, "password")
	assert.NotContains(t, env.Data, "passwordHash")
}

func TestRegisterHandler_BlankField(t *testing.T) {
	e, _ := newTestServer(t)

	rec := postJSON(e, "/api/auth/register", `{"businessName":"Acme","email":"a@acme.com"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, "All fields are required", env.Message)
}

func TestRegisterHandler_Conflict(t *testing.T) {
	e, _ := newTestServer(t)
	require.Equal(t, http.StatusCreated, postJSON(e, "/api/auth/register", acmeJSON).Code)

	// emailだけ変えても事業者名の衝突で同じConflictになる
	dup := strings.Replace(acmeJSON, "a@acme.com", "b@acme.com", 1)
	rec := postJSON(e, "/api/auth/register", dup)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Business with this email or name already exists", decodeEnvelope(t, rec).Message)
}

// =====================
// Login
// =====================

func TestLoginHandler_SetsCookies(t *testing.T) {
	e, repo := newTestServer(t)
	require.Equal(t, http.StatusCreated, postJSON(e, "/api/auth/register", acmeJSON).Code)

	rec := postJSON(e, "/api/auth/login", `{"email":"a@acme.com","password":"secret1"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "Login successful", env.Message)

	accessToken, _ := env.Data["accessToken"].(string)
	refreshToken, _ := env.Data["refreshToken"].(string)
	assert.NotEmpty(t, accessToken)
	assert.NotEmpty(t, refreshToken)

	business, _ := env.Data["business"].(map[string]interface{})
	require.NotNil(t, business)
	assert.Equal(t, "a@acme.com", business["email"])

	// cookieフラグの確認
	for _, name := range []string{"accessToken", "refreshToken"} {
		cookie := findCookie(rec, name)
		require.NotNil(t, cookie, name)
		assert.True(t, cookie.HttpOnly, name)
		assert.True(t, cookie.Secure, name)
		assert.Equal(t, http.SameSiteNoneMode, cookie.SameSite, name)
	}
	assert.Equal(t, refreshToken, findCookie(rec, "refreshToken").Value)

	// DB側のスロットも発行したトークンに更新されている
	stored, err := repo.FindByEmail(context.Background(), "a@acme.com")
	require.NoError(t, err)
	require.NotNil(t, stored.RefreshToken)
	assert.Equal(t, refreshToken, *stored.RefreshToken)
}

func TestLoginHandler_UnknownEmail(t *testing.T) {
	e, _ := newTestServer(t)

	rec := postJSON(e, "/api/auth/login", `{"email":"nobody@acme.com","password":"secret1"}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Business not found", decodeEnvelope(t, rec).Message)
}

func TestLoginHandler_WrongPassword(t *testing.T) {
	e, _ := newTestServer(t)
	require.Equal(t, http.StatusCreated, postJSON(e, "/api/auth/register", acmeJSON).Code)

	rec := postJSON(e, "/api/auth/login", `{"email":"a@acme.com","password":"wrong"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid password", decodeEnvelope(t, rec).Message)
}

// =====================
// Refresh
// =====================

func TestRefreshHandler_RotatesViaCookie(t *testing.T) {
	e, _ := newTestServer(t)
	require.Equal(t, http.StatusCreated, postJSON(e, "/api/auth/register", acmeJSON).Code)

	login := postJSON(e, "/api/auth/login", `{"email":"a@acme.com","password":"secret1"}`)
	loginEnv := decodeEnvelope(t, login)
	oldAccess, _ := loginEnv.Data["accessToken"].(string)
	oldRefresh, _ := loginEnv.Data["refreshToken"].(string)

	rec := postJSON(e, "/api/auth/refresh-token", "",
		&http.Cookie{Name: "refreshToken", Value: oldRefresh})

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "Token refreshed successfully", env.Message)

	newAccess, _ := env.Data["accessToken"].(string)
	newRefresh, _ := env.Data["refreshToken"].(string)
	assert.NotEmpty(t, newAccess)
	assert.NotEmpty(t, newRefresh)
	assert.NotEqual(t, oldAccess, newAccess)
	assert.NotEqual(t, oldRefresh, newRefresh)

	// 使用済みトークンの再提示は拒否（single-use）
	replay := postJSON(e, "/api/auth/refresh-token", "",
		&http.Cookie{Name: "refreshToken", Value: oldRefresh})
	assert.Equal(t, http.StatusNotFound, replay.Code)
}

func TestRefreshHandler_BodyFallback(t *testing.T) {
	e, _ := newTestServer(t)
	require.Equal(t, http.StatusCreated, postJSON(e, "/api/auth/register", acmeJSON).Code)

	login := postJSON(e, "/api/auth/login", `{"email":"a@acme.com","password":"secret1"}`)
	refresh, _ := decodeEnvelope(t, login).Data["refreshToken"].(string)

	rec := postJSON(e, "/api/auth/refresh-token", `{"refreshToken":"`+refresh+`"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRefreshHandler_MissingToken(t *testing.T) {
	e, _ := newTestServer(t)

	rec := postJSON(e, "/api/auth/refresh-token", `{}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Refresh token missing", decodeEnvelope(t, rec).Message)
}

func TestRefreshHandler_InvalidToken(t *testing.T) {
	e, _ := newTestServer(t)

	rec := postJSON(e, "/api/auth/refresh-token", "",
		&http.Cookie{Name: "refreshToken", Value: "not.a.jwt"})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid or expired token", decodeEnvelope(t, rec).Message)
}

// =====================
// Logout
// =====================

func TestLogoutHandler_ClearsSessionAndCookies(t *testing.T) {
	e, repo := newTestServer(t)
	require.Equal(t, http.StatusCreated, postJSON(e, "/api/auth/register", acmeJSON).Code)

	login := postJSON(e, "/api/auth/login", `{"email":"a@acme.com","password":"secret1"}`)
	loginEnv := decodeEnvelope(t, login)
	access, _ := loginEnv.Data["accessToken"].(string)
	refresh, _ := loginEnv.Data["refreshToken"].(string)

	rec := postJSON(e, "/api/auth/logout", "",
		&http.Cookie{Name: "accessToken", Value: access})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Logout successful", decodeEnvelope(t, rec).Message)

	// cookieがクリアされている（空値＋過去のexpiry）
	for _, name := range []string{"accessToken", "refreshToken"} {
		cookie := findCookie(rec, name)
		require.NotNil(t, cookie, name)
		assert.Empty(t, cookie.Value, name)
		assert.True(t, cookie.Expires.Before(time.Now()), name)
	}

	// スロットもクリア済み
	stored, err := repo.FindByEmail(context.Background(), "a@acme.com")
	require.NoError(t, err)
	assert.Nil(t, stored.RefreshToken)

	// 直前までのrefresh tokenはもう使えない
	replay := postJSON(e, "/api/auth/refresh-token", "",
		&http.Cookie{Name: "refreshToken", Value: refresh})
	assert.Equal(t, http.StatusNotFound, replay.Code)
}

func TestLogoutHandler_RequiresAccessToken(t *testing.T) {
	e, _ := newTestServer(t)

	rec := postJSON(e, "/api/auth/logout", "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Access token missing", decodeEnvelope(t, rec).Message)
}
