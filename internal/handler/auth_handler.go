package handler

import (
	"errors"
	"net/http"
	"time"

	"app/internal/domain/model"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

const (
	accessCookieName  = "accessToken"
	refreshCookieName = "refreshToken"
)

type AuthHandler struct {
	uc *usecase.AuthUsecase
}

// DIコンストラクタ
func NewAuthHandler(uc *usecase.AuthUsecase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

// /api/auth/login のリクエストボディ
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// /api/auth/refresh-token のリクエストボディ（cookieがない場合のみ使う）
type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// RegisterはPOST /api/auth/register のハンドラ
func (h *AuthHandler) Register(c echo.Context) error {
	var req usecase.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "All fields are required")
	}

	dto, err := h.uc.Register(c.Request().Context(), req)
	if err != nil {
		return h.mapError(c, err)
	}

	return respond(c, http.StatusCreated, dto, "Business registered successfully")
}

// LoginはPOST /api/auth/login のハンドラ
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "Email and password are required")
	}

	res, err := h.uc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return h.mapError(c, err)
	}

	setSessionCookies(c, res)

	return respond(c, http.StatusOK, res.Body, "Login successful")
}

// LogoutはPOST /api/auth/logout のハンドラ。AuthJWTガード必須。
func (h *AuthHandler) Logout(c echo.Context) error {
	business, ok := c.Get(middleware.CtxBusinessKey).(*model.Business)
	if !ok {
		return respondError(c, http.StatusUnauthorized, "Unauthorized access")
	}

	if err := h.uc.Logout(c.Request().Context(), business.ID); err != nil {
		return h.mapError(c, err)
	}

	clearSessionCookies(c)

	return respond(c, http.StatusOK, map[string]interface{}{}, "Logout successful")
}

// RefreshはPOST /api/auth/refresh-token のハンドラ。
// refresh tokenはcookie優先、なければボディのrefreshTokenを見る。
func (h *AuthHandler) Refresh(c echo.Context) error {
	refreshToken := ""
	if cookie, err := c.Cookie(refreshCookieName); err == nil {
		refreshToken = cookie.Value
	}
	if refreshToken == "" {
		var req refreshRequest
		if err := c.Bind(&req); err == nil {
			refreshToken = req.RefreshToken
		}
	}

	res, err := h.uc.Refresh(c.Request().Context(), refreshToken)
	if err != nil {
		return h.mapError(c, err)
	}

	setSessionCookies(c, res)

	return respond(c, http.StatusOK, res.Body, "Token refreshed successfully")
}

// usecaseのエラーを(status, message)へ変換する。
// 想定外のエラーはログに残して詳細を出さずに500を返す。
func (h *AuthHandler) mapError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, usecase.ErrValidation):
		return respondError(c, http.StatusBadRequest, "All fields are required")
	case errors.Is(err, usecase.ErrConflict):
		return respondError(c, http.StatusBadRequest, "Business with this email or name already exists")
	case errors.Is(err, usecase.ErrNotFound):
		return respondError(c, http.StatusNotFound, "Business not found")
	case errors.Is(err, usecase.ErrInvalidCredentials):
		return respondError(c, http.StatusUnauthorized, "Invalid password")
	case errors.Is(err, usecase.ErrMissingToken):
		return respondError(c, http.StatusUnauthorized, "Refresh token missing")
	case errors.Is(err, usecase.ErrInvalidToken):
		return respondError(c, http.StatusUnauthorized, "Invalid or expired token")
	case errors.Is(err, usecase.ErrUnauthorized):
		return respondError(c, http.StatusUnauthorized, "Unauthorized access")
	default:
		c.Logger().Error(err)
		return respondError(c, http.StatusInternalServerError, "Server Error")
	}
}

// 発行したトークンペアをcookieにセット
func setSessionCookies(c echo.Context, res *usecase.SessionResult) {
	c.SetCookie(sessionCookie(accessCookieName, res.Body.AccessToken, res.AccessExpiresAt))
	c.SetCookie(sessionCookie(refreshCookieName, res.Body.RefreshToken, res.RefreshExpiresAt))
}

// 両方のcookieを同じフラグでクリア
func clearSessionCookies(c echo.Context) {
	expired := time.Unix(0, 0)
	c.SetCookie(sessionCookie(accessCookieName, "", expired))
	c.SetCookie(sessionCookie(refreshCookieName, "", expired))
}

func sessionCookie(name string, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
		Expires:  expires,
	}
}
