package middleware

import (
	"errors"
	"net/http"
	"strings"

	"app/internal/repository"
	"app/internal/token"

	"github.com/labstack/echo/v4"
)

// 検証済みの事業者をechoコンテキストに入れるキー（*model.Business）
const CtxBusinessKey = "business"

// AuthJWTはアクセストークン検証ミドルウェア。
// cookieのaccessTokenを優先し、なければAuthorization: Bearerを見る。
// 検証に通ったらDBから事業者を引き直してコンテキストに載せる。
func AuthJWT(tokens *token.Manager, businesses repository.BusinessRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rawToken := extractAccessToken(c)
			if rawToken == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON(http.StatusUnauthorized, "Access token missing"))
			}

			claims, err := tokens.VerifyAccess(rawToken)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorJSON(http.StatusUnauthorized, "Invalid or expired token"))
			}

			// 削除済みアカウントの未期限トークン対策で毎回引き直す
			business, err := businesses.FindByID(c.Request().Context(), claims.BusinessID)
			if err != nil {
				if errors.Is(err, repository.ErrBusinessNotFound) {
					return c.JSON(http.StatusNotFound, errorJSON(http.StatusNotFound, "Business not found"))
				}
				c.Logger().Error(err)
				return c.JSON(http.StatusInternalServerError, errorJSON(http.StatusInternalServerError, "Server Error"))
			}

			//contextへ保存
			c.Set(CtxBusinessKey, business)

			return next(c)
		}
	}
}

// cookie優先、Bearerヘッダはフォールバック
func extractAccessToken(c echo.Context) string {
	if cookie, err := c.Cookie("accessToken"); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authz := c.Request().Header.Get("Authorization")
	if authz == "" {
		return ""
	}

	parts := strings.SplitN(authz, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

type errorResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

func errorJSON(statusCode int, msg string) errorResponse {
	return errorResponse{StatusCode: statusCode, Message: msg, Success: false}
}
