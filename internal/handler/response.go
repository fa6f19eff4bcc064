package handler

import "github.com/labstack/echo/v4"

// 成功レスポンスの統一封筒
type apiResponse struct {
	StatusCode int         `json:"statusCode"`
	Data       interface{} `json:"data"`
	Message    string      `json:"message"`
	Success    bool        `json:"success"`
}

// エラーレスポンスの統一封筒（dataなし）
type apiError struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

func respond(c echo.Context, statusCode int, data interface{}, message string) error {
	return c.JSON(statusCode, apiResponse{
		StatusCode: statusCode,
		Data:       data,
		Message:    message,
		Success:    true,
	})
}

func respondError(c echo.Context, statusCode int, message string) error {
	return c.JSON(statusCode, apiError{
		StatusCode: statusCode,
		Message:    message,
		Success:    false,
	})
}
