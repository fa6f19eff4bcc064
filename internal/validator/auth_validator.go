package validator

import (
	"context"
	"strings"

	"app/internal/usecase"
)

type authValidator struct{}

// Usecaseは interface を依存注入
func NewAuthValidator() usecase.AuthValidator {
	return &authValidator{}
}

// 会員登録の入力を検証。
// 全フィールド必須（trim後に空ならNG）。形式チェックはしない。
func (v *authValidator) ValidateRegister(ctx context.Context, req usecase.RegisterRequest) error {
	fields := []string{
		req.BusinessName,
		req.Address,
		req.PostalNumber,
		req.City,
		req.Email,
		req.PhoneNumber,
		req.Password,
	}

	for _, f := range fields {
		if strings.TrimSpace(f) == "" {
			return usecase.ErrValidation
		}
	}

	return nil
}

// ログインの入力を検証
func (v *authValidator) ValidateLogin(ctx context.Context, email string, password string) error {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return usecase.ErrValidation
	}
	return nil
}
