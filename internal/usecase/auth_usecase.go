package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"app/internal/domain/model"
	"app/internal/repository"
	"app/internal/token"

	"github.com/google/uuid"
)

var (
	//400 入力不足
	ErrValidation = errors.New("validation error")
	//400 email・事業者名の重複
	ErrConflict = errors.New("conflict")
	//404 アカウントなし・refresh token不一致
	ErrNotFound = errors.New("not found")
	//401 パスワード不一致
	ErrInvalidCredentials = errors.New("invalid credentials")
	//401 トークン未提示
	ErrMissingToken = errors.New("missing token")
	//401 署名不正・期限切れ
	ErrInvalidToken = errors.New("invalid token")
	//401 検証失敗（総称）
	ErrUnauthorized = errors.New("unauthorized")
	//500
	ErrInternal = errors.New("internal error")
)

// usecaseがValidatorInterfaceに依存する約束
type AuthValidator interface {
	ValidateRegister(ctx context.Context, req RegisterRequest) error
	ValidateLogin(ctx context.Context, email string, password string) error
}

// 会員登録の入力
type RegisterRequest struct {
	BusinessName string `json:"businessName"`
	Address      string `json:"address"`
	PostalNumber string `json:"postalNumber"`
	City         string `json:"city"`
	Email        string `json:"email"`
	PhoneNumber  string `json:"phoneNumber"`
	Password     string `json:"password"`
}

// API返却用の事業者情報。パスワードハッシュは含めない。
type BusinessDTO struct {
	ID           string    `json:"id"`
	BusinessName string    `json:"businessName"`
	Address      string    `json:"address"`
	PostalNumber string    `json:"postalNumber"`
	City         string    `json:"city"`
	Email        string    `json:"email"`
	PhoneNumber  string    `json:"phoneNumber"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ログイン・リフレッシュ返却用の最小限の識別情報
type BusinessIdentityDTO struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// login/refreshのレスポンスボディ
type SessionBody struct {
	Business     BusinessIdentityDTO `json:"business"`
	AccessToken  string              `json:"accessToken"`
	RefreshToken string              `json:"refreshToken"`
}

// SessionResultはボディに加えてcookie設定に使う有効期限を持つ
type SessionResult struct {
	Body             SessionBody
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

type AuthUsecase struct {
	businesses repository.BusinessRepository
	tokens     *token.Manager
	hasher     PasswordHasher
	validator  AuthValidator
}

func NewAuthUsecase(
	businesses repository.BusinessRepository,
	tokens *token.Manager,
	hasher PasswordHasher,
	validator AuthValidator,
) *AuthUsecase {
	return &AuthUsecase{
		businesses: businesses,
		tokens:     tokens,
		hasher:     hasher,
		validator:  validator,
	}
}

// Registerは事業者を新規登録してサニタイズ済みの情報を返す。
func (u *AuthUsecase) Register(ctx context.Context, req RegisterRequest) (*BusinessDTO, error) {
	//入力検証（validatorに寄せる）
	if err := u.validator.ValidateRegister(ctx, req); err != nil {
		return nil, err
	}

	// email・事業者名の重複チェック。
	// どちらの衝突でも同じConflictを返す（区別しないのは仕様）。
	if _, err := u.businesses.FindByEmail(ctx, req.Email); err == nil {
		return nil, ErrConflict
	} else if !errors.Is(err, repository.ErrBusinessNotFound) {
		return nil, ErrInternal
	}
	if _, err := u.businesses.FindByName(ctx, req.BusinessName); err == nil {
		return nil, ErrConflict
	} else if !errors.Is(err, repository.ErrBusinessNotFound) {
		return nil, ErrInternal
	}

	//パスワードをハッシュ化
	pwHash, err := u.hasher.Hash(req.Password)
	if err != nil {
		return nil, ErrInternal
	}

	business := &model.Business{
		ID:           uuid.NewString(),
		BusinessName: req.BusinessName,
		Address:      req.Address,
		PostalNumber: req.PostalNumber,
		City:         req.City,
		Email:        req.Email,
		PhoneNumber:  req.PhoneNumber,
		PasswordHash: pwHash,
	}

	//保存。チェックとINSERTの間のレースはunique制約で拾う。
	if err := u.businesses.Create(ctx, business); err != nil {
		if errors.Is(err, repository.ErrBusinessDuplicate) {
			return nil, ErrConflict
		}
		return nil, ErrInternal
	}

	dto := toBusinessDTO(business)
	return &dto, nil
}

// Loginは資格情報を検証してトークンペアを発行する。
// 発行したrefresh tokenはアカウントの単一スロットに上書き保存するので、
// 別の場所でログイン中のセッションはこの時点で無効になる。
func (u *AuthUsecase) Login(ctx context.Context, email string, password string) (*SessionResult, error) {
	//入力検証
	if err := u.validator.ValidateLogin(ctx, email, password); err != nil {
		return nil, err
	}

	//事業者取得
	business, err := u.businesses.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrBusinessNotFound) {
			return nil, ErrNotFound
		}
		return nil, ErrInternal
	}

	//パスワード照合（bcrypt）
	ok, err := u.hasher.Verify(password, business.PasswordHash)
	if err != nil {
		return nil, ErrInternal
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	return u.issueSession(ctx, business)
}

// Logoutはrefresh tokenスロットをクリアする。
// すでにクリア済みでも成功扱い（no-op safe）。
func (u *AuthUsecase) Logout(ctx context.Context, businessID string) error {
	if err := u.businesses.UpdateRefreshToken(ctx, businessID, nil); err != nil {
		if errors.Is(err, repository.ErrBusinessNotFound) {
			return ErrNotFound
		}
		return ErrInternal
	}
	return nil
}

// Refreshは提示されたrefresh tokenを検証して新しいトークンペアに回転させる。
// 保存中のスロットと完全一致しないトークンは、署名が正しくても拒否する
// （使用済みトークンのリプレイ対策）。
func (u *AuthUsecase) Refresh(ctx context.Context, refreshToken string) (*SessionResult, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, ErrMissingToken
	}

	claims, err := u.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	business, err := u.businesses.FindByID(ctx, claims.BusinessID)
	if err != nil {
		if errors.Is(err, repository.ErrBusinessNotFound) {
			return nil, ErrNotFound
		}
		return nil, ErrInternal
	}

	//スロットとの完全一致チェック。回転済み・ログアウト済みはここで弾く。
	if business.RefreshToken == nil || *business.RefreshToken != refreshToken {
		return nil, ErrNotFound
	}

	return u.issueSession(ctx, business)
}

// issueSessionはトークンペアを発行してrefresh tokenを保存する。
func (u *AuthUsecase) issueSession(ctx context.Context, business *model.Business) (*SessionResult, error) {
	accessToken, accessExp, err := u.tokens.IssueAccessToken(business)
	if err != nil {
		return nil, ErrInternal
	}

	refreshToken, refreshExp, err := u.tokens.IssueRefreshToken(business.ID)
	if err != nil {
		return nil, ErrInternal
	}

	//単一スロットに上書き（rotation）
	if err := u.businesses.UpdateRefreshToken(ctx, business.ID, &refreshToken); err != nil {
		return nil, ErrInternal
	}

	return &SessionResult{
		Body: SessionBody{
			Business: BusinessIdentityDTO{
				ID:    business.ID,
				Email: business.Email,
			},
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
		},
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func toBusinessDTO(b *model.Business) BusinessDTO {
	return BusinessDTO{
		ID:           b.ID,
		BusinessName: b.BusinessName,
		Address:      b.Address,
		PostalNumber: b.PostalNumber,
		City:         b.City,
		Email:        b.Email,
		PhoneNumber:  b.PhoneNumber,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}
