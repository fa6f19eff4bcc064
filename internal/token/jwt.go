package token

import (
	"errors"
	"time"

	"app/internal/domain/model"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// 署名不正・期限切れ・形式不正をまとめて表す
var ErrInvalidToken = errors.New("invalid token")

// Configはトークン発行・検証の設定。
// access/refreshでシークレットと有効期限をそれぞれ持つ。
type Config struct {
	AccessSecret  []byte
	RefreshSecret []byte

	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// AccessClaimsはアクセストークンのペイロード
type AccessClaims struct {
	BusinessID   string `json:"businessId"`
	Email        string `json:"email"`
	BusinessName string `json:"businessName"`
	jwt.RegisteredClaims
}

// RefreshClaimsはリフレッシュトークンのペイロード。
// DBに保存される分、露出が大きいのでIDだけにする。
type RefreshClaims struct {
	BusinessID string `json:"businessId"`
	jwt.RegisteredClaims
}

// ManagerはJWTの発行と検証をまとめる
type Manager struct {
	cfg Config
	now func() time.Time // テスト用に差し替え可能
}

func NewManager(cfg Config) *Manager {
	return &Manager{cfg: cfg, now: time.Now}
}

// IssueAccessTokenはHS256で署名したアクセストークンを発行する。
func (m *Manager) IssueAccessToken(b *model.Business) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.cfg.AccessExpiry)

	claims := AccessClaims{
		BusinessID:   b.ID,
		Email:        b.Email,
		BusinessName: b.BusinessName,
		RegisteredClaims: jwt.RegisteredClaims{
			// jtiで同一秒内の発行でもトークン文字列を一意にする
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := t.SignedString(m.cfg.AccessSecret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// IssueRefreshTokenはリフレッシュトークンを発行する。
func (m *Manager) IssueRefreshToken(businessID string) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.cfg.RefreshExpiry)

	claims := RefreshClaims{
		BusinessID: businessID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := t.SignedString(m.cfg.RefreshSecret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// VerifyAccessはアクセストークンを検証してclaimsを返す。
// 署名不正・期限切れ・形式不正はすべてErrInvalidToken。
func (m *Manager) VerifyAccess(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}

	if err := verifyToken(tokenString, claims, m.cfg.AccessSecret); err != nil {
		return nil, err
	}

	return claims, nil
}

// VerifyRefreshはリフレッシュトークンを検証してclaimsを返す。
func (m *Manager) VerifyRefresh(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}

	if err := verifyToken(tokenString, claims, m.cfg.RefreshSecret); err != nil {
		return nil, err
	}

	return claims, nil
}

func verifyToken(tokenString string, claims jwt.Claims, secret []byte) error {
	t, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})

	if err != nil || t == nil || !t.Valid {
		return ErrInvalidToken
	}

	return nil
}
