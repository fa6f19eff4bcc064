package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"
)

// 事業者が見つかりませんを統一
var ErrBusinessNotFound = errors.New("business not found")

// email/事業者名のunique制約違反
var ErrBusinessDuplicate = errors.New("business already exists")

// 保存・取得を約束
type BusinessRepository interface {
	//新規事業者を作成（email・事業者名の重複はErrBusinessDuplicate）
	Create(ctx context.Context, business *model.Business) error
	// IDから1件取得する。
	FindByID(ctx context.Context, id string) (*model.Business, error)
	//メールから1件取得する。
	FindByEmail(ctx context.Context, email string) (*model.Business, error)
	//事業者名から1件取得する。
	FindByName(ctx context.Context, businessName string) (*model.Business, error)
	// refresh tokenの単一スロットを更新する（nilでクリア）。
	// 同一アカウントへの同時更新はDB側で直列化され、後勝ちになる。
	UpdateRefreshToken(ctx context.Context, businessID string, refreshToken *string) error
}
