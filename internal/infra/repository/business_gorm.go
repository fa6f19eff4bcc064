package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type businessGormRepository struct {
	db *gorm.DB //DB接続（GORM）
}

// GORM実装
// main.goでこれをnewしてusecaseに注入します。
func NewBusinessRepository(db *gorm.DB) repo.BusinessRepository {
	return &businessGormRepository{db: db}
}

// Create は事業者を新規作成
func (r *businessGormRepository) Create(ctx context.Context, business *model.Business) error {
	if err := r.db.WithContext(ctx).Create(business).Error; err != nil {
		// unique制約違反（email/事業者名）はConflictとして上に返す
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return repo.ErrBusinessDuplicate
		}
		return err
	}
	return nil
}

// IDで1件取得
func (r *businessGormRepository) FindByID(ctx context.Context, id string) (*model.Business, error) {
	var b model.Business

	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&b).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repo.ErrBusinessNotFound
		}
		return nil, err
	}

	return &b, nil
}

// emailで1件取得
func (r *businessGormRepository) FindByEmail(ctx context.Context, email string) (*model.Business, error) {
	var b model.Business

	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&b).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repo.ErrBusinessNotFound
		}
		return nil, err
	}

	return &b, nil
}

// 事業者名で1件取得
func (r *businessGormRepository) FindByName(ctx context.Context, businessName string) (*model.Business, error) {
	var b model.Business

	err := r.db.WithContext(ctx).
		Where("business_name = ?", businessName).
		First(&b).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repo.ErrBusinessNotFound
		}
		return nil, err
	}

	return &b, nil
}

// refresh tokenスロットを更新する。nilでクリア。
// 単一UPDATEなので同時更新はDBが直列化する（後勝ち）。
func (r *businessGormRepository) UpdateRefreshToken(ctx context.Context, businessID string, refreshToken *string) error {
	result := r.db.WithContext(ctx).
		Model(&model.Business{}).
		Where("id = ?", businessID).
		Update("refresh_token", refreshToken)

	if result.Error != nil {
		return result.Error
	}

	// 0件更新は「対象がない」
	if result.RowsAffected == 0 {
		return repo.ErrBusinessNotFound
	}

	return nil
}
