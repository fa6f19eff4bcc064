package model

import "time"

// Businessは登録済みの事業者アカウント。
// RefreshTokenは「最後に発行した1本」だけを持つ（nil=セッションなし）。
// 別端末でログインすると上書きされ、古いセッションは自動的に無効になる。
type Business struct {
	ID           string    `json:"id" gorm:"type:uuid;primaryKey"`
	BusinessName string    `json:"businessName" gorm:"uniqueIndex;not null"`
	Address      string    `json:"address" gorm:"not null"`
	PostalNumber string    `json:"postalNumber" gorm:"not null"`
	City         string    `json:"city" gorm:"not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PhoneNumber  string    `json:"phoneNumber" gorm:"not null"`
	PasswordHash string    `json:"-" gorm:"column:password_hash;not null"`
	RefreshToken *string   `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
