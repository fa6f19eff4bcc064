package usecase

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// 平文パスワードのハッシュ化と照合の約束
type PasswordHasher interface {
	Hash(plain string) (string, error)
	// Verifyは不一致をfalseで返す。errorはハッシュ値が壊れているなどの内部異常のみ。
	Verify(plain string, hash string) (bool, error)
}

type bcryptPasswordHasher struct {
	cost int
}

// bcrypt実装
func NewBcryptPasswordHasher(cost int) PasswordHasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &bcryptPasswordHasher{cost: cost}
}

func (h *bcryptPasswordHasher) Hash(plain string) (string, error) {
	//パスワードは必ずハッシュ化して保存（平文保存しない）
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (h *bcryptPasswordHasher) Verify(plain string, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	// ハッシュ形式が不正など
	return false, err
}
