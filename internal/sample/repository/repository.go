// Package repository 사용자 계정 저장소. 대장(엑셀)과 달리 계정은
// PostgreSQL에 둔다.
package repository

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound 조회 결과 없음
var ErrNotFound = errors.New("record not found")

// Repositories 저장소 묶음
type Repositories struct {
	User *UserRepository
}

// NewRepositories 저장소 묶음을 만든다.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User: NewUserRepository(db),
	}
}

// translateError gorm 에러를 패키지 센티널로 바꾼다.
func translateError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
