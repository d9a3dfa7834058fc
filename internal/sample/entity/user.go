package entity

import "time"

// 역할 구분. 관리자 외에는 모두 고객사 계정이다.
const (
	RoleAdmin  = "admin"
	RoleClient = "client"
)

// User 계정 엔티티
type User struct {
	ID           string     `json:"id" gorm:"primaryKey;size:32"`
	Username     string     `json:"username" gorm:"size:64;not null;uniqueIndex"`
	PasswordHash string     `json:"-" gorm:"size:128;not null"`
	Role         string     `json:"role" gorm:"size:16;not null;default:client"`
	Company      string     `json:"company" gorm:"size:128;not null"`
	Name         string     `json:"name" gorm:"size:64;not null"`
	Status       string     `json:"status" gorm:"size:16;not null;default:active"`
	LastLoginAt  *time.Time `json:"last_login_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// Viewer 토큰 클레임에서 끌어낸 열람 주체를 만든다.
func (u *User) Viewer() Viewer {
	return Viewer{Role: u.Role, Company: u.Company}
}
