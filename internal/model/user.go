package model

import (
	"fmt"
	"time"
)

// User — учётная запись пользователя (таблица user_profile).
// Пара (Nickname, Discriminator) глобально уникальна и образует
// отображаемый хендл вида "nickname#0042".
type User struct {
	ID int64 `gorm:"primaryKey"`

	Email    string `gorm:"uniqueIndex;not null"`
	Password string `gorm:"not null"` // bcrypt-хеш

	FullName      string `gorm:"not null"`
	Nickname      string `gorm:"not null;uniqueIndex:idx_user_handle"`
	Discriminator int    `gorm:"not null;uniqueIndex:idx_user_handle;column:nickname_id"`

	Mobile     string
	Job        string
	ProfilePic string

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (User) TableName() string { return "user_profile" }

// Handle возвращает глобально уникальный отображаемый идентификатор.
func (u *User) Handle() string {
	return fmt.Sprintf("%s#%04d", u.Nickname, u.Discriminator)
}
