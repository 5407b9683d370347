package model

import "time"

// Membership — авторитетная запись (проект, пользователь) → роль
// (таблица user_project). На пару (ProjectID, UserID) приходится не более
// одной записи; ровно один участник проекта несёт роль owner.
type Membership struct {
	ID int64 `gorm:"primaryKey"`

	ProjectID int64 `gorm:"not null;uniqueIndex:idx_project_user"`
	UserID    int64 `gorm:"not null;uniqueIndex:idx_project_user"`
	Role      Role  `gorm:"type:text;not null"`

	Project *Project `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	User    *User    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (Membership) TableName() string { return "user_project" }
