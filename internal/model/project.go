package model

import "time"

// Project — контейнер файлов и участников.
// UpdatedAt сдвигается при каждой загрузке версии (см. FileService).
type Project struct {
	ID int64 `gorm:"primaryKey"`

	Name        string `gorm:"not null"`
	Description string

	CreatorID int64 `gorm:"not null;index"`
	Creator   *User `gorm:"foreignKey:CreatorID"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Project) TableName() string { return "project" }
