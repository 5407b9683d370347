package model

import "time"

// DownloadRecord — отметка «пользователь скачал версию» (таблица
// last_download). Повторное скачивание той же версии записи не добавляет.
// Признак has_latest выводится из наличия записи для текущей версии файла
// и нигде не хранится.
type DownloadRecord struct {
	ID int64 `gorm:"primaryKey"`

	UserID    int64 `gorm:"not null;uniqueIndex:idx_user_version"`
	VersionID int64 `gorm:"not null;uniqueIndex:idx_user_version"`

	User    *User        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Version *FileVersion `gorm:"foreignKey:VersionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (DownloadRecord) TableName() string { return "last_download" }
