package model

import "time"

// File — логический файл проекта (таблица file_data): линия из ≥1
// неизменяемых версий. Собственного содержимого у файла нет.
type File struct {
	ID int64 `gorm:"primaryKey"`

	ProjectID int64 `gorm:"not null;index"`
	Project   *Project `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`

	Title       string `gorm:"not null"`
	Description string

	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (File) TableName() string { return "file_data" }

// FileVersion — одна неизменяемая версия файла (таблица file_version).
// Номера версий в пределах файла строго возрастают на 1 и никогда не
// переиспользуются; уникальный индекс (file_id, version_number) страхует
// гонку присвоения номера.
type FileVersion struct {
	ID int64 `gorm:"primaryKey"`

	FileID int64 `gorm:"not null;uniqueIndex:idx_file_version_no"`
	File   *File `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`

	VersionNumber int `gorm:"not null;uniqueIndex:idx_file_version_no"`

	BlobID    string `gorm:"type:uuid;not null"` // ссылка на blobs.id
	Blob      *Blob  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	SizeBytes int64  `gorm:"not null"`

	Comment string

	UploaderID int64 `gorm:"not null;index"`
	Uploader   *User `gorm:"foreignKey:UploaderID"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (FileVersion) TableName() string { return "file_version" }
