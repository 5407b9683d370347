package repo

import (
	"errors"
	"strings"

	"sortify/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// InitDB открывает соединение с Postgres и прогоняет автомиграции.
// TranslateError включён, чтобы нарушения уникальных индексов приходили
// как gorm.ErrDuplicatedKey независимо от драйвера.
func InitDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}
	if err := AutoMigrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// IsDuplicate распознаёт нарушение уникального индекса. Помимо
// gorm.ErrDuplicatedKey проверяем текст ошибки: драйвер modernc/sqlite,
// используемый в тестах, не попадает под трансляцию gorm.
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}

// AutoMigrate создаёт/обновляет таблицы всех моделей ядра.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Project{},
		&model.Membership{},
		&model.File{},
		&model.FileVersion{},
		&model.Blob{},
		&model.DownloadRecord{},
		&model.Invitation{},
	)
}
