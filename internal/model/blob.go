package model

// Blob — бинарное содержимое одной версии файла. Неизменяем после создания.
type Blob struct {
	ID string `gorm:"primaryKey;type:uuid"`

	Data []byte `gorm:"not null"`
}
