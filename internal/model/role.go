package model

// Role — роль участника проекта, упорядоченная по привилегиям.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleReader Role = "reader"
)

// Rank — числовой ранг роли: owner=0 … reader=3.
// Используется контрактной сортировкой списка участников.
func (r Role) Rank() int {
	switch r {
	case RoleOwner:
		return 0
	case RoleAdmin:
		return 1
	case RoleEditor:
		return 2
	case RoleReader:
		return 3
	}
	return 4
}

// Valid сообщает, входит ли значение в набор известных ролей.
func (r Role) Valid() bool {
	return r.Rank() < 4
}

// CanUpload — право создавать файлы и загружать версии (reader только читает).
func (r Role) CanUpload() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleEditor:
		return true
	}
	return false
}
