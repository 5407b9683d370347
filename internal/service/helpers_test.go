package service

import (
	"fmt"
	"strings"
	"testing"

	"sortify/internal/model"
	"sortify/internal/repo"

	"go.uber.org/zap"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"
)

// newTestDB — in-memory SQLite с уникальным именем на тест и единственным
// соединением в пуле (сериализация, как у файла БД).
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	dial := gormsqlite.Dialector{DriverName: "sqlite", DSN: dsn}
	db, err := gorm.Open(dial, &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open sqlite (modernc): %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("failed to automigrate: %v", err)
	}
	return db
}

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func seedUser(t *testing.T, db *gorm.DB, email, name, nick string) *model.User {
	t.Helper()
	u := &model.User{Email: email, Password: "h", FullName: name, Nickname: nick, Discriminator: 1}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func seedMember(t *testing.T, db *gorm.DB, projectID, userID int64, role model.Role) {
	t.Helper()
	m := &model.Membership{ProjectID: projectID, UserID: userID, Role: role}
	if err := db.Create(m).Error; err != nil {
		t.Fatalf("seed membership: %v", err)
	}
}

// seedProject создаёт проект и членство owner для создателя.
func seedProject(t *testing.T, db *gorm.DB, name string, owner *model.User) *model.Project {
	t.Helper()
	p := &model.Project{Name: name, CreatorID: owner.ID}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("seed project: %v", err)
	}
	seedMember(t, db, p.ID, owner.ID, model.RoleOwner)
	return p
}
