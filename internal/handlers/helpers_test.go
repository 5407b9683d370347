package handlers_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sortify/internal/config"
	"sortify/internal/handlers"
	"sortify/internal/middleware"
	"sortify/internal/model"
	"sortify/internal/repo"
	"sortify/internal/service"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"
)

type testEnv struct {
	router http.Handler
	cfg    *config.Config
	db     *gorm.DB
}

// newTestEnv поднимает роутер поверх in-memory SQLite со всеми сервисами.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	name := strings.NewReplacer("/", "_", "#", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:h_%s?mode=memory&cache=shared", name)
	dial := sqlite.Dialector{DriverName: "sqlite", DSN: dsn}
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
		t.Fatalf("failed to migrate: %v", err)
	}

	cfg := &config.Config{AuthSecret: "test-secret", UploadMaxSizeMB: 1, InviteTTLHours: 72}
	logger := zap.NewNop().Sugar()

	userSvc := service.NewUserService(repo.NewUserRepository(db))
	projectSvc := service.NewProjectService(db, logger)
	memberSvc := service.NewMembershipService(db, logger)
	fileSvc := service.NewFileService(db, logger)
	inviteSvc := service.NewInvitationService(db, time.Duration(cfg.InviteTTLHours)*time.Hour, logger)

	h := handlers.NewHandler(userSvc, projectSvc, memberSvc, fileSvc, inviteSvc, logger, cfg)
	return &testEnv{router: h.Router, cfg: cfg, db: db}
}

func addAuthCookie(t *testing.T, req *http.Request, userID int64, secret string) {
	t.Helper()
	rr := httptest.NewRecorder()
	if err := middleware.SetLoginCookie(rr, userID, secret); err != nil {
		t.Fatalf("failed to set login cookie: %v", err)
	}
	for _, c := range rr.Result().Cookies() {
		req.AddCookie(c)
	}
}

func (e *testEnv) seedUser(t *testing.T, email, fullName, nickname string) *model.User {
	t.Helper()
	u := &model.User{
		Email:         email,
		Password:      "x",
		FullName:      fullName,
		Nickname:      nickname,
		Discriminator: 1,
	}
	if err := e.db.Create(u).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return u
}

func (e *testEnv) seedProject(t *testing.T, name string, owner *model.User) *model.Project {
	t.Helper()
	p := &model.Project{Name: name, CreatorID: owner.ID}
	if err := e.db.Create(p).Error; err != nil {
		t.Fatalf("failed to seed project: %v", err)
	}
	m := &model.Membership{ProjectID: p.ID, UserID: owner.ID, Role: model.RoleOwner}
	if err := e.db.Create(m).Error; err != nil {
		t.Fatalf("failed to seed owner membership: %v", err)
	}
	return p
}

func (e *testEnv) seedMember(t *testing.T, projectID, userID int64, role model.Role) {
	t.Helper()
	m := &model.Membership{ProjectID: projectID, UserID: userID, Role: role}
	if err := e.db.Create(m).Error; err != nil {
		t.Fatalf("failed to seed membership: %v", err)
	}
}
