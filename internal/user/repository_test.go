package user

import (
	"context"
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestCreateAndLookup(t *testing.T) {
	repo := NewGormRepository(openTestDB(t))
	ctx := context.Background()

	u := &User{Username: "alice", Email: "alice@example.com", PasswordHash: "hash"}
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.ID == 0 {
		t.Fatal("Create did not assign an ID")
	}

	byID, err := repo.ByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	if byID.Username != "alice" {
		t.Errorf("ByID username = %q", byID.Username)
	}

	byName, err := repo.ByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("ByUsername: %v", err)
	}
	if byName.ID != u.ID {
		t.Errorf("ByUsername ID = %d, want %d", byName.ID, u.ID)
	}
}

func TestNotFound(t *testing.T) {
	repo := NewGormRepository(openTestDB(t))
	ctx := context.Background()

	if _, err := repo.ByID(ctx, 42); err != ErrNotFound {
		t.Errorf("ByID = %v, want ErrNotFound", err)
	}
	if _, err := repo.ByUsername(ctx, "nobody"); err != ErrNotFound {
		t.Errorf("ByUsername = %v, want ErrNotFound", err)
	}
}

func TestDuplicateUsername(t *testing.T) {
	repo := NewGormRepository(openTestDB(t))
	ctx := context.Background()

	if err := repo.Create(ctx, &User{Username: "alice", PasswordHash: "h1"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	err := repo.Create(ctx, &User{Username: "alice", PasswordHash: "h2"})
	if err != ErrUsernameTaken {
		t.Errorf("Create duplicate = %v, want ErrUsernameTaken", err)
	}
}
