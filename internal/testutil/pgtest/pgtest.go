//go:build integration

// Package pgtest runs one throwaway PostgreSQL container per test binary
// and hands out a migrated, emptied database to each test.
package pgtest

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"anoa.com/tradesphere/internal/bootstrap"
	"anoa.com/tradesphere/internal/entity"
	"anoa.com/tradesphere/pkg/database"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

var (
	once      sync.Once
	container *postgres.PostgresContainer
	shared    *gorm.DB
	startErr  error
)

// Main wraps m.Run and tears the container down afterwards.
func Main(m *testing.M) {
	code := m.Run()
	if container != nil {
		if err := container.Terminate(context.Background()); err != nil {
			log.Printf("failed to terminate container: %v", err)
		}
	}
	os.Exit(code)
}

func start() {
	ctx := context.Background()

	container, startErr = postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("tradesphere"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if startErr != nil {
		return
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		startErr = err
		return
	}

	shared, startErr = database.Connect(ctx, database.Options{
		DSN:             connStr,
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Minute,
		PingTimeout:     5 * time.Second,
		RetryAttempts:   3,
		RetryBaseDelay:  500 * time.Millisecond,
	})
	if startErr != nil {
		return
	}

	if startErr = bootstrap.Migrate(shared); startErr != nil {
		return
	}
	startErr = bootstrap.SeedRoles(shared)
}

// DB returns the shared database with every table except roles emptied.
func DB(t *testing.T) *gorm.DB {
	t.Helper()

	once.Do(start)
	if startErr != nil {
		t.Fatalf("failed to start postgres: %v", startErr)
	}

	err := shared.Exec("TRUNCATE favorites, messages, conversations, attachments, listings, categories, users CASCADE").Error
	if err != nil {
		t.Fatalf("failed to reset tables: %v", err)
	}
	return shared
}

func CreateUser(t *testing.T, db *gorm.DB, email string) *entity.User {
	t.Helper()

	var role entity.Role
	if err := db.Where("name = ?", entity.RoleUser).First(&role).Error; err != nil {
		t.Fatalf("failed to load role: %v", err)
	}

	user := &entity.User{
		Name:         "User " + email,
		Email:        email,
		PasswordHash: "x",
		RoleID:       &role.ID,
	}
	if err := db.Omit("Role").Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	user.Role = role
	return user
}

func CreateCategory(t *testing.T, db *gorm.DB, name, slug string, parent *entity.Category) *entity.Category {
	t.Helper()

	category := &entity.Category{Name: name, Slug: slug}
	if parent != nil {
		category.ParentID = &parent.ID
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create category: %v", err)
	}
	return category
}

// ListingOption tweaks a fixture listing before insert.
type ListingOption func(*entity.Listing)

func WithStatus(status string) ListingOption {
	return func(l *entity.Listing) { l.Status = status }
}

func WithCreatedAt(at time.Time) ListingOption {
	return func(l *entity.Listing) { l.CreatedAt = at }
}

func CreateListing(t *testing.T, db *gorm.DB, owner *entity.User, category *entity.Category, title string, price float64, opts ...ListingOption) *entity.Listing {
	t.Helper()

	listing := &entity.Listing{
		Title:          title,
		Slug:           fmt.Sprintf("%s-%s", title, uuid.NewString()[:8]),
		Description:    "A perfectly ordinary item in good working order.",
		Price:          price,
		Condition:      "good",
		Images:         pq.StringArray{"https://img.example/1.jpg"},
		CategoryID:     category.ID,
		Location:       "Jakarta",
		Specifications: entity.NewSpecifications(nil),
		UserID:         owner.ID,
	}
	for _, opt := range opts {
		opt(listing)
	}
	if err := db.Omit("User", "Category", "Subcategory").Create(listing).Error; err != nil {
		t.Fatalf("failed to create listing: %v", err)
	}
	return listing
}
