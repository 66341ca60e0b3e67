package bootstrap

import (
	"context"
	"log"

	"anoa.com/tradesphere/internal/entity"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	devAdminEmail    = "admin@tradesphere.local"
	devAdminPassword = "admin123"
)

// CategorySeeder is satisfied by the category service.
type CategorySeeder interface {
	Initialize(ctx context.Context) (int, error)
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.Role{},
		&entity.User{},
		&entity.Category{},
		&entity.Listing{},
		&entity.Favorite{},
		&entity.Conversation{},
		&entity.Message{},
		&entity.Attachment{},
	)
}

func SeedRoles(db *gorm.DB) error {
	defaultRoles := []entity.Role{
		{Name: entity.RoleAdmin, Description: "Marketplace administrator"},
		{Name: entity.RoleUser, Description: "Buyer and seller"},
	}

	for _, role := range defaultRoles {
		var count int64
		if err := db.Model(&entity.Role{}).
			Where("name = ?", role.Name).
			Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			if err := db.Create(&role).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

func SeedAdminUser(db *gorm.DB) error {
	var adminRole entity.Role
	if err := db.Where("name = ?", entity.RoleAdmin).First(&adminRole).Error; err != nil {
		return err
	}

	var count int64
	if err := db.Model(&entity.User{}).
		Where("email = ?", devAdminEmail).
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("Admin user already exists, skipping seed")
		return nil
	}

	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(devAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	adminUser := entity.User{
		Name:         "Administrator",
		Email:        devAdminEmail,
		PasswordHash: string(hashedPasswordBytes),
		RoleID:       &adminRole.ID,
		Bio:          stringPtr("Marketplace administrator"),
	}

	if err := db.Omit("Role").Create(&adminUser).Error; err != nil {
		return err
	}

	log.Println("Admin user seeded")
	log.Printf("   Email: %s", devAdminEmail)
	log.Printf("   Password: %s", devAdminPassword)

	return nil
}

func SeedCategories(ctx context.Context, seeder CategorySeeder) error {
	created, err := seeder.Initialize(ctx)
	if err != nil {
		return err
	}
	if created > 0 {
		log.Printf("Seeded %d default categories", created)
	}
	return nil
}

func stringPtr(s string) *string {
	return &s
}
