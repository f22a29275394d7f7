package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"parkwise/internal/parking"
	"parkwise/internal/shared/config"
	"parkwise/internal/shared/database"
	"parkwise/internal/users"
	"parkwise/internal/waitlist"

	"github.com/google/uuid"
)

type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("🌱 Starting Parkwise Database Seeder...")

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db}

	// Clean database
	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("✅ Database cleaned successfully")

	// Seed data
	fmt.Println("\n🌱 Seeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	fmt.Println("✅ Database seeded successfully")

	fmt.Println("\n🎉 Seeding completed! Database is ready for testing.")
}

// CleanDatabase truncates all tables in the correct order (respecting foreign key constraints)
func (s *Seeder) CleanDatabase() error {
	// Delete in reverse dependency order
	tables := []string{
		"audit_logs",
		"incidents",
		"waitlist_offers",
		"waitlist_entries",
		"waitlist_penalties",
		"reservations",
		"parking_spots",
		"parking_groups",
		"users",
	}

	tx := s.db.PostgreSQL.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	for _, table := range tables {
		fmt.Printf("  Truncating table: %s\n", table)
		if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	// Settings keep their singleton row but go back to defaults
	if err := tx.Exec("DELETE FROM waitlist_settings").Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to reset waitlist settings: %w", err)
	}

	return tx.Commit().Error
}

// SeedAll seeds all required data
func (s *Seeder) SeedAll() error {
	ctx := context.Background()

	if _, err := s.SeedUsers(); err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	if err := s.SeedParking(); err != nil {
		return fmt.Errorf("failed to seed parking: %w", err)
	}

	if err := s.SeedSettings(); err != nil {
		return fmt.Errorf("failed to seed waitlist settings: %w", err)
	}

	// Clear Redis so no stale advance locks survive a reseed
	if err := s.db.Redis.FlushDB(ctx).Err(); err != nil {
		log.Printf("Warning: Failed to clear Redis cache: %v", err)
	}

	return nil
}

// SeedUsers creates an admin, a manager and three employees with plates
func (s *Seeder) SeedUsers() (map[string]uuid.UUID, error) {
	fmt.Println("  👤 Seeding users...")

	userIDs := make(map[string]uuid.UUID)

	usersData := []struct {
		key          string
		firstName    string
		lastName     string
		email        string
		role         users.Role
		licensePlate string
	}{
		{"admin", "Facilities", "Admin", "facilities@parkwise.test", users.RoleAdmin, ""},
		{"manager", "Priya", "Raman", "priya.raman@parkwise.test", users.RoleManager, "KA-05-MJ-7712"},
		{"user1", "Daniel", "Okafor", "daniel.okafor@parkwise.test", users.RoleUser, "KA-01-AB-1234"},
		{"user2", "Mina", "Haddad", "mina.haddad@parkwise.test", users.RoleUser, "KA-03-CD-5678"},
		{"user3", "Jonas", "Keller", "jonas.keller@parkwise.test", users.RoleUser, "KA-02-EF-9012"},
	}

	for _, userData := range usersData {
		user := users.User{
			ID:           uuid.New(),
			FirstName:    userData.firstName,
			LastName:     userData.lastName,
			Email:        userData.email,
			Role:         userData.role,
			LicensePlate: userData.licensePlate,
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
		}

		if err := s.db.PostgreSQL.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user %s: %w", userData.email, err)
		}

		userIDs[userData.key] = user.ID
		fmt.Printf("    ✅ Created user: %s (%s)\n", user.Email, user.Role)
	}

	return userIDs, nil
}

// SeedParking creates two garages with numbered spots
func (s *Seeder) SeedParking() error {
	fmt.Println("  🅿️ Seeding parking groups and spots...")

	groupsData := []struct {
		name        string
		description string
		priority    int
		spots       int
		prefix      string
	}{
		{"Main Garage", "Underground garage below the main office", 1, 8, "A"},
		{"North Lot", "Open-air lot next to the north entrance", 2, 4, "N"},
	}

	for _, groupData := range groupsData {
		group := parking.ParkingGroup{
			ID:          uuid.New(),
			Name:        groupData.name,
			Description: groupData.description,
			Priority:    groupData.priority,
			CreatedAt:   time.Now(),
			UpdatedAt:   time.Now(),
		}
		if err := s.db.PostgreSQL.Create(&group).Error; err != nil {
			return fmt.Errorf("failed to create group %s: %w", group.Name, err)
		}
		fmt.Printf("    ✅ Created group: %s\n", group.Name)

		for i := 1; i <= groupData.spots; i++ {
			spot := parking.ParkingSpot{
				ID:        uuid.New(),
				GroupID:   group.ID,
				Number:    fmt.Sprintf("%s-%02d", groupData.prefix, i),
				Active:    true,
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			}
			if err := s.db.PostgreSQL.Create(&spot).Error; err != nil {
				return fmt.Errorf("failed to create spot %s: %w", spot.Number, err)
			}
		}
		fmt.Printf("    ✅ Created %d spots in %s\n", groupData.spots, group.Name)
	}

	return nil
}

// SeedSettings writes the default waitlist configuration singleton
func (s *Seeder) SeedSettings() error {
	fmt.Println("  ⚙️ Seeding waitlist settings...")

	settings := waitlist.DefaultSettings()
	if err := s.db.PostgreSQL.Create(settings).Error; err != nil {
		return fmt.Errorf("failed to create settings: %w", err)
	}
	fmt.Println("    ✅ Created default waitlist settings")
	return nil
}
