// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"log"

	"ripple/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password every seeded user gets.
const DefaultPassword = "password123"

// Options controls how much data the seeder creates.
type Options struct {
	Users int
	Posts int
	Clean bool
}

// Seeder populates the database with demo users and posts.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db, factory: NewFactory()}
}

// ClearAll removes all seeded data. Posts go first so the user foreign key
// never dangles mid-wipe.
func (s *Seeder) ClearAll() error {
	log.Println("Clearing existing data...")
	if err := s.db.Unscoped().Where("1 = 1").Delete(&models.Post{}).Error; err != nil {
		return fmt.Errorf("clearing posts: %w", err)
	}
	if err := s.db.Unscoped().Where("1 = 1").Delete(&models.User{}).Error; err != nil {
		return fmt.Errorf("clearing users: %w", err)
	}
	return nil
}

// Run seeds the database according to opts.
func (s *Seeder) Run(opts Options) error {
	if opts.Clean {
		if err := s.ClearAll(); err != nil {
			return err
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	if err != nil {
		return fmt.Errorf("hashing seed password: %w", err)
	}

	users := make([]*models.User, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		user := s.factory.BuildUser(string(hashed))
		if err := s.db.Create(user).Error; err != nil {
			return fmt.Errorf("creating seed user: %w", err)
		}
		users = append(users, user)
	}
	log.Printf("Created %d users", len(users))

	if len(users) == 0 {
		return nil
	}

	posts := 0
	for i := 0; i < opts.Posts; i++ {
		author := users[i%len(users)]
		post := s.factory.BuildPost(author)
		if err := s.db.Create(post).Error; err != nil {
			return fmt.Errorf("creating seed post: %w", err)
		}
		posts++
	}
	log.Printf("Created %d posts", posts)

	return nil
}
