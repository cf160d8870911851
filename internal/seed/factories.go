package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"ripple/internal/models"

	"github.com/brianvoe/gofakeit/v6"
)

// Factory builds domain entities with realistic fake data. It does not
// persist anything itself.
type Factory struct {
	rng *rand.Rand
}

// NewFactory creates a new Factory with its own random source.
func NewFactory() *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// BuildUser constructs an unsaved user with a unique fake identity. The
// caller supplies the already-hashed password so hashing happens once per
// seed run, not once per user.
func (f *Factory) BuildUser(hashedPassword string) *models.User {
	first := gofakeit.FirstName()
	last := gofakeit.LastName()
	return &models.User{
		Name:     first + " " + last,
		Email:    f.uniqueEmail(first, last),
		Password: hashedPassword,
		Status:   gofakeit.Quote(),
	}
}

// BuildPost constructs an unsaved post for the given author with a realistic
// created_at spread over the past 90 days.
func (f *Factory) BuildPost(author *models.User) *models.Post {
	post := &models.Post{
		Title:    gofakeit.Sentence(5),
		Content:  gofakeit.Paragraph(1, 3, 8, "\n"),
		ImageURL: fmt.Sprintf("https://picsum.photos/seed/%s/800/800", gofakeit.UUID()),
		UserID:   author.ID,
	}

	daysBack := f.rng.Intn(90)
	hoursBack := f.rng.Intn(24)
	minsBack := f.rng.Intn(60)
	post.CreatedAt = time.Now().
		Add(-time.Duration(daysBack)*24*time.Hour -
			time.Duration(hoursBack)*time.Hour -
			time.Duration(minsBack)*time.Minute)
	return post
}

func (f *Factory) uniqueEmail(first, last string) string {
	return fmt.Sprintf("%s.%s.%d@example.com",
		strings.ToLower(first), strings.ToLower(last), f.rng.Intn(1_000_000))
}
