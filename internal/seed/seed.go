// Package seed populates the database with demo accounts, posts and comments.
// It goes through the services so seeded data obeys the same uniqueness and
// storage rules as user-created data.
package seed

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"strings"

	"snapshare/internal/models"
	"snapshare/internal/repository"
	"snapshare/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// DefaultPassword is the password every seeded account is registered with.
const DefaultPassword = "password123"

// Options configuration for the seeder
type Options struct {
	Accounts        int
	PostsPerAccount int
	CommentsPerPost int
	ShouldClean     bool
}

// Result counts what a run created.
type Result struct {
	Accounts []*models.Account
	Posts    []*models.Post
	Comments int
}

// Seeder creates demo data through the application services.
type Seeder struct {
	db       *gorm.DB
	identity *service.IdentityService
	content  *service.ContentService
	comments repository.CommentRepository
	faker    *gofakeit.Faker
}

// NewSeeder builds a seeder. A fixed seed gives reproducible data.
func NewSeeder(
	db *gorm.DB,
	identity *service.IdentityService,
	content *service.ContentService,
	comments repository.CommentRepository,
	seed int64,
) *Seeder {
	return &Seeder{
		db:       db,
		identity: identity,
		content:  content,
		comments: comments,
		faker:    gofakeit.New(seed),
	}
}

// Run seeds accounts, then posts for each account, then comments on each post.
func (s *Seeder) Run(ctx context.Context, opts Options) (*Result, error) {
	log.Printf("🌱 Seeding %d accounts with %d posts each...", opts.Accounts, opts.PostsPerAccount)

	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			return nil, fmt.Errorf("failed to clear data: %w", err)
		}
	}

	res := &Result{}
	for i := 0; i < opts.Accounts; i++ {
		acc, err := s.createAccount(ctx)
		if err != nil {
			return res, fmt.Errorf("failed to create account: %w", err)
		}
		res.Accounts = append(res.Accounts, acc)

		if _, err := s.content.UploadProfileImage(ctx, acc.ID, s.image("avatar")); err != nil {
			return res, fmt.Errorf("failed to upload profile image: %w", err)
		}
	}
	log.Printf("✓ %d accounts created", len(res.Accounts))

	for _, acc := range res.Accounts {
		for i := 0; i < opts.PostsPerAccount; i++ {
			post, err := s.createPost(ctx, acc.ID)
			if err != nil {
				return res, fmt.Errorf("failed to create post: %w", err)
			}
			res.Posts = append(res.Posts, post)
		}
	}
	log.Printf("✓ %d posts created", len(res.Posts))

	if len(res.Accounts) > 0 {
		for _, post := range res.Posts {
			for i := 0; i < opts.CommentsPerPost; i++ {
				author := res.Accounts[s.faker.Number(0, len(res.Accounts)-1)]
				comment := &models.Comment{PostID: post.ID, AccountID: author.ID, Text: s.faker.Sentence(8)}
				if err := s.comments.Create(ctx, comment); err != nil {
					return res, fmt.Errorf("failed to create comment: %w", err)
				}
				res.Comments++
			}
		}
	}
	log.Printf("✓ %d comments created", res.Comments)
	return res, nil
}

// ClearAll removes every row the application owns, children first.
func (s *Seeder) ClearAll() error {
	log.Println("🗑️  Clearing existing data...")
	tx := s.db.Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, m := range []interface{}{
		&models.Comment{},
		&models.LastViewedPostLogEntry{},
		&models.SearchLogEntry{},
		&models.Post{},
		&models.ProfileRecord{},
		&models.Account{},
	} {
		if err := tx.Delete(m).Error; err != nil {
			return err
		}
	}
	return nil
}

// createAccount registers a fake account, retrying when the generated
// username or email is already taken.
func (s *Seeder) createAccount(ctx context.Context) (*models.Account, error) {
	const attempts = 5
	var lastErr error
	for i := 0; i < attempts; i++ {
		username := fmt.Sprintf("%s%d", s.faker.Username(), s.faker.Number(100, 999))
		acc, err := s.identity.Register(ctx, service.RegisterInput{
			Username:             username,
			Email:                strings.ToLower(username) + "@" + s.faker.DomainName(),
			Password:             DefaultPassword,
			PasswordConfirmation: DefaultPassword,
		})
		if err == nil {
			return acc, nil
		}
		if !models.IsCode(err, models.CodeDuplicateKey) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func (s *Seeder) createPost(ctx context.Context, accountID uint) (*models.Post, error) {
	const attempts = 5
	var lastErr error
	for i := 0; i < attempts; i++ {
		title := strings.TrimSuffix(s.faker.Sentence(s.faker.Number(2, 6)), ".")
		if len(title) > models.MaxTitleLen {
			title = title[:models.MaxTitleLen]
		}
		post, err := s.content.CreatePost(ctx, service.CreatePostInput{
			AccountID:   accountID,
			Image:       s.image("post"),
			Title:       title,
			Description: s.faker.Paragraph(1, 2, 10, " "),
		})
		if err == nil {
			return post, nil
		}
		if !models.IsCode(err, models.CodeDuplicateKey) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

// image renders a small solid-colour PNG so every seeded upload is a real image.
func (s *Seeder) image(prefix string) service.ImageUpload {
	w, h := s.faker.Number(8, 48), s.faker.Number(8, 48)
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	fill := color.RGBA{R: s.faker.Uint8(), G: s.faker.Uint8(), B: s.faker.Uint8(), A: 255}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, fill)
		}
	}
	var buf bytes.Buffer
	// Encoding an in-memory RGBA image cannot fail.
	_ = png.Encode(&buf, img)
	return service.ImageUpload{
		Filename: fmt.Sprintf("%s-%s.png", prefix, s.faker.UUID()),
		Content:  buf.Bytes(),
	}
}
