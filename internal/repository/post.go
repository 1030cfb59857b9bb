package repository

import (
	"context"

	"snapshare/internal/models"
	"snapshare/internal/observability"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	GetByTitle(ctx context.Context, title string) (*models.Post, error)
	ListAll(ctx context.Context, newestFirst bool) ([]*models.Post, error)
	ListByAccount(ctx context.Context, accountID uint) ([]*models.Post, error)
	ImageInUse(ctx context.Context, key string) (bool, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("insert", "posts")()

	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewDuplicateKeyError("title", "A post with this title already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, notFoundOrInternal(err, "Post", id)
	}
	return &post, nil
}

func (r *postRepository) GetByTitle(ctx context.Context, title string) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Where("title = ?", title).First(&post).Error; err != nil {
		return nil, notFoundOrInternal(err, "Post", title)
	}
	return &post, nil
}

// ListAll re-scans every post. Ids grow with insertion, so ordering by id gives
// insertion order even when timestamps collide.
func (r *postRepository) ListAll(ctx context.Context, newestFirst bool) ([]*models.Post, error) {
	defer observability.TrackQuery("select", "posts")()

	order := "id ASC"
	if newestFirst {
		order = "id DESC"
	}
	var posts []*models.Post
	if err := r.db.WithContext(ctx).Order(order).Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) ListByAccount(ctx context.Context, accountID uint) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("id ASC").
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// ImageInUse reports whether any post points at the stored image key.
func (r *postRepository) ImageInUse(ctx context.Context, key string) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Where("image_path = ?", key).Limit(1).Count(&n).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return n > 0, nil
}
