package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"mime"
	"net/http"
	"path"
	"strings"

	"snapshare/internal/config"
	"snapshare/internal/middleware"
	"snapshare/internal/models"
	"snapshare/internal/observability"
	"snapshare/internal/repository"
	"snapshare/internal/storage"
	"snapshare/internal/validation"

	_ "golang.org/x/image/webp" // Register WebP decoder
)

const DefaultImageMaxUploadSizeMB = 10

// MediaPrefix is the URL prefix blobs are served under.
const MediaPrefix = "/media/"

// ImageUpload is an uploaded file as received from the multipart form.
type ImageUpload struct {
	Filename string
	Content  []byte
}

type CreatePostInput struct {
	AccountID   uint
	Image       ImageUpload
	Title       string
	Description string
}

type ContentService struct {
	profiles           repository.ProfileRepository
	posts              repository.PostRepository
	blobs              storage.Blob
	maxUploadSizeBytes int64
}

func NewContentService(
	profiles repository.ProfileRepository,
	posts repository.PostRepository,
	blobs storage.Blob,
	cfg *config.Config,
) *ContentService {
	maxBytes := int64(DefaultImageMaxUploadSizeMB) * 1024 * 1024
	if cfg != nil && cfg.ImageMaxUploadSizeMB > 0 {
		maxBytes = cfg.MaxUploadBytes()
	}
	return &ContentService{
		profiles:           profiles,
		posts:              posts,
		blobs:              blobs,
		maxUploadSizeBytes: maxBytes,
	}
}

// MediaURL maps a stored key to the path the media route serves it from.
func MediaURL(key string) string {
	if key == "" {
		return ""
	}
	return MediaPrefix + key
}

// checkImage validates the upload and returns its extension and content type.
func (s *ContentService) checkImage(img ImageUpload) (string, string, error) {
	if len(img.Content) == 0 {
		return "", "", models.NewFieldValidationError("photo", "No file uploaded")
	}
	if int64(len(img.Content)) > s.maxUploadSizeBytes {
		return "", "", models.NewFieldValidationError("photo",
			fmt.Sprintf("File too large (max %dMB)", s.maxUploadSizeBytes/(1024*1024)))
	}
	ext, err := validation.ImageExt(img.Filename)
	if err != nil {
		return "", "", err
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(img.Content))
	if err != nil {
		return "", "", models.NewFieldValidationError("photo", "Invalid image file")
	}
	switch format {
	case "jpeg", "png", "gif", "webp":
	default:
		return "", "", models.NewFieldValidationError("photo", "Unsupported image format")
	}
	return ext, "image/" + format, nil
}

// storeImage writes the image under accounts/<id>/<sha256><ext>. It reports
// whether this call created the blob, so callers only clean up what they wrote.
func (s *ContentService) storeImage(ctx context.Context, accountID uint, img ImageUpload) (string, bool, error) {
	ext, contentType, err := s.checkImage(img)
	if err != nil {
		return "", false, err
	}

	sum := sha256.Sum256(img.Content)
	key := fmt.Sprintf("accounts/%d/%s%s", accountID, hex.EncodeToString(sum[:]), ext)

	existed, err := s.blobs.Exists(ctx, key)
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "blob lookup failed", "key", key, "error", err)
		return "", false, models.NewStorageError(err)
	}
	if existed {
		return key, false, nil
	}
	if err := s.blobs.Put(ctx, key, img.Content, contentType); err != nil {
		middleware.Logger.ErrorContext(ctx, "blob write failed", "key", key, "error", err)
		return "", false, models.NewStorageError(err)
	}
	return key, true, nil
}

// UploadProfileImage stores the image and appends a profile record. Nothing is
// recorded when the blob write fails.
func (s *ContentService) UploadProfileImage(ctx context.Context, accountID uint, img ImageUpload) (string, error) {
	if accountID == 0 {
		return "", models.NewUnauthorizedError("Sign in required")
	}
	ctx, finish := observability.StartSpan(ctx, "content", "UploadProfileImage")
	var err error
	defer func() { finish(err) }()

	key, created, err := s.storeImage(ctx, accountID, img)
	if err != nil {
		return "", err
	}
	if err = s.profiles.Append(ctx, &models.ProfileRecord{AccountID: accountID, ImagePath: key}); err != nil {
		if created {
			s.releaseBlob(ctx, key)
		}
		return "", err
	}
	if !created {
		s.restoreBlob(ctx, key, img)
	}
	observability.ContentCreated.WithLabelValues("profile_image").Inc()
	return key, nil
}

// CreatePost validates the fields, stores the image and inserts the post. A
// duplicate title surfaces as DuplicateKeyError; the blob written by this call
// is removed unless a concurrent post or profile record already points at it.
func (s *ContentService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if in.AccountID == 0 {
		return nil, models.NewUnauthorizedError("Sign in required")
	}
	ctx, finish := observability.StartSpan(ctx, "content", "CreatePost")
	var err error
	defer func() { finish(err) }()

	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	if err = validation.ValidatePostFields(title, description); err != nil {
		return nil, err
	}

	key, created, err := s.storeImage(ctx, in.AccountID, in.Image)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		AccountID:   in.AccountID,
		ImagePath:   key,
		Title:       title,
		Description: description,
	}
	if err = s.posts.Create(ctx, post); err != nil {
		if created {
			s.releaseBlob(ctx, key)
		}
		return nil, err
	}
	if !created {
		s.restoreBlob(ctx, key, in.Image)
	}
	observability.ContentCreated.WithLabelValues("post").Inc()
	middleware.Logger.InfoContext(ctx, "post created", "post_id", post.ID)
	return post, nil
}

// releaseBlob deletes a blob this call wrote once its insert failed. Keys are
// content-addressed, so another request may have committed a row for the same
// key in the meantime; such blobs stay.
func (s *ContentService) releaseBlob(ctx context.Context, key string) {
	inUse, err := s.imageInUse(ctx, key)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "blob reference check failed, keeping blob", "key", key, "error", err)
		return
	}
	if inUse {
		return
	}
	if err := s.blobs.Delete(ctx, key); err != nil {
		middleware.Logger.WarnContext(ctx, "orphaned blob not removed", "key", key, "error", err)
	}
}

func (s *ContentService) imageInUse(ctx context.Context, key string) (bool, error) {
	inUse, err := s.posts.ImageInUse(ctx, key)
	if err != nil || inUse {
		return inUse, err
	}
	return s.profiles.ImageInUse(ctx, key)
}

// restoreBlob rewrites a reused blob that a failed concurrent upload removed
// between our existence check and our commit.
func (s *ContentService) restoreBlob(ctx context.Context, key string, img ImageUpload) {
	exists, err := s.blobs.Exists(ctx, key)
	if err != nil || exists {
		return
	}
	_, contentType, _ := s.checkImage(img)
	if err := s.blobs.Put(ctx, key, img.Content, contentType); err != nil {
		middleware.Logger.ErrorContext(ctx, "blob restore failed", "key", key, "error", err)
	}
}

// EffectiveProfileImage returns the key of the newest profile image, or "".
func (s *ContentService) EffectiveProfileImage(ctx context.Context, accountID uint) (string, error) {
	return effectiveProfileImage(ctx, s.profiles, accountID)
}

func effectiveProfileImage(ctx context.Context, profiles repository.ProfileRepository, accountID uint) (string, error) {
	record, err := profiles.Latest(ctx, accountID)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return "", nil
		}
		return "", err
	}
	return record.ImagePath, nil
}

// OpenImage reads a stored blob for serving.
func (s *ContentService) OpenImage(ctx context.Context, key string) ([]byte, string, error) {
	key = strings.TrimPrefix(path.Clean("/"+key), "/")
	if key == "" {
		return nil, "", models.NewNotFoundError("Image", key)
	}
	data, err := s.blobs.Get(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, "", models.NewNotFoundError("Image", key)
		}
		middleware.Logger.ErrorContext(ctx, "blob read failed", "key", key, "error", err)
		return nil, "", models.NewStorageError(err)
	}
	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return data, contentType, nil
}
