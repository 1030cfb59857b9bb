package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"snapshare/internal/config"
	"snapshare/internal/models"
	"snapshare/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentService_ProfileImageLatestWins(t *testing.T) {
	env := newTestEnv(t)
	acc := env.register(t, "alice")
	ctx := context.Background()

	img, err := env.content.EffectiveProfileImage(ctx, acc.ID)
	require.NoError(t, err)
	assert.Empty(t, img)

	first, err := env.content.UploadProfileImage(ctx, acc.ID, ImageUpload{Filename: "i1.png", Content: testutil.TinyPNG(t, 1, 1)})
	require.NoError(t, err)
	second, err := env.content.UploadProfileImage(ctx, acc.ID, ImageUpload{Filename: "i2.gif", Content: testutil.TinyGIF(t)})
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	assert.True(t, strings.HasPrefix(second, "accounts/"))
	assert.True(t, strings.HasSuffix(second, ".gif"))

	img, err = env.content.EffectiveProfileImage(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, second, img)
}

func TestContentService_UploadStorageFailure(t *testing.T) {
	env := newTestEnv(t)
	acc := env.register(t, "alice")
	env.blobs.PutErr = errors.New("disk full")
	ctx := context.Background()

	_, err := env.content.UploadProfileImage(ctx, acc.ID, ImageUpload{Filename: "a.png", Content: testutil.TinyPNG(t, 1, 1)})
	assertCode(t, err, models.CodeStorage)
	assert.NotContains(t, err.(*models.AppError).Message, "disk full")

	var records int64
	require.NoError(t, env.db.Model(&models.ProfileRecord{}).Count(&records).Error)
	assert.Zero(t, records)

	_, err = env.content.CreatePost(ctx, CreatePostInput{
		AccountID: acc.ID, Image: ImageUpload{Filename: "a.png", Content: testutil.TinyPNG(t, 1, 1)},
		Title: "Sunset", Description: "d",
	})
	assertCode(t, err, models.CodeStorage)
	var posts int64
	require.NoError(t, env.db.Model(&models.Post{}).Count(&posts).Error)
	assert.Zero(t, posts)
}

func TestContentService_ImageValidation(t *testing.T) {
	env := newTestEnv(t)
	acc := env.register(t, "alice")
	ctx := context.Background()
	small := NewContentService(env.profiles, env.posts, env.blobs, &config.Config{ImageMaxUploadSizeMB: 1})

	tests := []struct {
		name string
		svc  *ContentService
		img  ImageUpload
	}{
		{"empty", env.content, ImageUpload{Filename: "a.png"}},
		{"bad extension", env.content, ImageUpload{Filename: "a.txt", Content: testutil.TinyPNG(t, 1, 1)}},
		{"not an image", env.content, ImageUpload{Filename: "a.png", Content: []byte("hello world")}},
		{"too large", small, ImageUpload{Filename: "a.png", Content: bytes.Repeat([]byte{0}, 1024*1024+1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.svc.UploadProfileImage(ctx, acc.ID, tt.img)
			assertCode(t, err, models.CodeValidation)
		})
	}
	assert.Zero(t, env.blobs.Len())
}

func TestContentService_CreatePostValidation(t *testing.T) {
	env := newTestEnv(t)
	acc := env.register(t, "alice")
	ctx := context.Background()
	img := ImageUpload{Filename: "a.png", Content: testutil.TinyPNG(t, 1, 1)}

	tests := []struct {
		name        string
		title, desc string
	}{
		{"blank title", "   ", "d"},
		{"blank description", "Sunset", ""},
		{"long title", strings.Repeat("x", models.MaxTitleLen+1), "d"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.content.CreatePost(ctx, CreatePostInput{AccountID: acc.ID, Image: img, Title: tt.title, Description: tt.desc})
			assertCode(t, err, models.CodeValidation)
		})
	}

	_, err := env.content.CreatePost(ctx, CreatePostInput{Image: img, Title: "Sunset", Description: "d"})
	assertCode(t, err, models.CodeUnauthorized)
}

func TestContentService_DuplicateTitle(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	ctx := context.Background()

	env.post(t, alice.ID, "X")
	before := env.blobs.Len()

	_, err := env.content.CreatePost(ctx, CreatePostInput{
		AccountID: bob.ID, Image: ImageUpload{Filename: "b.png", Content: testutil.TinyPNG(t, 9, 9)},
		Title: "X", Description: "again",
	})
	assertCode(t, err, models.CodeDuplicateKey)

	var count int64
	require.NoError(t, env.db.Model(&models.Post{}).Where("title = ?", "X").Count(&count).Error)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, before, env.blobs.Len(), "blob written for the rejected post is removed")
}

func TestContentService_DuplicateTitleKeepsSharedBlob(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	ctx := context.Background()
	img := ImageUpload{Filename: "a.png", Content: testutil.TinyPNG(t, 3, 3)}

	first, err := env.content.CreatePost(ctx, CreatePostInput{AccountID: alice.ID, Image: img, Title: "One", Description: "d"})
	require.NoError(t, err)

	_, err = env.content.CreatePost(ctx, CreatePostInput{AccountID: alice.ID, Image: img, Title: "One", Description: "d"})
	assertCode(t, err, models.CodeDuplicateKey)

	ok, err := env.blobs.Exists(ctx, first.ImagePath)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestContentService_FailedCreateKeepsBlobOfConcurrentPost(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	ctx := context.Background()
	env.post(t, alice.ID, "Taken")

	entered := make(chan struct{})
	release := make(chan struct{})
	posts := wrapPostRepo(env.posts)
	posts.createFn = func(ctx context.Context, p *models.Post) error {
		if p.Title == "Taken" {
			close(entered)
			<-release
		}
		return env.posts.Create(ctx, p)
	}
	svc := NewContentService(env.profiles, posts, env.blobs, nil)
	img := ImageUpload{Filename: "shared.png", Content: testutil.TinyPNG(t, 7, 5)}

	loserErr := make(chan error, 1)
	go func() {
		_, err := svc.CreatePost(ctx, CreatePostInput{AccountID: bob.ID, Image: img, Title: "Taken", Description: "d"})
		loserErr <- err
	}()
	<-entered

	// The loser has written the blob and is parked inside the insert.
	winner, err := svc.CreatePost(ctx, CreatePostInput{AccountID: bob.ID, Image: img, Title: "Fresh", Description: "d"})
	require.NoError(t, err)

	close(release)
	assertCode(t, <-loserErr, models.CodeDuplicateKey)

	data, _, err := svc.OpenImage(ctx, winner.ImagePath)
	require.NoError(t, err)
	assert.Equal(t, img.Content, data)
	assert.Empty(t, env.blobs.Deleted)
}

func TestContentService_CreateRestoresReusedBlob(t *testing.T) {
	env := newTestEnv(t)
	bob := env.register(t, "bob")
	ctx := context.Background()
	img := ImageUpload{Filename: "shared.png", Content: testutil.TinyPNG(t, 4, 4)}

	_, err := env.content.UploadProfileImage(ctx, bob.ID, img)
	require.NoError(t, err)

	// Simulate a failed concurrent upload removing the blob after our
	// existence check but before our row commits.
	posts := wrapPostRepo(env.posts)
	posts.createFn = func(ctx context.Context, p *models.Post) error {
		require.NoError(t, env.blobs.Delete(ctx, p.ImagePath))
		return env.posts.Create(ctx, p)
	}
	svc := NewContentService(env.profiles, posts, env.blobs, nil)

	post, err := svc.CreatePost(ctx, CreatePostInput{AccountID: bob.ID, Image: img, Title: "Fresh", Description: "d"})
	require.NoError(t, err)

	data, contentType, err := svc.OpenImage(ctx, post.ImagePath)
	require.NoError(t, err)
	assert.Equal(t, img.Content, data)
	assert.Equal(t, "image/png", contentType)
}

func TestContentService_FailedProfileAppendKeepsReferencedBlob(t *testing.T) {
	blobs := testutil.NewBlobStub()
	profiles := &profileRepoStub{
		appendFn: func(context.Context, *models.ProfileRecord) error {
			return models.NewInternalError(errors.New("db down"))
		},
		latestFn: func(context.Context, uint) (*models.ProfileRecord, error) { return nil, models.NewNotFoundError("x", 1) },
	}
	posts := noopPostRepo()
	posts.imageInUseFn = func(context.Context, string) (bool, error) { return true, nil }
	svc := NewContentService(profiles, posts, blobs, nil)

	_, err := svc.UploadProfileImage(context.Background(), 1, ImageUpload{Filename: "a.png", Content: testutil.TinyPNG(t, 1, 1)})
	assertCode(t, err, models.CodeInternal)
	assert.Equal(t, 1, blobs.Len())
	assert.Empty(t, blobs.Deleted)
}

func TestContentService_RepoFailureRemovesBlob(t *testing.T) {
	blobs := testutil.NewBlobStub()
	posts := noopPostRepo()
	posts.createFn = func(context.Context, *models.Post) error {
		return models.NewInternalError(errors.New("db down"))
	}
	profiles := &profileRepoStub{
		appendFn: func(context.Context, *models.ProfileRecord) error { return nil },
		latestFn: func(context.Context, uint) (*models.ProfileRecord, error) { return nil, models.NewNotFoundError("x", 1) },
	}
	svc := NewContentService(profiles, posts, blobs, nil)

	_, err := svc.CreatePost(context.Background(), CreatePostInput{
		AccountID: 1, Image: ImageUpload{Filename: "a.png", Content: testutil.TinyPNG(t, 1, 1)},
		Title: "T", Description: "d",
	})
	assertCode(t, err, models.CodeInternal)
	assert.Zero(t, blobs.Len())
	assert.Len(t, blobs.Deleted, 1)
}

func TestContentService_OpenImage(t *testing.T) {
	env := newTestEnv(t)
	acc := env.register(t, "alice")
	ctx := context.Background()
	png := testutil.TinyPNG(t, 1, 1)

	key, err := env.content.UploadProfileImage(ctx, acc.ID, ImageUpload{Filename: "a.png", Content: png})
	require.NoError(t, err)

	data, contentType, err := env.content.OpenImage(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, png, data)
	assert.Equal(t, "image/png", contentType)

	_, _, err = env.content.OpenImage(ctx, "accounts/1/missing.png")
	assertCode(t, err, models.CodeNotFound)

	_, _, err = env.content.OpenImage(ctx, "")
	assertCode(t, err, models.CodeNotFound)
}

func TestMediaURL(t *testing.T) {
	assert.Equal(t, "", MediaURL(""))
	assert.Equal(t, "/media/accounts/1/x.png", MediaURL("accounts/1/x.png"))
}
