package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"snapshare/internal/models"
	"snapshare/internal/repository"
	"snapshare/internal/session"
	"snapshare/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type testEnv struct {
	db         *gorm.DB
	accounts   repository.AccountRepository
	profiles   repository.ProfileRepository
	posts      repository.PostRepository
	comments   repository.CommentRepository
	audit      repository.AuditRepository
	sessions   *session.MemoryStore
	blobs      *testutil.BlobStub
	identity   *IdentityService
	content    *ContentService
	aggregator *Aggregator
	navigation *NavigationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewTestDB(t)
	env := &testEnv{
		db:       db,
		accounts: repository.NewAccountRepository(db),
		profiles: repository.NewProfileRepository(db),
		posts:    repository.NewPostRepository(db),
		comments: repository.NewCommentRepository(db),
		audit:    repository.NewAuditRepository(db, 100),
		sessions: session.NewMemoryStore(time.Hour),
		blobs:    testutil.NewBlobStub(),
	}
	env.identity = newIdentityService(env.accounts, env.sessions, "test-secret", bcrypt.MinCost)
	env.content = NewContentService(env.profiles, env.posts, env.blobs, nil)
	env.aggregator = NewAggregator(env.accounts, env.profiles, env.posts, env.comments, env.audit)
	env.navigation = NewNavigationService(env.sessions, env.posts, env.comments, env.audit, env.aggregator)
	return env
}

func (e *testEnv) register(t *testing.T, username string) *models.Account {
	t.Helper()
	acc, err := e.identity.Register(context.Background(), RegisterInput{
		Username:             username,
		Email:                username + "@example.com",
		Password:             "secret1",
		PasswordConfirmation: "secret1",
	})
	require.NoError(t, err)
	return acc
}

func (e *testEnv) post(t *testing.T, owner uint, title string) *models.Post {
	t.Helper()
	post, err := e.content.CreatePost(context.Background(), CreatePostInput{
		AccountID:   owner,
		Image:       ImageUpload{Filename: "photo.png", Content: testutil.TinyPNG(t, 2+int(owner), len(title)+1)},
		Title:       title,
		Description: "about " + title,
	})
	require.NoError(t, err)
	return post
}

func (e *testEnv) login(t *testing.T, username string) *AuthResult {
	t.Helper()
	res, err := e.identity.Authenticate(context.Background(), username, "secret1")
	require.NoError(t, err)
	return res
}

func (e *testEnv) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(model).Count(&n).Error)
	return n
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn        func(context.Context, *models.Post) error
	getByIDFn       func(context.Context, uint) (*models.Post, error)
	getByTitleFn    func(context.Context, string) (*models.Post, error)
	listAllFn       func(context.Context, bool) ([]*models.Post, error)
	listByAccountFn func(context.Context, uint) ([]*models.Post, error)
	imageInUseFn    func(context.Context, string) (bool, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) GetByTitle(ctx context.Context, title string) (*models.Post, error) {
	return s.getByTitleFn(ctx, title)
}
func (s *postRepoStub) ListAll(ctx context.Context, newestFirst bool) ([]*models.Post, error) {
	return s.listAllFn(ctx, newestFirst)
}
func (s *postRepoStub) ListByAccount(ctx context.Context, accountID uint) ([]*models.Post, error) {
	return s.listByAccountFn(ctx, accountID)
}
func (s *postRepoStub) ImageInUse(ctx context.Context, key string) (bool, error) {
	return s.imageInUseFn(ctx, key)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:        func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn:       func(_ context.Context, _ uint) (*models.Post, error) { return &models.Post{}, nil },
		getByTitleFn:    func(_ context.Context, _ string) (*models.Post, error) { return &models.Post{}, nil },
		listAllFn:       func(_ context.Context, _ bool) ([]*models.Post, error) { return nil, nil },
		listByAccountFn: func(_ context.Context, _ uint) ([]*models.Post, error) { return nil, nil },
		imageInUseFn:    func(_ context.Context, _ string) (bool, error) { return false, nil },
	}
}

// wrapPostRepo delegates every call to repo so a test can override one of them.
func wrapPostRepo(repo repository.PostRepository) *postRepoStub {
	return &postRepoStub{
		createFn:        repo.Create,
		getByIDFn:       repo.GetByID,
		getByTitleFn:    repo.GetByTitle,
		listAllFn:       repo.ListAll,
		listByAccountFn: repo.ListByAccount,
		imageInUseFn:    repo.ImageInUse,
	}
}

// profileRepoStub is a stub for repository.ProfileRepository.
type profileRepoStub struct {
	appendFn func(context.Context, *models.ProfileRecord) error
	latestFn func(context.Context, uint) (*models.ProfileRecord, error)
	inUseFn  func(context.Context, string) (bool, error)
}

func (s *profileRepoStub) Append(ctx context.Context, r *models.ProfileRecord) error {
	return s.appendFn(ctx, r)
}
func (s *profileRepoStub) Latest(ctx context.Context, accountID uint) (*models.ProfileRecord, error) {
	return s.latestFn(ctx, accountID)
}
func (s *profileRepoStub) ImageInUse(ctx context.Context, key string) (bool, error) {
	if s.inUseFn == nil {
		return false, nil
	}
	return s.inUseFn(ctx, key)
}
