package service

import (
	"context"
	"errors"
	"strconv"

	"snapshare/internal/models"
	"snapshare/internal/repository"
	"snapshare/internal/session"
	"snapshare/internal/validation"
)

// CurrentPostSlot is the session slot holding the id of the open post.
const CurrentPostSlot = "current_post"

// NavigationService drives the per-session "open post" state: Idle until a post
// is selected, then PostOpen(id) until another selection, Close, or session expiry.
type NavigationService struct {
	sessions   session.Store
	posts      repository.PostRepository
	comments   repository.CommentRepository
	audit      repository.AuditRepository
	aggregator *Aggregator
}

func NewNavigationService(
	sessions session.Store,
	posts repository.PostRepository,
	comments repository.CommentRepository,
	audit repository.AuditRepository,
	aggregator *Aggregator,
) *NavigationService {
	return &NavigationService{
		sessions:   sessions,
		posts:      posts,
		comments:   comments,
		audit:      audit,
		aggregator: aggregator,
	}
}

func sessionError(err error) error {
	if errors.Is(err, session.ErrNotFound) {
		return models.NewUnauthorizedError("Session expired")
	}
	return models.NewInternalError(err)
}

// SelectPost opens the post with the given title and records the view. An
// unknown title leaves the current selection untouched.
func (s *NavigationService) SelectPost(ctx context.Context, sid, title string) (*models.Post, error) {
	post, err := s.posts.GetByTitle(ctx, title)
	if err != nil {
		return nil, err
	}
	// The slot is set first so an expired session never reaches the log.
	if err := s.sessions.Set(ctx, sid, CurrentPostSlot, strconv.FormatUint(uint64(post.ID), 10)); err != nil {
		return nil, sessionError(err)
	}
	if err := s.audit.AppendLastViewed(ctx, post.ID, post.Title); err != nil {
		return nil, err
	}
	return post, nil
}

// CurrentPostID returns the open post's id, or NotFound when Idle.
func (s *NavigationService) CurrentPostID(ctx context.Context, sid string) (uint, error) {
	raw, ok, err := s.sessions.Value(ctx, sid, CurrentPostSlot)
	if err != nil {
		return 0, sessionError(err)
	}
	if !ok {
		return 0, models.NewNotFoundError("Current post", "(no post selected)")
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, models.NewNotFoundError("Current post", raw)
	}
	return uint(id), nil
}

// CurrentPost builds the detail view of the open post.
func (s *NavigationService) CurrentPost(ctx context.Context, sid string) (models.PostDetailView, error) {
	id, err := s.CurrentPostID(ctx, sid)
	if err != nil {
		return models.PostDetailView{}, err
	}
	return s.aggregator.BuildPostDetail(ctx, id)
}

// AddComment attaches text to the open post on behalf of accountID.
func (s *NavigationService) AddComment(ctx context.Context, sid string, accountID uint, text string) (*models.Comment, error) {
	if accountID == 0 {
		return nil, models.NewUnauthorizedError("Sign in required")
	}
	if err := validation.ValidateComment(text); err != nil {
		return nil, err
	}
	postID, err := s.CurrentPostID(ctx, sid)
	if err != nil {
		return nil, err
	}
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	comment := &models.Comment{PostID: postID, AccountID: accountID, Text: text}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// Close returns the session to Idle.
func (s *NavigationService) Close(ctx context.Context, sid string) error {
	if err := s.sessions.Delete(ctx, sid, CurrentPostSlot); err != nil {
		return sessionError(err)
	}
	return nil
}
