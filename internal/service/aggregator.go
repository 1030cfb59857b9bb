package service

import (
	"context"
	"net/url"

	"snapshare/internal/middleware"
	"snapshare/internal/models"
	"snapshare/internal/observability"
	"snapshare/internal/repository"
	"snapshare/internal/validation"
)

// Aggregator builds the read-side views by re-scanning the store on every call.
type Aggregator struct {
	accounts repository.AccountRepository
	profiles repository.ProfileRepository
	posts    repository.PostRepository
	comments repository.CommentRepository
	audit    repository.AuditRepository
}

func NewAggregator(
	accounts repository.AccountRepository,
	profiles repository.ProfileRepository,
	posts repository.PostRepository,
	comments repository.CommentRepository,
	audit repository.AuditRepository,
) *Aggregator {
	return &Aggregator{
		accounts: accounts,
		profiles: profiles,
		posts:    posts,
		comments: comments,
		audit:    audit,
	}
}

func (a *Aggregator) cards(ctx context.Context, posts []*models.Post) ([]models.PostCard, error) {
	ids := make([]uint, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.AccountID)
	}
	owners, err := a.accounts.ListUsernamesByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	cards := make([]models.PostCard, 0, len(posts))
	for _, p := range posts {
		cards = append(cards, models.PostCard{
			ID:            p.ID,
			Title:         p.Title,
			Description:   p.Description,
			ImagePath:     MediaURL(p.ImagePath),
			OwnerUsername: owners[p.AccountID],
		})
	}
	return cards, nil
}

// BuildFeed lists every post, newest first.
func (a *Aggregator) BuildFeed(ctx context.Context) (models.FeedView, error) {
	posts, err := a.posts.ListAll(ctx, true)
	if err != nil {
		return models.FeedView{}, err
	}
	cards, err := a.cards(ctx, posts)
	if err != nil {
		return models.FeedView{}, err
	}
	return models.FeedView{Posts: cards, Length: len(cards)}, nil
}

// BuildProfileView lists the account's own posts in insertion order.
func (a *Aggregator) BuildProfileView(ctx context.Context, accountID uint) (models.ProfileView, error) {
	account, err := a.accounts.GetByID(ctx, accountID)
	if err != nil {
		return models.ProfileView{}, err
	}
	return a.profileView(ctx, account)
}

// BuildProfileViewByUsername is the exact-match variant used by the search redirect target.
func (a *Aggregator) BuildProfileViewByUsername(ctx context.Context, username string) (models.ProfileView, error) {
	account, err := a.accounts.GetByUsername(ctx, username)
	if err != nil {
		return models.ProfileView{}, err
	}
	return a.profileView(ctx, account)
}

func (a *Aggregator) profileView(ctx context.Context, account *models.Account) (models.ProfileView, error) {
	image, err := effectiveProfileImage(ctx, a.profiles, account.ID)
	if err != nil {
		return models.ProfileView{}, err
	}
	posts, err := a.posts.ListByAccount(ctx, account.ID)
	if err != nil {
		return models.ProfileView{}, err
	}
	cards := make([]models.PostCard, 0, len(posts))
	for _, p := range posts {
		cards = append(cards, models.PostCard{
			ID:            p.ID,
			Title:         p.Title,
			Description:   p.Description,
			ImagePath:     MediaURL(p.ImagePath),
			OwnerUsername: account.Username,
		})
	}
	return models.ProfileView{
		AccountID:    account.ID,
		Username:     account.Username,
		ProfileImage: MediaURL(image),
		Posts:        cards,
		Length:       len(cards),
	}, nil
}

// Search logs the query and looks up an account by exact, case-sensitive username.
// Every valid query is logged, matched or not.
func (a *Aggregator) Search(ctx context.Context, query string) (models.SearchResult, error) {
	if err := validation.ValidateSearchQuery(query); err != nil {
		return models.SearchResult{}, err
	}
	if err := a.audit.AppendSearch(ctx, query); err != nil {
		return models.SearchResult{}, err
	}

	account, err := a.accounts.GetByUsername(ctx, query)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			observability.SearchesTotal.WithLabelValues("miss").Inc()
			middleware.Logger.InfoContext(ctx, "search miss")
			return models.SearchResult{}, models.NewNotFoundError("Account", query)
		}
		return models.SearchResult{}, err
	}
	observability.SearchesTotal.WithLabelValues("hit").Inc()
	return models.SearchResult{
		Found:     true,
		AccountID: account.ID,
		Username:  account.Username,
		Redirect:  "/api/profiles/" + url.PathEscape(account.Username),
	}, nil
}

// BuildPostDetail returns the post with its comments, newest first.
func (a *Aggregator) BuildPostDetail(ctx context.Context, postID uint) (models.PostDetailView, error) {
	post, err := a.posts.GetByID(ctx, postID)
	if err != nil {
		return models.PostDetailView{}, err
	}
	comments, err := a.comments.ListByPost(ctx, postID)
	if err != nil {
		return models.PostDetailView{}, err
	}

	ids := []uint{post.AccountID}
	for _, c := range comments {
		ids = append(ids, c.AccountID)
	}
	names, err := a.accounts.ListUsernamesByIDs(ctx, ids)
	if err != nil {
		return models.PostDetailView{}, err
	}

	views := make([]models.CommentView, 0, len(comments))
	for _, c := range comments {
		views = append(views, models.CommentView{ID: c.ID, Text: c.Text, AuthorUsername: names[c.AccountID]})
	}
	return models.PostDetailView{
		Post: models.PostCard{
			ID:            post.ID,
			Title:         post.Title,
			Description:   post.Description,
			ImagePath:     MediaURL(post.ImagePath),
			OwnerUsername: names[post.AccountID],
		},
		Comments: views,
		Length:   len(views),
	}, nil
}
