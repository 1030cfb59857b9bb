package models

// PostCard is one row of a feed or profile listing.
type PostCard struct {
	ID            uint   `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	ImagePath     string `json:"image_path"`
	OwnerUsername string `json:"owner_username"`
}

// FeedView is the global listing, newest first.
type FeedView struct {
	Posts  []PostCard `json:"posts"`
	Length int        `json:"length"`
}

// ProfileView is one account's page: effective image plus its posts in insertion order.
type ProfileView struct {
	AccountID    uint       `json:"account_id"`
	Username     string     `json:"username"`
	ProfileImage string     `json:"profile_image"`
	Posts        []PostCard `json:"posts"`
	Length       int        `json:"length"`
}

// CommentView is a comment with its author resolved.
type CommentView struct {
	ID             uint   `json:"id"`
	Text           string `json:"text"`
	AuthorUsername string `json:"author_username"`
}

// PostDetailView backs the comment-thread page for the open post.
type PostDetailView struct {
	Post     PostCard      `json:"post"`
	Comments []CommentView `json:"comments"`
	Length   int           `json:"length"`
}

// SearchResult is the outcome of an exact username lookup.
type SearchResult struct {
	Found     bool   `json:"found"`
	AccountID uint   `json:"account_id,omitempty"`
	Username  string `json:"username,omitempty"`
	Redirect  string `json:"redirect,omitempty"`
}
