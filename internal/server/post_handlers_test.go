package server

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"snapshare/internal/models"
	"snapshare/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePostAndServeMedia(t *testing.T) {
	a := newTestApp(t)
	token := a.signup(t, "alice")
	png := testutil.TinyPNG(t, 8, 8)

	resp := a.upload(t, "/api/posts", token, "sunset.png", png, map[string]string{
		"title":       "Sunset",
		"description": "over the bay",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var card models.PostCard
	decode(t, resp, &card)
	assert.Equal(t, "Sunset", card.Title)
	require.Contains(t, card.ImagePath, "/media/accounts/")

	media := a.do(t, httptest.NewRequest(http.MethodGet, card.ImagePath, nil))
	require.Equal(t, http.StatusOK, media.StatusCode)
	assert.Equal(t, "image/png", media.Header.Get("Content-Type"))
	data, err := io.ReadAll(media.Body)
	require.NoError(t, err)
	assert.Equal(t, png, data)

	missing := a.do(t, httptest.NewRequest(http.MethodGet, "/media/accounts/1/nope.png", nil))
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestCreatePostDuplicateTitle(t *testing.T) {
	a := newTestApp(t)
	alice := a.signup(t, "alice")
	bob := a.signup(t, "bob")

	resp := a.upload(t, "/api/posts", alice, "a.png", testutil.TinyPNG(t, 2, 2), map[string]string{"title": "X", "description": "d"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = a.upload(t, "/api/posts", bob, "b.png", testutil.TinyPNG(t, 3, 3), map[string]string{"title": "X", "description": "d"})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	body := decodeError(t, resp)
	assert.Equal(t, models.CodeDuplicateKey, body.Code)
	assert.Contains(t, body.Fields, "title")
	assert.Equal(t, 1, a.blobs.Len())
}

func TestCreatePostValidation(t *testing.T) {
	a := newTestApp(t)
	token := a.signup(t, "alice")

	tests := []struct {
		name     string
		filename string
		content  []byte
		fields   map[string]string
		field    string
	}{
		{"missing photo", "", nil, map[string]string{"title": "T", "description": "d"}, "photo"},
		{"not an image", "a.png", []byte("plain text"), map[string]string{"title": "T", "description": "d"}, "photo"},
		{"bad extension", "a.bmp", testutil.TinyPNG(t, 1, 1), map[string]string{"title": "T", "description": "d"}, "photo"},
		{"missing title", "a.png", testutil.TinyPNG(t, 1, 1), map[string]string{"description": "d"}, "title"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := a.upload(t, "/api/posts", token, tt.filename, tt.content, tt.fields)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Contains(t, decodeError(t, resp).Fields, tt.field)
		})
	}
}

func TestUploadProfileImageStorageFailure(t *testing.T) {
	a := newTestApp(t)
	token := a.signup(t, "alice")
	a.blobs.PutErr = errors.New("bucket unreachable at 10.0.0.5")

	resp := a.upload(t, "/api/profile/image", token, "me.png", testutil.TinyPNG(t, 1, 1), nil)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body := decodeError(t, resp)
	assert.Equal(t, models.CodeStorage, body.Code)
	assert.Equal(t, "Storage failure", body.Error)

	resp = a.json(t, http.MethodGet, "/api/profile", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var view models.ProfileView
	decode(t, resp, &view)
	assert.Empty(t, view.ProfileImage)
}

func TestUploadProfileImage(t *testing.T) {
	a := newTestApp(t)
	token := a.signup(t, "alice")

	resp := a.upload(t, "/api/profile/image", token, "one.png", testutil.TinyPNG(t, 1, 1), nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp = a.upload(t, "/api/profile/image", token, "two.gif", testutil.TinyGIF(t), nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var uploaded struct {
		ImagePath string `json:"image_path"`
	}
	decode(t, resp, &uploaded)

	resp = a.json(t, http.MethodGet, "/api/profiles/alice", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var view models.ProfileView
	decode(t, resp, &view)
	assert.Equal(t, uploaded.ImagePath, view.ProfileImage)
}

func TestFeedNewestFirst(t *testing.T) {
	a := newTestApp(t)
	token := a.signup(t, "alice")
	for i, title := range []string{"P1", "P2", "P3"} {
		resp := a.upload(t, "/api/posts", token, "p.png", testutil.TinyPNG(t, i+1, 1), map[string]string{"title": title, "description": "d"})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp := a.json(t, http.MethodGet, "/api/feed", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var feed models.FeedView
	decode(t, resp, &feed)
	require.Equal(t, 3, feed.Length)
	assert.Equal(t, "P3", feed.Posts[0].Title)
	assert.Equal(t, "P1", feed.Posts[2].Title)
	assert.Equal(t, "alice", feed.Posts[0].OwnerUsername)
}

func TestNavigationFlow(t *testing.T) {
	a := newTestApp(t)
	token := a.signup(t, "alice")
	for i, title := range []string{"Sunset", "Dawn"} {
		resp := a.upload(t, "/api/posts", token, "p.png", testutil.TinyPNG(t, i+1, 2), map[string]string{"title": title, "description": "d"})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp := a.json(t, http.MethodGet, "/api/posts/current", token, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = a.json(t, http.MethodPost, "/api/feed/select", token, map[string]string{"title": "Sunset"})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/api/posts/current", resp.Header.Get("Location"))

	resp = a.json(t, http.MethodPost, "/api/posts/current/comments", token, map[string]string{"text": "golden"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = a.json(t, http.MethodPost, "/api/feed/select", token, map[string]string{"title": "Nope"})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = a.json(t, http.MethodGet, "/api/posts/current", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var detail models.PostDetailView
	decode(t, resp, &detail)
	assert.Equal(t, "Sunset", detail.Post.Title)
	require.Len(t, detail.Comments, 1)
	assert.Equal(t, "golden", detail.Comments[0].Text)
	assert.Equal(t, "alice", detail.Comments[0].AuthorUsername)

	resp = a.json(t, http.MethodDelete, "/api/posts/current", token, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = a.json(t, http.MethodPost, "/api/posts/current/comments", token, map[string]string{"text": "late"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
