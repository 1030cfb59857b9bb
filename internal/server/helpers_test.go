package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"snapshare/internal/config"
	"snapshare/internal/models"
	"snapshare/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

type testApp struct {
	app   *fiber.App
	srv   *Server
	blobs *testutil.BlobStub
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	cfg := &config.Config{
		JWTSecret:            "handler-test-secret",
		ImageMaxUploadSizeMB: 5,
		AuditLogMaxEntries:   100,
	}
	blobs := testutil.NewBlobStub()
	srv, err := NewServerWithDeps(cfg, testutil.NewTestDB(t), nil, blobs)
	require.NoError(t, err)

	app := fiber.New()
	srv.SetupMiddleware(app)
	srv.SetupRoutes(app)
	return &testApp{app: app, srv: srv, blobs: blobs}
}

func (a *testApp) do(t *testing.T, req *http.Request) *http.Response {
	t.Helper()
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (a *testApp) json(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return a.do(t, req)
}

func (a *testApp) upload(t *testing.T, path, token, filename string, content []byte, fields map[string]string) *http.Response {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if content != nil {
		part, err := writer.CreateFormFile("photo", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return a.do(t, req)
}

// signup registers username and returns a bearer token for it.
func (a *testApp) signup(t *testing.T, username string) string {
	t.Helper()
	resp := a.json(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username":              username,
		"email":                 username + "@example.com",
		"password":              "secret1",
		"password_confirmation": "secret1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = a.json(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": username,
		"password": "secret1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out struct {
		Token string `json:"token"`
	}
	decode(t, resp, &out)
	require.NotEmpty(t, out.Token)
	return out.Token
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func decodeError(t *testing.T, resp *http.Response) models.ErrorResponse {
	t.Helper()
	var out models.ErrorResponse
	decode(t, resp, &out)
	return out
}
