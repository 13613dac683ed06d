package api

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"photolog/internal/auth"
	"photolog/internal/config"
	"photolog/internal/events"
	"photolog/internal/models"
	"photolog/internal/photos"
	"photolog/internal/storage"
	"photolog/internal/websocket"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const cookieName = "access_token"

type testEnv struct {
	router     http.Handler
	server     *Server
	cfg        *config.Config
	codec      *auth.Codec
	users      *fakeUsers
	images     *fakeImages
	journal    *fakeJournal
	uploadRoot string
	pinger     *fakePinger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{
		Env:    config.EnvDevelopment,
		JWT:    config.JWTConfig{Secret: "api_test_secret", TTL: 30 * time.Minute},
		Cookie: config.CookieConfig{Name: cookieName},
		Upload: config.UploadConfig{
			MaxBytes:     10 << 20,
			MaxDimension: 1600,
			MaxPixels:    100_000_000,
			JPEGQuality:  85,
			Workers:      2,
			AllowedTypes: photos.DefaultAllowedTypes,
		},
		Images: config.ImagesConfig{PerPage: 2},
		CORS:   config.CORSConfig{Origins: []string{"http://localhost:8000"}},
	}

	aliceHash, err := auth.HashPassword("correct-password")
	require.NoError(t, err)
	bobHash, err := auth.HashPassword("bob-password")
	require.NoError(t, err)

	users := &fakeUsers{users: map[string]*models.User{
		"alice": {ID: 1, Username: "alice", PasswordHash: aliceHash},
		"bob":   {ID: 2, Username: "bob", PasswordHash: bobHash},
	}}
	images := &fakeImages{}
	journal := &fakeJournal{}

	uploadRoot := filepath.Join(t.TempDir(), "uploads")
	cfg.Storage = config.StorageConfig{Backend: "local", Path: uploadRoot}
	require.NoError(t, config.Provision(cfg))
	backend, err := storage.NewLocalStorage(uploadRoot)
	require.NoError(t, err)

	log := zap.NewNop()
	normalizer, err := photos.NewNormalizer(backend, photos.Options{
		MaxDimension: cfg.Upload.MaxDimension,
		MaxPixels:    cfg.Upload.MaxPixels,
		JPEGQuality:  cfg.Upload.JPEGQuality,
		Workers:      cfg.Upload.Workers,
	}, log)
	require.NoError(t, err)

	hub := websocket.NewHub(log)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	svc := photos.NewService(photos.ServiceParams{
		Store:      images,
		Storage:    backend,
		Validator:  photos.NewValidator(cfg.Upload.MaxBytes, cfg.Upload.AllowedTypes),
		Normalizer: normalizer,
		Events:     events.Fanout{events.NewJournal(journal), hub},
		PerPage:    cfg.Images.PerPage,
		Logger:     log,
	})

	codec := auth.NewCodec([]byte(cfg.JWT.Secret))
	pinger := &fakePinger{}

	server := NewServer(cfg, Deps{
		Users:   users,
		Codec:   codec,
		Photos:  svc,
		DB:      pinger,
		Journal: journal,
		Hub:     hub,
		Logger:  log,
	})

	return &testEnv{
		router:     NewRouter(server),
		server:     server,
		cfg:        cfg,
		codec:      codec,
		users:      users,
		images:     images,
		journal:    journal,
		uploadRoot: uploadRoot,
		pinger:     pinger,
	}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) login(t *testing.T, username, password string) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{"username": {username}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.do(req)
}

func (e *testEnv) sessionCookie(t *testing.T, username, password string) *http.Cookie {
	t.Helper()
	rr := e.login(t, username, password)
	require.Equal(t, http.StatusOK, rr.Code)
	for _, c := range rr.Result().Cookies() {
		if c.Name == cookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie in login response", cookieName)
	return nil
}

func (e *testEnv) upload(t *testing.T, cookie *http.Cookie, filename, contentType string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	body, formType := multipartBody(t, "file", filename, contentType, data)
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", formType)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return e.do(req)
}

func multipartBody(t *testing.T, field, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, field, filename))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	return body, mw.FormDataContentType()
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := imaging.New(w, h, color.NRGBA{R: 90, G: 160, B: 40, A: 255})
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decodeJPEG(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, format, err := image.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, "jpeg", format)
	return img
}
