package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"photolog/internal/models"

	"github.com/stretchr/testify/require"
)

func TestUploadAndServe(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.sessionCookie(t, "alice", "correct-password")

	rr := env.upload(t, cookie, "holiday.png", "image/png", pngBytes(t, 5000, 3000))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	require.Equal(t, "/", rr.Header().Get("HX-Redirect"))

	var result ResultResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&result))
	require.True(t, result.Success)
	require.Regexp(t, `^[A-Za-z0-9_-]{21}\.jpg$`, result.Filename)

	require.Len(t, env.images.images, 1)
	row := env.images.images[0]
	require.Equal(t, int64(1), row.UserID)
	require.Equal(t, "holiday.png", row.OriginalFilename)
	require.Equal(t, 1600, row.Width)
	require.Equal(t, 960, row.Height)

	// Served without a session.
	get := env.do(httptest.NewRequest(http.MethodGet, "/images/"+result.Filename, nil))
	require.Equal(t, http.StatusOK, get.Code)
	require.Equal(t, "image/jpeg", get.Header().Get("Content-Type"))
	require.Equal(t, "nosniff", get.Header().Get("X-Content-Type-Options"))

	img := decodeJPEG(t, get.Body.Bytes())
	require.Equal(t, 1600, img.Bounds().Dx())
	require.Equal(t, 960, img.Bounds().Dy())
	require.Equal(t, row.SizeBytes, int64(len(get.Body.Bytes())))
}

func TestUploadRejections(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.sessionCookie(t, "alice", "correct-password")

	tests := []struct {
		name        string
		contentType string
		data        []byte
		message     string
	}{
		{
			name:        "too large",
			contentType: "image/png",
			data:        bytes.Repeat([]byte{0x42}, 10<<20+1),
			message:     "File too large. Max size is 10 MB.",
		},
		{
			name:        "unsupported type",
			contentType: "image/gif",
			data:        []byte("GIF89a"),
			message:     "Unsupported file format. Only JPEG, PNG, and TIFF images are allowed.",
		},
		{
			name:        "corrupt image",
			contentType: "image/png",
			data:        []byte("definitely not a png"),
			message:     "Error processing image. Unsupported or corrupted file.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.upload(t, cookie, "upload.bin", tt.contentType, tt.data)
			require.Equal(t, http.StatusBadRequest, rr.Code)

			var body ResultResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
			require.False(t, body.Success)
			require.Equal(t, tt.message, body.Error)
		})
	}

	require.Empty(t, env.images.images)
	entries, err := os.ReadDir(env.uploadRoot)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestUploadWithoutFile(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.sessionCookie(t, "alice", "correct-password")

	body, formType := multipartBody(t, "attachment", "a.png", "image/png", pngBytes(t, 4, 4))
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", formType)
	req.AddCookie(cookie)

	rr := env.do(req)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, rr.Body.String(), "No file uploaded")
}

func TestGetImageNotFound(t *testing.T) {
	env := newTestEnv(t)

	secret := filepath.Join(filepath.Dir(env.uploadRoot), "secret")
	require.NoError(t, os.WriteFile(secret, []byte("top secret"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(env.uploadRoot, "stray.jpg"), []byte("unlisted"), 0o600))

	for _, target := range []string{
		"/images/..%2Fsecret",
		"/images/..",
		"/images/stray.jpg",
		"/images/missing.jpg",
	} {
		t.Run(target, func(t *testing.T) {
			rr := env.do(httptest.NewRequest(http.MethodGet, target, nil))
			require.Equal(t, http.StatusNotFound, rr.Code)
			require.NotContains(t, rr.Body.String(), "secret")
			require.NotContains(t, rr.Body.String(), "unlisted")
		})
	}
}

func TestListImages(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.sessionCookie(t, "alice", "correct-password")

	var names []string
	for i := 0; i < 3; i++ {
		rr := env.upload(t, cookie, "p.png", "image/png", pngBytes(t, 8, 8))
		require.Equal(t, http.StatusCreated, rr.Code)
		var result ResultResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&result))
		names = append(names, result.Filename)
	}

	list := func(query string) (*httptest.ResponseRecorder, models.ImagePage) {
		rr := env.do(httptest.NewRequest(http.MethodGet, "/api/v1/images"+query, nil))
		var page models.ImagePage
		if rr.Code == http.StatusOK {
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&page))
		}
		return rr, page
	}

	rr, first := list("")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, first.Images, 2)
	require.Equal(t, names[2], first.Images[0].Filename)
	require.Equal(t, names[1], first.Images[1].Filename)
	require.NotNil(t, first.NextPage)
	require.Equal(t, 2, *first.NextPage)

	_, second := list("?page=2")
	require.Len(t, second.Images, 1)
	require.Equal(t, names[0], second.Images[0].Filename)
	require.Nil(t, second.NextPage)

	_, empty := list("?page=9")
	require.NotNil(t, empty.Images)
	require.Empty(t, empty.Images)

	for _, bad := range []string{"?page=0", "?page=-1", "?page=abc"} {
		rr, _ := list(bad)
		require.Equal(t, http.StatusBadRequest, rr.Code, bad)
	}
}

func TestDeleteImage(t *testing.T) {
	env := newTestEnv(t)
	alice := env.sessionCookie(t, "alice", "correct-password")
	bob := env.sessionCookie(t, "bob", "bob-password")

	rr := env.upload(t, alice, "mine.png", "image/png", pngBytes(t, 8, 8))
	require.Equal(t, http.StatusCreated, rr.Code)
	var result ResultResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&result))

	del := func(cookie *http.Cookie, filename string) int {
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/images/"+filename, nil)
		if cookie != nil {
			req.AddCookie(cookie)
		}
		return env.do(req).Code
	}

	require.Equal(t, http.StatusUnauthorized, del(nil, result.Filename))
	require.Equal(t, http.StatusForbidden, del(bob, result.Filename))
	require.Equal(t, http.StatusNotFound, del(alice, "missing.jpg"))
	require.Equal(t, http.StatusNotFound, del(alice, "..%2Fsecret"))

	require.Equal(t, http.StatusNoContent, del(alice, result.Filename))
	require.Empty(t, env.images.images)
	_, err := os.Stat(filepath.Join(env.uploadRoot, result.Filename))
	require.True(t, os.IsNotExist(err))

	get := env.do(httptest.NewRequest(http.MethodGet, "/images/"+result.Filename, nil))
	require.Equal(t, http.StatusNotFound, get.Code)
	require.Equal(t, http.StatusNotFound, del(alice, result.Filename))
}
