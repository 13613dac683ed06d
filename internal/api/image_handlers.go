package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"photolog/internal/photos"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	uploadField = "file"
	// multipartOverhead leaves room for boundaries and part headers around the file.
	multipartOverhead = 1 << 20
)

var errNoFile = errors.New("no file field in upload")

// readUpload returns the first part named "file". It reads at most maxBytes+1
// bytes of it so oversized files still reach the validator as too large.
func readUpload(r *http.Request, maxBytes int64) (data []byte, filename, contentType string, err error) {
	reader, err := r.MultipartReader()
	if err != nil {
		return nil, "", "", err
	}

	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			return nil, "", "", errNoFile
		}
		if err != nil {
			return nil, "", "", err
		}

		if part.FormName() != uploadField {
			part.Close()
			continue
		}

		data, err := io.ReadAll(io.LimitReader(part, maxBytes+1))
		part.Close()
		if err != nil {
			return nil, "", "", err
		}

		return data, part.FileName(), part.Header.Get("Content-Type"), nil
	}
}

// @Summary      Uploads an image
// @Description  Validates and normalizes the uploaded image into a bounded JPEG and records it for the current user.
// @Tags         images
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "JPEG, PNG or TIFF image"
// @Success      201  {object}  ResultResponse
// @Failure      400  {object}  ResultResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ResultResponse
// @Router       /upload [post]
func (s *Server) UploadHandler(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	maxBytes := s.photos.MaxBytes()

	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverhead)

	data, filename, contentType, err := readUpload(r, maxBytes)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeFailure(w, http.StatusBadRequest, photos.Message(photos.ErrTooLarge, maxBytes))
		case errors.Is(err, errNoFile):
			writeFailure(w, http.StatusBadRequest, "No file uploaded")
		default:
			writeFailure(w, http.StatusBadRequest, "Invalid upload")
		}
		return
	}

	img, err := s.photos.Upload(r.Context(), user, filename, data, contentType)
	if err != nil {
		message := photos.Message(err, maxBytes)
		if errors.Is(err, photos.ErrValidation) || errors.Is(err, photos.ErrCorruptImage) {
			s.log.Info("upload rejected", zap.Int64("user_id", user.ID), zap.Error(err))
			writeFailure(w, http.StatusBadRequest, message)
			return
		}
		s.log.Error("upload failed", zap.Int64("user_id", user.ID), zap.Error(err))
		writeFailure(w, http.StatusInternalServerError, message)
		return
	}

	s.log.Info("image uploaded",
		zap.Int64("user_id", user.ID),
		zap.String("filename", img.Filename),
		zap.Int("width", img.Width),
		zap.Int("height", img.Height),
	)

	w.Header().Set("HX-Redirect", "/")
	writeJSON(w, http.StatusCreated, ResultResponse{Success: true, Filename: img.Filename})
}

// @Summary      Serves an image
// @Description  Streams a stored canonical JPEG. Only filenames recorded in the database are served.
// @Tags         images
// @Produce      jpeg
// @Param        filename  path  string  true  "Internal filename"
// @Success      200  {file}    file
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /images/{filename} [get]
func (s *Server) GetImageHandler(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")

	img, file, err := s.photos.Resolver().Open(r.Context(), filename)
	if err != nil {
		if errors.Is(err, photos.ErrResolution) {
			writeError(w, http.StatusNotFound, "Image not found")
			return
		}
		s.log.Error("failed to resolve image", zap.String("filename", filename), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	defer file.Close()

	w.Header().Set("Content-Type", photos.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", img.Filename))
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	if img.SizeBytes > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(img.SizeBytes, 10))
	}
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, file); err != nil {
		s.log.Warn("failed to stream image", zap.String("filename", filename), zap.Error(err))
	}
}

// @Summary      Lists images
// @Description  Returns one page of images, newest first. next_page is set when a full page came back.
// @Tags         images
// @Produce      json
// @Param        page  query  int  false  "Page number, starting at 1"
// @Success      200  {object}  models.ImagePage
// @Failure      400  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /api/v1/images [get]
func (s *Server) ListImagesHandler(w http.ResponseWriter, r *http.Request) {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "Invalid page")
			return
		}
		page = n
	}

	result, err := s.photos.List(r.Context(), page)
	if err != nil {
		s.log.Error("failed to list images", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// @Summary      Deletes an image
// @Description  Deletes one of the current user's images, its metadata first and then the file.
// @Tags         images
// @Param        filename  path  string  true  "Internal filename"
// @Success      204
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /api/v1/images/{filename} [delete]
func (s *Server) DeleteImageHandler(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	filename := chi.URLParam(r, "filename")

	err := s.photos.Delete(r.Context(), user, filename)
	switch {
	case err == nil:
		s.log.Info("image deleted", zap.Int64("user_id", user.ID), zap.String("filename", filename))
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, photos.ErrResolution):
		writeError(w, http.StatusNotFound, "Image not found")
	case errors.Is(err, photos.ErrForbidden):
		writeError(w, http.StatusForbidden, photos.Message(err, 0))
	default:
		s.log.Error("failed to delete image", zap.String("filename", filename), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
