package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"photolog/internal/auth"
	"photolog/internal/database"
	"photolog/internal/models"

	"golang.org/x/term"
)

// readPassword is swapped out in tests.
var readPassword = term.ReadPassword

type userCreator interface {
	CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error)
}

type imageUploader interface {
	Upload(ctx context.Context, user *models.User, originalFilename string, data []byte, contentType string) (*models.Image, error)
}

type imageRemover interface {
	Remove(ctx context.Context, filename string) error
}

type imagePurger interface {
	Purge(ctx context.Context) (int, error)
}

type orphanFinder interface {
	Orphans(ctx context.Context, minAge time.Duration) ([]string, error)
	RemoveOrphans(ctx context.Context, minAge time.Duration) ([]string, error)
}

func promptPassword(out io.Writer) (string, error) {
	fmt.Fprint(out, "Enter password: ")
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(out)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

func createUser(ctx context.Context, users userCreator, username, password string, out io.Writer) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return errors.New("username must not be empty")
	}

	if password == "" {
		var err error
		if password, err = promptPassword(out); err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		if password == "" {
			return errors.New("password must not be empty")
		}
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	user, err := users.CreateUser(ctx, username, hash)
	if err != nil {
		if errors.Is(err, database.ErrUsernameTaken) {
			return fmt.Errorf("user %q already exists", username)
		}
		return err
	}

	fmt.Fprintf(out, "created user %s (id %d)\n", user.Username, user.ID)
	return nil
}

// contentTypeFor maps a file extension to the media type the upload
// validator expects.
func contentTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".tif", ".tiff":
		return "image/tiff"
	default:
		return "application/octet-stream"
	}
}

func uploadFile(ctx context.Context, users auth.UserFinder, svc imageUploader, username, path string, out io.Writer) error {
	user, err := users.GetUserByUsername(ctx, username)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("no user named %q", username)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	img, err := svc.Upload(ctx, user, filepath.Base(path), data, contentTypeFor(path))
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s %dx%d %d bytes\n", img.Filename, img.Width, img.Height, img.SizeBytes)
	return nil
}

func deleteImage(ctx context.Context, svc imageRemover, filename string, out io.Writer) error {
	if err := svc.Remove(ctx, filename); err != nil {
		return err
	}
	fmt.Fprintf(out, "deleted %s\n", filename)
	return nil
}

func cleanImages(ctx context.Context, svc imagePurger, out io.Writer) error {
	n, err := svc.Purge(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "deleted %d images\n", n)
	return nil
}

func orphans(ctx context.Context, svc orphanFinder, remove bool, minAge time.Duration, out io.Writer) error {
	var (
		names []string
		err   error
	)
	if remove {
		names, err = svc.RemoveOrphans(ctx, minAge)
	} else {
		names, err = svc.Orphans(ctx, minAge)
	}
	if err != nil {
		return err
	}

	for _, name := range names {
		fmt.Fprintln(out, name)
	}
	if remove {
		fmt.Fprintf(out, "removed %d orphaned files\n", len(names))
	}
	return nil
}
