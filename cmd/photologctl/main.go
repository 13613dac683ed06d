// Command photologctl administers a photolog installation: schema
// migrations, user accounts and the image store.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"photolog/internal/config"
	"photolog/internal/database"
	"photolog/internal/events"
	"photolog/internal/logger"
	"photolog/internal/photos"
	"photolog/internal/storage"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const usage = `usage: photologctl <command> [flags] [args]

commands:
  migrate                       apply pending database migrations
  create-user [-password p] <username>
  upload <username> <path>      run a local file through the upload pipeline
  delete-image <filename>       delete one image regardless of owner
  clean-images                  delete every image
  orphans [-delete] [-min-age]  list (or delete) stored files with no metadata row
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logr, err := logger.New(cfg.Log.Level, true)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logr.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr, os.Args[1], os.Args[2:], os.Stdout); err != nil {
		logr.Error("command failed", zap.String("command", os.Args[1]), zap.Error(err))
		os.Exit(1)
	}
}

var commands = map[string]bool{
	"migrate":      true,
	"create-user":  true,
	"upload":       true,
	"delete-image": true,
	"clean-images": true,
	"orphans":      true,
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger, command string, args []string, out io.Writer) error {
	if !commands[command] {
		return fmt.Errorf("unknown command %q\n%s", command, usage)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if command == "migrate" {
		if err := database.Migrate(ctx, cfg.DB.Source); err != nil {
			return err
		}
		fmt.Fprintln(out, "migrations applied")
		return nil
	}

	dbpool, err := pgxpool.New(ctx, cfg.DB.Source)
	if err != nil {
		return err
	}
	store := database.NewStore(dbpool)
	defer store.Close()

	switch command {
	case "create-user":
		fs := flag.NewFlagSet(command, flag.ContinueOnError)
		password := fs.String("password", "", "password; prompted for when empty")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if fs.NArg() != 1 {
			return fmt.Errorf("create-user takes exactly one username")
		}
		return createUser(ctx, store, fs.Arg(0), *password, out)
	}

	if err := config.Provision(cfg); err != nil {
		return err
	}
	svc, err := newService(ctx, cfg, store, logr)
	if err != nil {
		return err
	}

	switch command {
	case "upload":
		if len(args) != 2 {
			return fmt.Errorf("upload takes a username and a path")
		}
		return uploadFile(ctx, store, svc, args[0], args[1], out)
	case "delete-image":
		if len(args) != 1 {
			return fmt.Errorf("delete-image takes exactly one filename")
		}
		return deleteImage(ctx, svc, args[0], out)
	case "clean-images":
		return cleanImages(ctx, svc, out)
	case "orphans":
		fs := flag.NewFlagSet(command, flag.ContinueOnError)
		remove := fs.Bool("delete", false, "delete the orphaned files")
		minAge := fs.Duration("min-age", photos.DefaultOrphanMinAge, "ignore files modified more recently than this")
		if err := fs.Parse(args); err != nil {
			return err
		}
		return orphans(ctx, svc, *remove, *minAge, out)
	}

	return nil
}

// newService wires the same pipeline the server uses. Events go to the
// journal only; the CLI has no websocket clients.
func newService(ctx context.Context, cfg *config.Config, store *database.Store, logr *zap.Logger) (*photos.Service, error) {
	backend, err := storage.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	normalizer, err := photos.NewNormalizer(backend, photos.Options{
		MaxDimension: cfg.Upload.MaxDimension,
		MaxPixels:    cfg.Upload.MaxPixels,
		JPEGQuality:  cfg.Upload.JPEGQuality,
		Workers:      cfg.Upload.Workers,
	}, logr)
	if err != nil {
		return nil, err
	}

	return photos.NewService(photos.ServiceParams{
		Store:      store,
		Storage:    backend,
		Validator:  photos.NewValidator(cfg.Upload.MaxBytes, cfg.Upload.AllowedTypes),
		Normalizer: normalizer,
		Events:     events.NewJournal(store),
		PerPage:    cfg.Images.PerPage,
		Logger:     logr,
	}), nil
}
