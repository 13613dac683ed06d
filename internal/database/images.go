package database

import (
	"context"
	"errors"
	"photolog/internal/models"

	"github.com/jackc/pgx/v5"
)

type CreateImageParams struct {
	Filename         string
	OriginalFilename string
	UserID           int64
	Width            int
	Height           int
	SizeBytes        int64
}

const imageColumns = `id, filename, original_filename, upload_date, user_id, width, height, size_bytes`

func scanImage(row pgx.Row) (*models.Image, error) {
	var img models.Image
	err := row.Scan(
		&img.ID,
		&img.Filename,
		&img.OriginalFilename,
		&img.UploadDate,
		&img.UserID,
		&img.Width,
		&img.Height,
		&img.SizeBytes,
	)
	if err != nil {
		return nil, err
	}
	return &img, nil
}

func (q *Queries) CreateImage(ctx context.Context, arg CreateImageParams) (*models.Image, error) {
	query := `
		INSERT INTO images (filename, original_filename, user_id, width, height, size_bytes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + imageColumns

	row := q.db.QueryRow(ctx, query,
		arg.Filename,
		arg.OriginalFilename,
		arg.UserID,
		arg.Width,
		arg.Height,
		arg.SizeBytes,
	)

	img, err := scanImage(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrFilenameTaken
		}
		return nil, err
	}

	return img, nil
}

// GetImageByFilename matches the internal filename exactly. It returns
// (nil, nil) when no row references the name.
func (q *Queries) GetImageByFilename(ctx context.Context, filename string) (*models.Image, error) {
	query := `SELECT ` + imageColumns + ` FROM images WHERE filename = $1`

	img, err := scanImage(q.db.QueryRow(ctx, query, filename))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return img, nil
}

func (q *Queries) ListImages(ctx context.Context, limit int, offset int) ([]models.Image, error) {
	query := `
		SELECT ` + imageColumns + `
		FROM images
		ORDER BY upload_date DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := q.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []models.Image
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, err
		}
		images = append(images, *img)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	if images == nil {
		return []models.Image{}, nil
	}

	return images, nil
}

func (q *Queries) ListImageFilenames(ctx context.Context) ([]string, error) {
	rows, err := q.db.Query(ctx, `SELECT filename FROM images ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}

	return names, rows.Err()
}

func (q *Queries) DeleteImageByFilename(ctx context.Context, filename string) (bool, error) {
	res, err := q.db.Exec(ctx, `DELETE FROM images WHERE filename = $1`, filename)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() > 0, nil
}
