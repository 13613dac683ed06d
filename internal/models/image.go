package models

import "time"

// Image is the metadata row for one canonical file on disk. Filename is the
// internal random name; OriginalFilename is only ever shown, never used as a path.
type Image struct {
	ID               int64     `json:"id" db:"id"`
	Filename         string    `json:"filename" db:"filename"`
	OriginalFilename string    `json:"original_filename" db:"original_filename"`
	UploadDate       time.Time `json:"upload_date" db:"upload_date"`
	UserID           int64     `json:"user_id" db:"user_id"`
	Width            int       `json:"width" db:"width"`
	Height           int       `json:"height" db:"height"`
	SizeBytes        int64     `json:"size_bytes" db:"size_bytes"`
}

// ImagePage is one page of the public gallery listing.
type ImagePage struct {
	Images   []Image `json:"images"`
	Page     int     `json:"page"`
	NextPage *int    `json:"next_page"`
}
