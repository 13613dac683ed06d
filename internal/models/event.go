package models

import "time"

const (
	EventImageUploaded = "image.uploaded"
	EventImageDeleted  = "image.deleted"
)

// Event describes one gallery change. ID is set only on events read back from
// the journal.
type Event struct {
	ID        int64     `json:"id,omitempty" example:"42"`
	Type      string    `json:"event_type" example:"image.uploaded"`
	Filename  string    `json:"filename" example:"V1StGXR8_Z5jdHi6B-myT.jpg"`
	Username  string    `json:"username" example:"alice"`
	EventTime time.Time `json:"event_time"`
}
