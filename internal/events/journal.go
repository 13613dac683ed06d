package events

import (
	"context"
	"fmt"

	"photolog/internal/models"
)

type JournalWriter interface {
	LogEvent(ctx context.Context, event models.Event) error
}

// Journal records events in the database so clients that missed the
// websocket feed can catch up by id.
type Journal struct {
	store JournalWriter
}

func NewJournal(store JournalWriter) *Journal {
	return &Journal{store: store}
}

func (j *Journal) Publish(ctx context.Context, event models.Event) error {
	if err := j.store.LogEvent(ctx, event); err != nil {
		return fmt.Errorf("failed to journal %s event: %w", event.Type, err)
	}
	return nil
}
