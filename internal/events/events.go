package events

import (
	"context"
	"errors"

	"photolog/internal/models"
)

// Publisher delivers gallery events to one sink.
type Publisher interface {
	Publish(ctx context.Context, event models.Event) error
}

// Fanout publishes every event to all of its sinks and joins their errors.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, event models.Event) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type Noop struct{}

func (Noop) Publish(context.Context, models.Event) error { return nil }
