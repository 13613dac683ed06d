package database

import (
	"context"

	"photolog/internal/models"
)

// maxJournalPage bounds one GetEventsSince call.
const maxJournalPage = 100

func (q *Queries) LogEvent(ctx context.Context, event models.Event) error {
	query := `INSERT INTO event_journal (event_type, filename, username, event_time) VALUES ($1, $2, $3, $4)`
	_, err := q.db.Exec(ctx, query, event.Type, event.Filename, event.Username, event.EventTime)
	return err
}

// GetEventsSince returns journal entries with an id above sinceID, oldest
// first. limit is clamped to 1..100.
func (q *Queries) GetEventsSince(ctx context.Context, sinceID int64, limit int) ([]models.Event, error) {
	if limit <= 0 || limit > maxJournalPage {
		limit = maxJournalPage
	}

	query := `
		SELECT id, event_type, filename, username, event_time
		FROM event_journal
		WHERE id > $1
		ORDER BY id ASC
		LIMIT $2
	`
	rows, err := q.db.Query(ctx, query, sinceID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var event models.Event
		err := rows.Scan(
			&event.ID,
			&event.Type,
			&event.Filename,
			&event.Username,
			&event.EventTime,
		)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	if events == nil {
		return []models.Event{}, nil
	}

	return events, nil
}
