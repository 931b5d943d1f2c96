package store

import (
	"context"
	"fmt"

	"credentialing/internal/db"
	"credentialing/internal/utils"
	"credentialing/pkg/types"

	sq "github.com/Masterminds/squirrel"
)

var eventColumns = utils.StructTagValues(types.CaseEvent{})

// EventRepository is append-only. There is no update or delete.
type EventRepository struct {
	db *db.DB
}

func NewEventRepository(database *db.DB) *EventRepository {
	return &EventRepository{db: database}
}

// AppendEvent rejects unknown event or actor types and an empty actor id
// before touching the table.
func (r *EventRepository) AppendEvent(ctx context.Context, event *types.CaseEvent) error {
	switch {
	case !event.EventType.Valid():
		return repoError("caseEvent", "create", fmt.Sprintf("unknown event type %q", event.EventType), nil)
	case !event.ActorType.Valid():
		return repoError("caseEvent", "create", fmt.Sprintf("unknown actor type %q", event.ActorType), nil)
	case event.ActorID == "":
		return repoError("caseEvent", "create", "actor id is required", nil)
	}

	event.ID = utils.NanoID()
	event.Timestamp = r.db.Now()
	if event.Payload == nil {
		event.Payload = types.JSONObject{}
	}

	_, err := execute(ctx, r.db, qb().Insert(eventTableName).SetMap(utils.StructToMap(event)))
	if err != nil {
		return repoError("caseEvent", "create", "failed to append case event", err)
	}

	return nil
}

// Timeline returns the case's events oldest first.
func (r *EventRepository) Timeline(ctx context.Context, caseID string) ([]*types.CaseEvent, error) {
	events, err := getAll[types.CaseEvent](ctx, r.db, qb().
		Select(eventColumns...).
		From(eventTableName).
		Where(sq.Eq{"case_id": caseID}).
		OrderBy("timestamp ASC", "id ASC"))
	if err != nil {
		return nil, repoError("caseEvent", "getTimeline", "failed to fetch case timeline", err)
	}

	return events, nil
}
