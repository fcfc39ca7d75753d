package history

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type outcomeModel struct {
	bun.BaseModel `bun:"table:outcomes"`

	ID         int64       `bun:"id,pk,autoincrement"`
	TaskID     uuid.UUID   `bun:"task_id,type:uuid,notnull"`
	Kind       OutcomeKind `bun:"kind,notnull"`
	Message    string      `bun:"message"`
	OccurredAt time.Time   `bun:"occurred_at,nullzero,notnull,default:current_timestamp"`
}

func (m *outcomeModel) toOutcome() Outcome {
	return Outcome{
		TaskID:     m.TaskID,
		Kind:       m.Kind,
		Message:    m.Message,
		OccurredAt: m.OccurredAt,
	}
}

func fromOutcome(o Outcome) *outcomeModel {
	occurredAt := o.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}
	return &outcomeModel{
		TaskID:     o.TaskID,
		Kind:       o.Kind,
		Message:    o.Message,
		OccurredAt: occurredAt,
	}
}
