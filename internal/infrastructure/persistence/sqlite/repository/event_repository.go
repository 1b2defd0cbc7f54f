package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"prpulse/internal/errs"
	"prpulse/internal/infrastructure/persistence/sqlite/model"
	"prpulse/internal/ports"
)

type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) CreateEvent(ctx context.Context, input ports.EventCreate) (ports.EventRecord, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.EventRecord{}, err
	}

	now := time.Now().UTC()
	row := model.Event{
		EventType:      input.EventType,
		Action:         input.Action,
		RepositoryID:   input.RepositoryID,
		RepositoryName: input.RepositoryName,
		SenderID:       input.SenderID,
		SenderLogin:    input.SenderLogin,
		Payload:        datatypes.JSON(input.Payload),
		Processed:      input.Processed,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.EventRecord{}, errs.Wrap(err, "insert event")
	}
	return mapEvent(row), nil
}

func (r *EventRepository) GetEvent(ctx context.Context, eventID uint64) (ports.EventRecord, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.EventRecord{}, err
	}

	var row model.Event
	if err := db.First(&row, "event_id = ?", eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.EventRecord{}, ports.ErrEventNotFound
		}
		return ports.EventRecord{}, errs.Wrap(err, "query event")
	}
	return mapEvent(row), nil
}

func (r *EventRepository) MarkEventProcessed(ctx context.Context, eventID uint64) error {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return err
	}

	result := db.Model(&model.Event{}).
		Where("event_id = ?", eventID).
		Updates(map[string]any{
			"processed":  true,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return errs.Wrap(result.Error, "mark event processed")
	}
	if result.RowsAffected == 0 {
		return ports.ErrEventNotFound
	}
	return nil
}

func (r *EventRepository) DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return 0, err
	}

	result := db.Where("created_at < ?", cutoff).Delete(&model.Event{})
	if result.Error != nil {
		return 0, errs.Wrap(result.Error, "delete old events")
	}
	return result.RowsAffected, nil
}

func mapEvent(row model.Event) ports.EventRecord {
	return ports.EventRecord{
		EventID:        row.EventID,
		EventType:      row.EventType,
		Action:         row.Action,
		RepositoryID:   row.RepositoryID,
		RepositoryName: row.RepositoryName,
		SenderID:       row.SenderID,
		SenderLogin:    row.SenderLogin,
		Payload:        []byte(row.Payload),
		Processed:      row.Processed,
		CreatedAt:      row.CreatedAt,
	}
}
