package repository

import (
	"context"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"prpulse/internal/errs"
	"prpulse/internal/infrastructure/persistence/sqlite/model"
	"prpulse/internal/ports"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) CreateNotification(ctx context.Context, input ports.NotificationCreate) (ports.NotificationRecord, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.NotificationRecord{}, err
	}

	row := model.Notification{
		UserID:      input.UserID,
		EventID:     input.EventID,
		MessageType: input.MessageType,
		Payload:     datatypes.JSON(input.Payload),
		Reason:      input.Reason,
		Context:     input.Context,
		CreatedAt:   time.Now().UTC(),
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.NotificationRecord{}, errs.Wrap(err, "insert notification")
	}
	return mapNotification(row), nil
}

func (r *NotificationRepository) SetNotificationMessageID(ctx context.Context, notificationID uint64, messageID string) error {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return err
	}

	result := db.Model(&model.Notification{}).
		Where("notification_id = ?", notificationID).
		Update("message_id", messageID)
	if result.Error != nil {
		return errs.Wrap(result.Error, "set notification message id")
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotificationNotFound
	}
	return nil
}

func (r *NotificationRepository) CountNotificationsForEvent(ctx context.Context, eventID uint64) (int64, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := db.Model(&model.Notification{}).
		Where("event_id = ?", eventID).
		Count(&count).Error; err != nil {
		return 0, errs.Wrap(err, "count notifications for event")
	}
	return count, nil
}

func (r *NotificationRepository) ListNotificationsForUser(ctx context.Context, userID uint64, limit int) ([]ports.NotificationRecord, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	query := db.Where("user_id = ?", userID).Order("notification_id desc")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []model.Notification
	if err := query.Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query notifications")
	}

	items := make([]ports.NotificationRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapNotification(row))
	}
	return items, nil
}

func (r *NotificationRepository) DeleteNotificationsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return 0, err
	}

	result := db.Where("created_at < ?", cutoff).Delete(&model.Notification{})
	if result.Error != nil {
		return 0, errs.Wrap(result.Error, "delete old notifications")
	}
	return result.RowsAffected, nil
}

func mapNotification(row model.Notification) ports.NotificationRecord {
	return ports.NotificationRecord{
		NotificationID: row.NotificationID,
		UserID:         row.UserID,
		EventID:        row.EventID,
		MessageType:    row.MessageType,
		Payload:        []byte(row.Payload),
		Reason:         row.Reason,
		Context:        row.Context,
		MessageID:      row.MessageID,
		CreatedAt:      row.CreatedAt,
	}
}
