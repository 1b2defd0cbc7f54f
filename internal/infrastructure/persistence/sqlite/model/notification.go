package model

import (
	"time"

	"gorm.io/datatypes"
)

type Notification struct {
	NotificationID uint64         `gorm:"column:notification_id;primaryKey;autoIncrement"`
	UserID         uint64         `gorm:"column:user_id;not null;uniqueIndex:idx_notifications_user_event"`
	EventID        uint64         `gorm:"column:event_id;not null;uniqueIndex:idx_notifications_user_event"`
	MessageType    string         `gorm:"column:message_type;type:text;not null"`
	Payload        datatypes.JSON `gorm:"column:payload"`
	Reason         string         `gorm:"column:reason;type:text;not null"`
	Context        string         `gorm:"column:context;type:text"`
	MessageID      string         `gorm:"column:message_id;type:text"`
	CreatedAt      time.Time      `gorm:"column:created_at;not null;index"`
}

func (Notification) TableName() string {
	return "notifications"
}
