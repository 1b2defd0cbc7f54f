package model

import (
	"time"

	"gorm.io/datatypes"
)

type Event struct {
	EventID        uint64         `gorm:"column:event_id;primaryKey;autoIncrement"`
	EventType      string         `gorm:"column:event_type;type:text;not null;index"`
	Action         string         `gorm:"column:action;type:text;not null"`
	RepositoryID   int64          `gorm:"column:repository_id;not null;index"`
	RepositoryName string         `gorm:"column:repository_name;type:text;not null"`
	SenderID       int64          `gorm:"column:sender_id;not null"`
	SenderLogin    string         `gorm:"column:sender_login;type:text;not null"`
	Payload        datatypes.JSON `gorm:"column:payload;not null"`
	Processed      bool           `gorm:"column:processed;not null;default:0;index"`
	CreatedAt      time.Time      `gorm:"column:created_at;not null;index"`
	UpdatedAt      time.Time      `gorm:"column:updated_at;not null"`
}

func (Event) TableName() string {
	return "events"
}
