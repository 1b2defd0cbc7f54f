package model

import "time"

type DigestConfig struct {
	ConfigID       uint64 `gorm:"column:config_id;primaryKey;autoIncrement"`
	UserID         uint64 `gorm:"column:user_id;not null;index"`
	Name           string `gorm:"column:name;type:text;not null"`
	Enabled        bool   `gorm:"column:enabled;not null;default:1;index"`
	DeliveryTime   string `gorm:"column:delivery_time;type:text;not null"`
	Timezone       string `gorm:"column:timezone;type:text;not null"`
	Weekdays       string `gorm:"column:weekdays;type:text;not null"`
	Scope          string `gorm:"column:scope;type:text;not null;default:user"`
	ScopeValue     string `gorm:"column:scope_value;type:text"`
	RepoFilter     string `gorm:"column:repo_filter;type:text;not null;default:all"`
	DeliveryType   string `gorm:"column:delivery_type;type:text;not null;default:dm"`
	DeliveryTarget string `gorm:"column:delivery_target;type:text"`
}

func (DigestConfig) TableName() string {
	return "digest_configs"
}

type UserDigest struct {
	UserDigestID   uint64    `gorm:"column:user_digest_id;primaryKey;autoIncrement"`
	ConfigID       uint64    `gorm:"column:config_id;not null;index"`
	UserID         uint64    `gorm:"column:user_id;not null;index"`
	SentAt         time.Time `gorm:"column:sent_at;not null;index"`
	PRCount        int       `gorm:"column:pr_count;not null;default:0"`
	IssueCount     int       `gorm:"column:issue_count;not null;default:0"`
	DeliveryType   string    `gorm:"column:delivery_type;type:text;not null"`
	DeliveryTarget string    `gorm:"column:delivery_target;type:text"`
	MessageID      string    `gorm:"column:message_id;type:text"`
}

func (UserDigest) TableName() string {
	return "user_digests"
}
