package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"prpulse/internal/errs"
	"prpulse/internal/infrastructure/persistence/sqlite/model"
	"prpulse/internal/ports"
)

type DigestRepository struct {
	db *gorm.DB
}

func NewDigestRepository(db *gorm.DB) *DigestRepository {
	return &DigestRepository{db: db}
}

func (r *DigestRepository) ListEnabledDigestConfigs(ctx context.Context) ([]ports.DigestConfigRecord, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var rows []model.DigestConfig
	if err := db.Where("enabled = ?", true).Order("config_id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query enabled digest configs")
	}

	items := make([]ports.DigestConfigRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapDigestConfig(row))
	}
	return items, nil
}

func (r *DigestRepository) GetDigestConfig(ctx context.Context, configID uint64) (ports.DigestConfigRecord, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.DigestConfigRecord{}, err
	}

	var row model.DigestConfig
	if err := db.First(&row, "config_id = ?", configID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.DigestConfigRecord{}, ports.ErrDigestConfigNotFound
		}
		return ports.DigestConfigRecord{}, errs.Wrap(err, "query digest config")
	}
	return mapDigestConfig(row), nil
}

func (r *DigestRepository) CreateUserDigest(ctx context.Context, input ports.UserDigestCreate) (ports.UserDigestRecord, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.UserDigestRecord{}, err
	}

	row := model.UserDigest{
		ConfigID:       input.ConfigID,
		UserID:         input.UserID,
		SentAt:         input.SentAt.UTC(),
		PRCount:        input.PRCount,
		IssueCount:     input.IssueCount,
		DeliveryType:   input.DeliveryType,
		DeliveryTarget: input.DeliveryTarget,
		MessageID:      input.MessageID,
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.UserDigestRecord{}, errs.Wrap(err, "insert user digest")
	}

	return ports.UserDigestRecord{
		UserDigestID:   row.UserDigestID,
		ConfigID:       row.ConfigID,
		UserID:         row.UserID,
		SentAt:         row.SentAt,
		PRCount:        row.PRCount,
		IssueCount:     row.IssueCount,
		DeliveryType:   row.DeliveryType,
		DeliveryTarget: row.DeliveryTarget,
		MessageID:      row.MessageID,
	}, nil
}

func (r *DigestRepository) CountUserDigestsInWindow(ctx context.Context, configID uint64, start time.Time, end time.Time) (int64, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := db.Model(&model.UserDigest{}).
		Where("config_id = ? AND sent_at >= ? AND sent_at < ?", configID, start.UTC(), end.UTC()).
		Count(&count).Error; err != nil {
		return 0, errs.Wrap(err, "count user digests in window")
	}
	return count, nil
}

func mapDigestConfig(row model.DigestConfig) ports.DigestConfigRecord {
	return ports.DigestConfigRecord{
		ConfigID:       row.ConfigID,
		UserID:         row.UserID,
		Name:           row.Name,
		Enabled:        row.Enabled,
		DeliveryTime:   row.DeliveryTime,
		Timezone:       row.Timezone,
		Weekdays:       row.Weekdays,
		Scope:          row.Scope,
		ScopeValue:     row.ScopeValue,
		RepoFilter:     row.RepoFilter,
		DeliveryType:   row.DeliveryType,
		DeliveryTarget: row.DeliveryTarget,
	}
}
