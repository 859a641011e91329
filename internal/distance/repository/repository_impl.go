package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/smallbiznis/courierfare/internal/distance/domain"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) FindByKey(ctx context.Context, key string) (*domain.CacheEntry, error) {
	var entry domain.CacheEntry
	if err := r.db.WithContext(ctx).Where("cache_key = ?", key).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (r *repository) Upsert(ctx context.Context, entry *domain.CacheEntry) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "cache_key"}},
			UpdateAll: true,
		}).
		Create(entry).Error
}

func (r *repository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("hard_expires_at < ?", before).
		Delete(&domain.CacheEntry{})
	return result.RowsAffected, result.Error
}

func (r *repository) Purge(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Where("1 = 1").
		Delete(&domain.CacheEntry{}).Error
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.CacheEntry{}).Count(&count).Error
	return count, err
}
