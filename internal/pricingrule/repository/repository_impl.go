package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	ruledomain "github.com/smallbiznis/courierfare/internal/pricingrule/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) ruledomain.Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context) ([]ruledomain.Rule, error) {
	var rules []ruledomain.Rule
	err := r.db.WithContext(ctx).
		Model(&ruledomain.Rule{}).
		Order("priority ASC, distance_min_km ASC").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *repository) ListActive(ctx context.Context) ([]ruledomain.Rule, error) {
	var rules []ruledomain.Rule
	err := r.db.WithContext(ctx).
		Model(&ruledomain.Rule{}).
		Where("is_active = ?", true).
		Order("priority ASC, distance_min_km ASC").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *repository) FindByID(ctx context.Context, id snowflake.ID) (*ruledomain.Rule, error) {
	var rule ruledomain.Rule
	err := r.db.WithContext(ctx).First(&rule, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *repository) Insert(ctx context.Context, rule *ruledomain.Rule) error {
	return r.db.WithContext(ctx).Create(rule).Error
}

func (r *repository) Update(ctx context.Context, rule *ruledomain.Rule) error {
	return r.db.WithContext(ctx).
		Model(&ruledomain.Rule{}).
		Where("id = ?", rule.ID).
		Select("Name", "Priority", "DistanceMinKm", "DistanceMaxKm", "BaseFee", "PerKmFee", "SurchargePercent", "Notes", "Active", "UpdatedAt").
		Updates(rule).Error
}

func (r *repository) Delete(ctx context.Context, id snowflake.ID) error {
	return r.db.WithContext(ctx).Delete(&ruledomain.Rule{}, "id = ?", id).Error
}
