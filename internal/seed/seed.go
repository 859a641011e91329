package seed

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	ruledomain "github.com/smallbiznis/courierfare/internal/pricingrule/domain"
)

// EnsureStarterRules seeds a usable rule set on first boot. An operator who
// has already configured rules is left alone.
func EnsureStarterRules(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	var count int64
	if err := db.Model(&ruledomain.Rule{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	maxKm := func(v float64) *float64 { return &v }
	rules := []ruledomain.Rule{
		{
			ID:            node.Generate(),
			Name:          "Nearby",
			Priority:      1,
			DistanceMinKm: 0,
			DistanceMaxKm: maxKm(5),
			BaseFee:       50,
			PerKmFee:      10,
			Active:        true,
			CreatedAt:     now,
			UpdatedAt:     now,
		},
		{
			ID:            node.Generate(),
			Name:          "City",
			Priority:      1,
			DistanceMinKm: 5,
			DistanceMaxKm: maxKm(15),
			BaseFee:       80,
			PerKmFee:      12,
			Active:        true,
			CreatedAt:     now,
			UpdatedAt:     now,
		},
		{
			ID:               node.Generate(),
			Name:             "Outskirts",
			Priority:         1,
			DistanceMinKm:    15,
			BaseFee:          120,
			PerKmFee:         15,
			SurchargePercent: 5,
			Active:           true,
			CreatedAt:        now,
			UpdatedAt:        now,
		},
	}

	return db.Create(&rules).Error
}
