package service

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/courierfare/internal/clock"
	ruledomain "github.com/smallbiznis/courierfare/internal/pricingrule/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  ruledomain.Repository
}

type Service struct {
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  ruledomain.Repository

	mu       sync.RWMutex
	snapshot []ruledomain.Rule
	loaded   bool
}

func NewService(p Params) ruledomain.Service {
	return &Service{
		log:   p.Log.Named("pricingrule.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) List(ctx context.Context) ([]ruledomain.Rule, error) {
	return s.repo.List(ctx)
}

func (s *Service) Upsert(ctx context.Context, req ruledomain.UpsertRequest) (*ruledomain.Rule, error) {
	now := s.clock.Now()

	rule := ruledomain.Rule{
		Name:             strings.TrimSpace(req.Name),
		Priority:         req.Priority,
		DistanceMinKm:    req.DistanceMinKm,
		DistanceMaxKm:    req.DistanceMaxKm,
		BaseFee:          req.BaseFee,
		PerKmFee:         req.PerKmFee,
		SurchargePercent: req.SurchargePercent,
		Notes:            strings.TrimSpace(req.Notes),
		Active:           req.Active,
		UpdatedAt:        now,
	}
	if rule.Priority == 0 {
		rule.Priority = 1
	}
	if err := rule.Validate(); err != nil {
		return nil, err
	}

	var existing *ruledomain.Rule
	if strings.TrimSpace(req.ID) != "" {
		id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
		if err != nil {
			return nil, ruledomain.ErrInvalidID
		}
		existing, err = s.repo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, ruledomain.ErrNotFound
		}
		rule.ID = existing.ID
		rule.CreatedAt = existing.CreatedAt
	}

	// The overlap invariant only binds active rules; an inactive band may
	// shadow any range.
	if rule.Active {
		if err := s.checkOverlap(ctx, &rule); err != nil {
			return nil, err
		}
	}

	if existing != nil {
		if err := s.repo.Update(ctx, &rule); err != nil {
			return nil, err
		}
	} else {
		rule.ID = s.genID.Generate()
		rule.CreatedAt = now
		if err := s.repo.Insert(ctx, &rule); err != nil {
			return nil, err
		}
	}

	s.invalidate()
	s.log.Info("pricing rule saved",
		zap.String("rule_id", rule.ID.String()),
		zap.String("name", rule.Name),
		zap.Bool("active", rule.Active),
	)
	return &rule, nil
}

func (s *Service) Delete(ctx context.Context, rawID string) error {
	id, err := snowflake.ParseString(strings.TrimSpace(rawID))
	if err != nil {
		return ruledomain.ErrInvalidID
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ruledomain.ErrNotFound
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidate()
	s.log.Info("pricing rule deleted", zap.String("rule_id", id.String()))
	return nil
}

func (s *Service) Match(ctx context.Context, distanceKm float64) (*ruledomain.Rule, error) {
	rules, err := s.activeSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	for i := range rules {
		if rules[i].Contains(distanceKm) {
			matched := rules[i]
			return &matched, nil
		}
	}
	return nil, nil
}

func (s *Service) checkOverlap(ctx context.Context, rule *ruledomain.Rule) error {
	active, err := s.repo.ListActive(ctx)
	if err != nil {
		return err
	}
	for i := range active {
		if active[i].ID == rule.ID {
			continue
		}
		if rule.Overlaps(&active[i]) {
			return &ruledomain.OverlapError{RuleID: active[i].ID, RuleName: active[i].Name}
		}
	}
	return nil
}

func (s *Service) activeSnapshot(ctx context.Context) ([]ruledomain.Rule, error) {
	s.mu.RLock()
	if s.loaded {
		rules := s.snapshot
		s.mu.RUnlock()
		return rules, nil
	}
	s.mu.RUnlock()

	rules, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	// Sorted once on load so Match stays a pure scan.
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].Priority != rules[j].Priority {
			return rules[i].Priority < rules[j].Priority
		}
		return rules[i].DistanceMinKm < rules[j].DistanceMinKm
	})

	s.mu.Lock()
	s.snapshot = rules
	s.loaded = true
	s.mu.Unlock()
	return rules, nil
}

func (s *Service) invalidate() {
	s.mu.Lock()
	s.snapshot = nil
	s.loaded = false
	s.mu.Unlock()
}
