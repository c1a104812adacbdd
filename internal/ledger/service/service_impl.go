package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/zedanazad43/stampcoin-platform/internal/clock"
	"github.com/zedanazad43/stampcoin-platform/internal/ledger/domain"
	obsmetrics "github.com/zedanazad43/stampcoin-platform/internal/observability/metrics"
	"github.com/zedanazad43/stampcoin-platform/pkg/db/option"
	"github.com/zedanazad43/stampcoin-platform/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Store      repository.Repository[domain.Distribution]
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	store      repository.Repository[domain.Distribution]
	obsMetrics *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("ledger.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		store:      p.Store,
		obsMetrics: p.ObsMetrics,
	}
}

func (s *Service) CreditTx(ctx context.Context, tx *gorm.DB, userID snowflake.ID, mintRecordID snowflake.ID, amount int64) (*domain.Distribution, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	if userID == 0 {
		return nil, domain.ErrInvalidAmount
	}

	now := s.clock.Now()

	// Guarded credit: zero rows affected means the cap would be crossed
	// (or the aggregate was never seeded).
	result := tx.WithContext(ctx).Exec(
		`UPDATE ledger_aggregates
		 SET circulating_supply = circulating_supply + ?,
		     total_supply = total_supply + ?,
		     updated_at = ?
		 WHERE id = ? AND circulating_supply + ? <= max_supply`,
		amount, amount, now, domain.AggregateRowID, amount,
	)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := tx.WithContext(ctx).Model(&domain.Aggregate{}).
			Where("id = ?", domain.AggregateRowID).Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, domain.ErrAggregateMissing
		}
		return nil, domain.ErrSupplyExhausted
	}

	dist := &domain.Distribution{
		ID:           s.genID.Generate(),
		UserID:       userID,
		MintRecordID: &mintRecordID,
		Amount:       amount,
		Kind:         domain.KindMintReward,
		Status:       domain.StatusCompleted,
		CreatedAt:    now,
	}
	if err := tx.WithContext(ctx).Exec(
		`INSERT INTO currency_distributions (id, user_id, mint_record_id, amount, kind, status, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		dist.ID, dist.UserID, dist.MintRecordID, dist.Amount, dist.Kind, dist.Status, dist.Reason, dist.CreatedAt,
	).Error; err != nil {
		return nil, err
	}

	return dist, nil
}

func (s *Service) Burn(ctx context.Context, userID snowflake.ID, amount int64, reason string) (*domain.Distribution, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	reason = strings.TrimSpace(reason)
	now := s.clock.Now()
	dist := &domain.Distribution{
		ID:        s.genID.Generate(),
		UserID:    userID,
		Amount:    amount,
		Kind:      domain.KindBurn,
		Status:    domain.StatusCompleted,
		Reason:    reason,
		CreatedAt: now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.WithContext(ctx).Exec(
			`UPDATE ledger_aggregates
			 SET circulating_supply = circulating_supply - ?,
			     burned_supply = burned_supply + ?,
			     updated_at = ?
			 WHERE id = ? AND circulating_supply >= ?`,
			amount, amount, now, domain.AggregateRowID, amount,
		)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrInsufficientSupply
		}

		return tx.WithContext(ctx).Exec(
			`INSERT INTO currency_distributions (id, user_id, mint_record_id, amount, kind, status, reason, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			dist.ID, dist.UserID, nil, dist.Amount, dist.Kind, dist.Status, dist.Reason, dist.CreatedAt,
		).Error
	})
	if err != nil {
		return nil, err
	}

	s.obsMetrics.RecordBurn(amount)
	s.log.Info("currency burned",
		zap.String("user_id", userID.String()),
		zap.Int64("amount", amount),
		zap.String("reason", reason),
	)
	return dist, nil
}

func (s *Service) GetAggregate(ctx context.Context) (*domain.Aggregate, error) {
	var agg domain.Aggregate
	err := s.db.WithContext(ctx).
		Where("id = ?", domain.AggregateRowID).
		First(&agg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAggregateMissing
		}
		return nil, err
	}
	return &agg, nil
}

func (s *Service) ListDistributions(ctx context.Context, userID snowflake.ID, limit int) ([]domain.Distribution, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := s.store.Find(ctx, &domain.Distribution{UserID: userID},
		option.WithSortBy("created_at", "desc", map[string]bool{"created_at": true}),
		option.WithLimit(limit),
	)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Distribution, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	return out, nil
}
