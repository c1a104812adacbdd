package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/zedanazad43/stampcoin-platform/internal/catalog/domain"
	"github.com/zedanazad43/stampcoin-platform/internal/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("catalog.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Import(ctx context.Context, req domain.ImportRequest) (*domain.Item, error) {
	country := strings.ToUpper(strings.TrimSpace(req.Country))
	if country == "" {
		return nil, fmt.Errorf("%w: country is required", domain.ErrInvalidItem)
	}
	if req.Denomination <= 0 {
		return nil, fmt.Errorf("%w: denomination must be positive", domain.ErrInvalidItem)
	}
	if req.IssueYear <= 0 {
		return nil, fmt.Errorf("%w: issue year is required", domain.ErrInvalidItem)
	}

	item := &domain.Item{
		ID:               s.genID.Generate(),
		Country:          country,
		IssueYear:        req.IssueYear,
		Denomination:     req.Denomination,
		DenominationText: strings.TrimSpace(req.DenominationText),
		Rarity:           domain.RarityTier(strings.ToLower(strings.TrimSpace(req.Rarity))),
		Condition:        domain.ConditionGrade(strings.ToLower(strings.TrimSpace(req.Condition))),
		Description:      strings.TrimSpace(req.Description),
		ImageURL:         strings.TrimSpace(req.ImageURL),
		CreatedAt:        s.clock.Now(),
	}

	if err := s.repo.Create(ctx, s.db, item); err != nil {
		return nil, err
	}

	s.log.Info("catalog item imported",
		zap.String("item_id", item.ID.String()),
		zap.String("country", item.Country),
		zap.Int("issue_year", item.IssueYear),
	)
	return item, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Item, error) {
	itemID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrNotFound
	}

	item, err := s.repo.FindByID(ctx, s.db, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Item, error) {
	req.Country = strings.ToUpper(strings.TrimSpace(req.Country))
	return s.repo.List(ctx, s.db, req)
}
