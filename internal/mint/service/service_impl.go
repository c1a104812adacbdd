package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	catalogdomain "github.com/zedanazad43/stampcoin-platform/internal/catalog/domain"
	"github.com/zedanazad43/stampcoin-platform/internal/clock"
	"github.com/zedanazad43/stampcoin-platform/internal/config"
	ledgerdomain "github.com/zedanazad43/stampcoin-platform/internal/ledger/domain"
	"github.com/zedanazad43/stampcoin-platform/internal/lock"
	"github.com/zedanazad43/stampcoin-platform/internal/mint/domain"
	"github.com/zedanazad43/stampcoin-platform/internal/observability/metrics"
	pinningdomain "github.com/zedanazad43/stampcoin-platform/internal/pinning/domain"
	serialdomain "github.com/zedanazad43/stampcoin-platform/internal/serial/domain"
	valuationdomain "github.com/zedanazad43/stampcoin-platform/internal/valuation/domain"
	pkgdb "github.com/zedanazad43/stampcoin-platform/pkg/db"
)

const (
	maxTxAttempts  = 5
	txRetryBackoff = 25 * time.Millisecond
	mintLockTTL    = 2 * time.Minute
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Economy   *config.EconomyHolder
	Metrics   *metrics.Metrics `optional:"true"`
	Locker    *lock.Locker     `optional:"true"`
	Repo      domain.Repository
	Catalog   catalogdomain.Repository
	Engine    valuationdomain.Engine
	Fetcher   pinningdomain.AssetFetcher
	Pinner    pinningdomain.Adapter
	Allocator serialdomain.Allocator
	Ledger    ledgerdomain.Service
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	economy   *config.EconomyHolder
	metrics   *metrics.Metrics
	locker    *lock.Locker
	repo      domain.Repository
	catalog   catalogdomain.Repository
	engine    valuationdomain.Engine
	fetcher   pinningdomain.AssetFetcher
	pinner    pinningdomain.Adapter
	allocator serialdomain.Allocator
	ledger    ledgerdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("mint.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		economy:   p.Economy,
		metrics:   p.Metrics,
		locker:    p.Locker,
		repo:      p.Repo,
		catalog:   p.Catalog,
		engine:    p.Engine,
		fetcher:   p.Fetcher,
		pinner:    p.Pinner,
		allocator: p.Allocator,
		ledger:    p.Ledger,
	}
}

// Mint runs the pipeline in stages. Everything before the final transaction
// has no durable side effects except the serial counter, whose gaps are
// acceptable. Token row and currency credit commit together or not at all.
func (s *Service) Mint(ctx context.Context, req domain.MintRequest) (*domain.MintResult, error) {
	result, err := s.mint(ctx, req)
	s.metrics.RecordMint(mintOutcome(err))
	return result, err
}

func (s *Service) mint(ctx context.Context, req domain.MintRequest) (*domain.MintResult, error) {
	item, err := s.catalog.FindByID(ctx, s.db, req.CatalogItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, catalogdomain.ErrNotFound
	}

	if existing, err := s.repo.FindByCatalogItem(ctx, s.db, item.ID); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, domain.ErrAlreadyMinted
	}

	release, err := s.acquireLock(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	valuation := s.engine.Valuate(*item)

	payload, mimeType, err := s.fetcher.Fetch(ctx, item.ImageURL)
	if err != nil {
		if errors.Is(err, pinningdomain.ErrValidation) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", pinningdomain.ErrPinningFailed, err)
	}

	pinResult, err := s.pinner.Pin(ctx, payload, mimeType, pinningdomain.AssetMetadata{
		Name:        fmt.Sprintf("%s %d %s", item.Country, item.IssueYear, item.DenominationText),
		Description: item.Description,
		Attributes: map[string]string{
			"country":    item.Country,
			"issue_year": fmt.Sprintf("%d", item.IssueYear),
			"rarity":     string(item.Rarity),
			"condition":  string(item.Condition),
		},
	})
	if err != nil {
		return nil, err
	}

	serialNumber, err := s.allocator.Allocate(ctx, item.Country)
	if err != nil {
		return nil, err
	}

	amount := s.economy.Current().RewardAmount(valuation.FinalValue)

	record := &domain.Record{
		ID:            s.genID.Generate(),
		CatalogItemID: item.ID,
		OwnerID:       req.OwnerID,
		SerialNumber:  serialNumber,
		MetadataURI:   pinResult.MetadataURI,
		ImageURI:      pinResult.ImageURI,
		FinalValue:    valuation.FinalValue,
		CreatedAt:     s.clock.Now(),
	}

	distribution, err := s.commitMint(ctx, record, amount)
	if err != nil {
		s.log.Warn("mint commit failed, serial burned",
			zap.String("catalog_item_id", item.ID.String()),
			zap.String("serial_number", serialNumber),
			zap.Error(err),
		)
		return nil, err
	}

	s.metrics.RecordCredit(amount)
	s.log.Info("catalog item minted",
		zap.String("catalog_item_id", item.ID.String()),
		zap.String("record_id", record.ID.String()),
		zap.String("serial_number", serialNumber),
		zap.Int64("amount", amount),
	)

	return &domain.MintResult{
		Record:            record,
		Valuation:         valuation,
		Distribution:      distribution,
		DistributedAmount: amount,
		Pin:               *pinResult,
	}, nil
}

// commitMint inserts the record and credits the owner in one transaction,
// retrying transient conflicts. The duplicate-key classification on the
// record insert is what makes concurrent mints of the same item safe.
func (s *Service) commitMint(ctx context.Context, record *domain.Record, amount int64) (*ledgerdomain.Distribution, error) {
	var lastErr error
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		if attempt > 0 {
			if err := sleepWithContext(ctx, txBackoffDelay(attempt)); err != nil {
				return nil, err
			}
		}

		var distribution *ledgerdomain.Distribution
		err := s.db.Transaction(func(tx *gorm.DB) error {
			if err := s.repo.Create(ctx, tx, record); err != nil {
				if pkgdb.IsDuplicateKeyErr(err) {
					return domain.ErrAlreadyMinted
				}
				return err
			}

			var err error
			distribution, err = s.ledger.CreditTx(ctx, tx, record.OwnerID, record.ID, amount)
			return err
		})
		if err == nil {
			return distribution, nil
		}
		if !pkgdb.IsRetryableErr(err) {
			return nil, err
		}
		lastErr = err
	}

	s.log.Warn("mint transaction exhausted retries", zap.Error(lastErr))
	return nil, domain.ErrContention
}

// acquireLock takes a best-effort distributed lock per catalog item so
// concurrent callers fail fast instead of racing to the pin providers. A
// missing or unreachable locker never blocks the mint.
func (s *Service) acquireLock(ctx context.Context, itemID snowflake.ID) (func(), error) {
	if s.locker == nil {
		return func() {}, nil
	}

	key := "mint:item:" + itemID.String()
	token, acquired, err := s.locker.TryLock(ctx, key, mintLockTTL)
	if err != nil {
		s.log.Warn("mint lock unavailable", zap.String("key", key), zap.Error(err))
		return func() {}, nil
	}
	if !acquired {
		return nil, domain.ErrContention
	}
	return func() {
		if err := s.locker.Release(context.WithoutCancel(ctx), key, token); err != nil {
			s.log.Warn("mint lock release failed", zap.String("key", key), zap.Error(err))
		}
	}, nil
}

func (s *Service) ReconcileToken(ctx context.Context, recordID snowflake.ID, tokenIdentifier string) (*domain.Record, error) {
	tokenIdentifier = strings.TrimSpace(tokenIdentifier)
	if tokenIdentifier == "" {
		return nil, fmt.Errorf("%w: token identifier is required", pinningdomain.ErrValidation)
	}

	record, err := s.repo.FindByID(ctx, s.db, recordID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, domain.ErrNotFound
	}

	rows, err := s.repo.SetTokenIdentifier(ctx, s.db, recordID, tokenIdentifier)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		if record.TokenIdentifier != nil && *record.TokenIdentifier == tokenIdentifier {
			return record, nil
		}
		return nil, domain.ErrAlreadyReconciled
	}

	record.TokenIdentifier = &tokenIdentifier
	s.log.Info("mint record reconciled",
		zap.String("record_id", recordID.String()),
		zap.String("token_identifier", tokenIdentifier),
	)
	return record, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Record, error) {
	recordID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrNotFound
	}

	record, err := s.repo.FindByID(ctx, s.db, recordID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, domain.ErrNotFound
	}
	return record, nil
}

func (s *Service) GetByCatalogItem(ctx context.Context, catalogItemID snowflake.ID) (*domain.Record, error) {
	record, err := s.repo.FindByCatalogItem(ctx, s.db, catalogItemID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, domain.ErrNotFound
	}
	return record, nil
}

func (s *Service) ListByOwner(ctx context.Context, ownerID snowflake.ID, limit int) ([]domain.Record, error) {
	return s.repo.ListByOwner(ctx, s.db, ownerID, limit)
}

func mintOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, domain.ErrAlreadyMinted):
		return metrics.OutcomeAlreadyMinted
	case errors.Is(err, catalogdomain.ErrNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, pinningdomain.ErrValidation):
		return metrics.OutcomeValidation
	case errors.Is(err, pinningdomain.ErrPinningFailed):
		return metrics.OutcomePinningFailed
	case errors.Is(err, ledgerdomain.ErrSupplyExhausted):
		return metrics.OutcomeSupplyExhausted
	case errors.Is(err, domain.ErrContention), errors.Is(err, serialdomain.ErrContention):
		return metrics.OutcomeContention
	default:
		return metrics.OutcomeInternal
	}
}

func txBackoffDelay(attempt int) time.Duration {
	delay := txRetryBackoff << uint(attempt-1)
	jitter := time.Duration(rand.Int63n(int64(txRetryBackoff)))
	return delay + jitter
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
