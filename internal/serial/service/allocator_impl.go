package service

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/zedanazad43/stampcoin-platform/internal/config"
	"github.com/zedanazad43/stampcoin-platform/internal/serial/domain"
	pkgdb "github.com/zedanazad43/stampcoin-platform/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	maxAttempts  = 5
	retryBackoff = 25 * time.Millisecond
	maxScopeLen  = 12
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Economy *config.EconomyHolder
}

type Allocator struct {
	db      *gorm.DB
	log     *zap.Logger
	economy *config.EconomyHolder
}

func New(p Params) domain.Allocator {
	return &Allocator{
		db:      p.DB,
		log:     p.Log.Named("serial.allocator"),
		economy: p.Economy,
	}
}

// Allocate increments the scope counter with a single upsert-returning
// statement, so no two callers can observe the same sequence. Transient lock
// and serialization failures are retried with jittered backoff up to
// maxAttempts before surfacing ErrContention.
func (a *Allocator) Allocate(ctx context.Context, scopeKey string) (string, error) {
	scope := a.normalizeScope(scopeKey)

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			if err := sleepWithContext(ctx, backoffDelay(attempt)); err != nil {
				return "", err
			}
		}

		seq, err := a.nextSequence(ctx, scope)
		if err == nil {
			return fmt.Sprintf("%s-%06d", scope, seq), nil
		}
		if !pkgdb.IsRetryableErr(err) {
			return "", fmt.Errorf("allocate serial for scope %s: %w", scope, err)
		}
		lastErr = err
	}

	a.log.Warn("serial allocation exhausted retries",
		zap.String("scope", scope),
		zap.Error(lastErr),
	)
	return "", domain.ErrContention
}

func (a *Allocator) nextSequence(ctx context.Context, scope string) (int64, error) {
	var seq int64
	err := a.db.WithContext(ctx).Raw(
		`INSERT INTO serial_counters (scope_key, next_sequence) VALUES (?, 1)
		 ON CONFLICT (scope_key) DO UPDATE SET next_sequence = serial_counters.next_sequence + 1
		 RETURNING next_sequence`,
		scope,
	).Scan(&seq).Error
	if err != nil {
		return 0, err
	}
	return seq, nil
}

func (a *Allocator) normalizeScope(scopeKey string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(strings.TrimSpace(scopeKey)) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
		if b.Len() >= maxScopeLen {
			break
		}
	}
	if b.Len() == 0 {
		return a.economy.Current().DefaultSerialScope
	}
	return b.String()
}

func backoffDelay(attempt int) time.Duration {
	delay := retryBackoff << uint(attempt-1)
	jitter := time.Duration(rand.Int63n(int64(retryBackoff)))
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
