package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/zhaoeryu/eu-authd/internal/kvstore"
	"github.com/zhaoeryu/eu-authd/internal/models"
)

const (
	lockKeyPrefix = "login:lock:"
	failKeyPrefix = "login:fail:"
)

// LockoutConfig holds the brute-force thresholds.
type LockoutConfig struct {
	MaxFailures     int
	FailureWindow   time.Duration
	LockoutDuration time.Duration
}

// LockoutService tracks consecutive login failures per identifier in the
// keyed store and escalates to a time-boxed lockout once the threshold is
// reached. State lives in the store so all service instances share it.
type LockoutService struct {
	store  kvstore.Store
	config LockoutConfig
	logger *slog.Logger
}

func NewLockoutService(store kvstore.Store, config LockoutConfig, logger *slog.Logger) *LockoutService {
	return &LockoutService{
		store:  store,
		config: config,
		logger: logger,
	}
}

// CheckLock fails with AccountLockedError when the identifier is currently
// locked. The error carries the remaining TTL read from the store, which on a
// repeat attempt is smaller than the configured lockout duration.
func (s *LockoutService) CheckLock(ctx context.Context, identifier string) error {
	remaining, found, err := s.store.TTL(ctx, lockKeyPrefix+identifier)
	if err != nil {
		return fmt.Errorf("failed to check lockout: %w", err)
	}
	if !found {
		return nil
	}
	return &models.AccountLockedError{Remaining: remaining}
}

// RecordFailure bumps the failure counter for the identifier. When the new
// count reaches the threshold it creates the lockout and returns an
// AccountLockedError carrying the full lockout duration.
//
// The read-then-write is not atomic across concurrent attempts; two racing
// failures can both observe count=n and both store n+1. The counter still
// progresses monotonically toward the threshold, so the lockout triggers
// regardless, just possibly one attempt later.
func (s *LockoutService) RecordFailure(ctx context.Context, identifier string) (*models.AccountLockedError, error) {
	key := failKeyPrefix + identifier

	countStr, found, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to read failure count: %w", err)
	}

	count := 0
	if found {
		if count, err = strconv.Atoi(countStr); err != nil {
			s.logger.Warn("corrupt failure counter, resetting",
				slog.String("identifier", identifier), slog.String("value", countStr))
			count = 0
		}
	}

	count++
	if count >= s.config.MaxFailures {
		if err := s.store.SetWithTTL(ctx, lockKeyPrefix+identifier, "1", s.config.LockoutDuration); err != nil {
			return nil, fmt.Errorf("failed to create lockout: %w", err)
		}
		if err := s.store.Delete(ctx, key); err != nil {
			s.logger.Warn("failed to clear failure counter after lockout", slog.Any("error", err))
		}

		s.logger.Warn("account locked after repeated failures",
			slog.String("identifier", identifier),
			slog.Int("failures", count),
			slog.Duration("lockout", s.config.LockoutDuration))

		return &models.AccountLockedError{Remaining: s.config.LockoutDuration}, nil
	}

	if err := s.store.SetWithTTL(ctx, key, strconv.Itoa(count), s.config.FailureWindow); err != nil {
		return nil, fmt.Errorf("failed to store failure count: %w", err)
	}

	return nil, nil
}

// RecordSuccess clears the failure counter. A success from any state returns
// the identifier to clean.
func (s *LockoutService) RecordSuccess(ctx context.Context, identifier string) error {
	if err := s.store.Delete(ctx, failKeyPrefix+identifier); err != nil {
		return fmt.Errorf("failed to clear failure count: %w", err)
	}
	return nil
}
