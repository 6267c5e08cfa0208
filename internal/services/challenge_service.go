package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/zhaoeryu/eu-authd/internal/kvstore"
	"github.com/zhaoeryu/eu-authd/internal/models"
)

const challengeKeyPrefix = "login:challenge:"

// Challenge is a freshly issued one-time login code. The code travels
// out-of-band to the client; only the correlation ID comes back with the
// login request together with the user's transcription of the code.
type Challenge struct {
	ID        string
	Code      string
	ExpiresIn time.Duration
}

// ChallengeService issues and verifies single-use login challenge codes.
type ChallengeService struct {
	store  kvstore.Store
	ttl    time.Duration
	logger *slog.Logger
}

func NewChallengeService(store kvstore.Store, ttl time.Duration, logger *slog.Logger) *ChallengeService {
	return &ChallengeService{
		store:  store,
		ttl:    ttl,
		logger: logger,
	}
}

// Issue generates a new challenge and stores it under a fresh correlation ID.
func (s *ChallengeService) Issue(ctx context.Context) (*Challenge, error) {
	code, err := generateNumericCode(6)
	if err != nil {
		return nil, fmt.Errorf("failed to generate challenge code: %w", err)
	}

	id := uuid.New().String()
	if err := s.store.SetWithTTL(ctx, challengeKeyPrefix+id, code, s.ttl); err != nil {
		return nil, fmt.Errorf("failed to store challenge: %w", err)
	}

	return &Challenge{ID: id, Code: code, ExpiresIn: s.ttl}, nil
}

// Verify consumes the challenge stored under correlationID and compares it
// with the submitted code. The stored code is deleted on first read, before
// the comparison, so a code never validates twice no matter the outcome.
func (s *ChallengeService) Verify(ctx context.Context, correlationID, code string) error {
	stored, found, err := s.store.GetDel(ctx, challengeKeyPrefix+correlationID)
	if err != nil {
		return fmt.Errorf("failed to read challenge: %w", err)
	}
	if !found {
		return models.ErrChallengeExpired
	}
	if stored != code {
		return models.ErrChallengeMismatch
	}
	return nil
}

func generateNumericCode(digits int) (string, error) {
	max := big.NewInt(1)
	for i := 0; i < digits; i++ {
		max.Mul(max, big.NewInt(10))
	}

	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%0*d", digits, n), nil
}
