package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/zhaoeryu/eu-authd/internal/models"
	pkglogger "github.com/zhaoeryu/eu-authd/pkg/logger"
)

// UserRepository is the account store consumed by the login flow.
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateLoginAudit(ctx context.Context, userID int64, ip string, now time.Time) error
}

// CredentialVerifier matches a submitted (encrypted) password against a
// stored hash. Implemented by auth.CredentialVerifier.
type CredentialVerifier interface {
	Verify(encryptedPassword, storedHash string) (bool, error)
}

// LoginRequest carries everything a login attempt submits, plus the client
// metadata the transport extracted.
type LoginRequest struct {
	Username      string
	Password      string // RSA-encrypted, base64
	ChallengeID   string
	ChallengeCode string
	ClientIP      string
	UserAgent     string
}

// LoginService sequences a login attempt: challenge, lockout, account,
// credential, status, session. Each failing step aborts the rest.
type LoginService struct {
	users       UserRepository
	challenges  *ChallengeService
	lockouts    *LockoutService
	sessions    *SessionService
	verifier    CredentialVerifier
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

func NewLoginService(
	users UserRepository,
	challenges *ChallengeService,
	lockouts *LockoutService,
	sessions *SessionService,
	verifier CredentialVerifier,
	logger *slog.Logger,
	auditLogger *pkglogger.AuditLogger,
) *LoginService {
	return &LoginService{
		users:       users,
		challenges:  challenges,
		lockouts:    lockouts,
		sessions:    sessions,
		verifier:    verifier,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// Login runs the full login sequence and returns the issued session token.
//
// An unknown username and a wrong password both surface the identical
// models.ErrInvalidCredentials so callers cannot tell accounts apart.
func (s *LoginService) Login(ctx context.Context, req LoginRequest) (string, error) {
	if err := s.challenges.Verify(ctx, req.ChallengeID, req.ChallengeCode); err != nil {
		return "", err
	}

	if err := s.lockouts.CheckLock(ctx, req.Username); err != nil {
		s.audit(req, 0, "account_locked", false)
		return "", err
	}

	user, err := s.users.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.audit(req, 0, "unknown_account", false)
			return "", models.ErrInvalidCredentials
		}
		s.logger.Error("failed to resolve account", slog.Any("error", err))
		return "", models.ErrInternalServer
	}

	ok, err := s.verifier.Verify(req.Password, user.PasswordHash)
	if err != nil {
		// Malformed ciphertext is not a wrong password: it is logged with
		// detail and does not feed the failure counter, but the caller sees
		// the same generic error.
		if errors.Is(err, models.ErrCredentialFormat) {
			s.logger.Warn("credential decryption failed",
				slog.String("username", pkglogger.SanitizedUsername(req.Username)),
				slog.Any("error", err))
			s.audit(req, user.ID, "credential_format", false)
			return "", models.ErrInvalidCredentials
		}
		s.logger.Error("credential verification failed", slog.Any("error", err))
		return "", models.ErrInternalServer
	}

	if !ok {
		lockedErr, recordErr := s.lockouts.RecordFailure(ctx, req.Username)
		if recordErr != nil {
			s.logger.Error("failed to record login failure", slog.Any("error", recordErr))
		}
		if lockedErr != nil {
			s.audit(req, user.ID, "account_locked", false)
			return "", lockedErr
		}
		s.audit(req, user.ID, "invalid_credentials", false)
		return "", models.ErrInvalidCredentials
	}

	if err := s.lockouts.RecordSuccess(ctx, req.Username); err != nil {
		s.logger.Error("failed to clear failure count", slog.Any("error", err))
	}

	switch user.Status {
	case models.StatusDisabled:
		s.audit(req, user.ID, "account_disabled", false)
		return "", models.ErrAccountDisabled
	case models.StatusDeleted:
		s.audit(req, user.ID, "account_deleted", false)
		return "", models.ErrAccountDeleted
	}

	now := time.Now()
	sctx, err := s.sessions.Assemble(ctx, user, req.ClientIP, req.UserAgent, now)
	if err != nil {
		s.logger.Error("failed to assemble session context", slog.Any("error", err))
		return "", models.ErrInternalServer
	}

	token, err := s.sessions.Issue(ctx, sctx, models.DeviceClassAdmin, now)
	if err != nil {
		s.logger.Error("failed to issue session", slog.Any("error", err))
		return "", models.ErrInternalServer
	}

	// Best effort: the token is already valid, a bookkeeping failure here is
	// logged and never surfaced.
	if err := s.users.UpdateLoginAudit(ctx, user.ID, req.ClientIP, now); err != nil {
		s.logger.Error("failed to record login info",
			slog.Int64("user_id", user.ID), slog.Any("error", err))
	}

	s.audit(req, user.ID, "", true)
	s.logger.Info("user logged in", slog.Int64("user_id", user.ID))

	return token, nil
}

func (s *LoginService) audit(req LoginRequest, userID int64, failureReason string, success bool) {
	eventType := "login_failed"
	if success {
		eventType = "login_success"
	}
	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType:     eventType,
		UserID:        userID,
		Username:      req.Username,
		IPAddress:     req.ClientIP,
		UserAgent:     req.UserAgent,
		Success:       success,
		FailureReason: failureReason,
	})
}
