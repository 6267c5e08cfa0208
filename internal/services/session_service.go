package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/zhaoeryu/eu-authd/internal/auth"
	"github.com/zhaoeryu/eu-authd/internal/device"
	"github.com/zhaoeryu/eu-authd/internal/geo"
	"github.com/zhaoeryu/eu-authd/internal/kvstore"
	"github.com/zhaoeryu/eu-authd/internal/models"
)

const (
	sessionKeyPrefix = "session:ctx:"
	deviceKeyPrefix  = "session:device:"
)

// RoleLookup provides the role set of a user.
type RoleLookup interface {
	RolesForUser(ctx context.Context, userID int64) ([]models.Role, error)
}

// DeptLookup provides the department name chain, ordered root to leaf. The
// leaf (the department itself) is the last element.
type DeptLookup interface {
	AncestorChain(ctx context.Context, deptID int64) ([]string, error)
}

// SessionService assembles the enriched identity for a successful login and
// hands it off to the session store together with a freshly issued token.
type SessionService struct {
	store  kvstore.Store
	tokens *auth.TokenManager
	roles  RoleLookup
	depts  DeptLookup
	geo    geo.Resolver
	logger *slog.Logger
}

func NewSessionService(store kvstore.Store, tokens *auth.TokenManager, roles RoleLookup, depts DeptLookup, geoResolver geo.Resolver, logger *slog.Logger) *SessionService {
	return &SessionService{
		store:  store,
		tokens: tokens,
		roles:  roles,
		depts:  depts,
		geo:    geoResolver,
		logger: logger,
	}
}

// Assemble builds the SessionContext for a user logging in now from clientIP
// with the given user agent. It reads roles, the department chain and the
// geo database but never mutates the account.
func (s *SessionService) Assemble(ctx context.Context, user *models.User, clientIP, userAgent string, now time.Time) (*models.SessionContext, error) {
	roles, err := s.roles.RolesForUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load roles: %w", err)
	}
	roleCodes := make([]string, 0, len(roles))
	for _, role := range roles {
		roleCodes = append(roleCodes, role.Code)
	}

	var deptName string
	var deptNames []string
	if user.DeptID != nil {
		deptNames, err = s.depts.AncestorChain(ctx, *user.DeptID)
		if err != nil {
			return nil, fmt.Errorf("failed to load dept chain: %w", err)
		}
		if len(deptNames) > 0 {
			deptName = deptNames[len(deptNames)-1]
		}
	}

	// The previous-region lookup is skipped entirely when no previous login
	// IP was ever recorded; the field stays absent rather than "Unknown".
	var prevRegion string
	if user.LoginIP != "" {
		prevRegion = s.geo.RegionForIP(user.LoginIP)
	}

	dev := device.Parse(userAgent)

	return &models.SessionContext{
		UserID:          user.ID,
		Username:        user.Username,
		Nickname:        user.Nickname,
		Avatar:          user.Avatar,
		Mobile:          user.Mobile,
		Email:           user.Email,
		Sex:             user.Sex,
		Admin:           user.Admin,
		Roles:           roleCodes,
		LoginIP:         clientIP,
		LoginRegion:     s.geo.RegionForIP(clientIP),
		LoginTime:       now,
		PrevLoginIP:     user.LoginIP,
		PrevLoginRegion: prevRegion,
		PrevLoginTime:   user.LoginTime,
		DeptID:          user.DeptID,
		DeptName:        deptName,
		DeptNames:       deptNames,
		OS:              dev.OS,
		Browser:         dev.Browser,
		CreatedAt:       user.CreatedAt,
	}, nil
}

// Issue creates a session token bound to (userID, device class), persists the
// context under the token's jti and records the jti as the active session for
// that pair. Issuing again for the same pair replaces the prior binding and
// drops its context.
func (s *SessionService) Issue(ctx context.Context, sctx *models.SessionContext, deviceClass string, now time.Time) (string, error) {
	token, jti, err := s.tokens.IssueToken(sctx.UserID, deviceClass, now)
	if err != nil {
		return "", err
	}

	blob, err := json.Marshal(sctx)
	if err != nil {
		return "", fmt.Errorf("failed to encode session context: %w", err)
	}

	ttl := s.tokens.SessionTTL()
	if err := s.store.SetWithTTL(ctx, sessionKeyPrefix+jti, string(blob), ttl); err != nil {
		return "", fmt.Errorf("failed to store session context: %w", err)
	}

	bindingKey := fmt.Sprintf("%s%s:%d", deviceKeyPrefix, deviceClass, sctx.UserID)
	if prevJTI, found, err := s.store.Get(ctx, bindingKey); err == nil && found && prevJTI != jti {
		if err := s.store.Delete(ctx, sessionKeyPrefix+prevJTI); err != nil {
			s.logger.Warn("failed to drop superseded session", slog.Any("error", err))
		}
	}
	if err := s.store.SetWithTTL(ctx, bindingKey, jti, ttl); err != nil {
		return "", fmt.Errorf("failed to bind session: %w", err)
	}

	return token, nil
}

// CurrentIdentity resolves a session token back to the identity stored at
// login time. Tokens whose session record was superseded or expired fail
// with ErrUnauthorized.
func (s *SessionService) CurrentIdentity(ctx context.Context, token string) (*models.SessionContext, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, models.ErrUnauthorized
	}

	blob, found, err := s.store.Get(ctx, sessionKeyPrefix+claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to read session context: %w", err)
	}
	if !found {
		return nil, models.ErrUnauthorized
	}

	var sctx models.SessionContext
	if err := json.Unmarshal([]byte(blob), &sctx); err != nil {
		return nil, fmt.Errorf("corrupt session context: %w", err)
	}

	return &sctx, nil
}
