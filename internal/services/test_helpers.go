package services

import (
	"context"
	"time"

	"github.com/zhaoeryu/eu-authd/internal/models"
)

// MockUserRepository implements UserRepository for testing
type MockUserRepository struct {
	FindByUsernameFunc   func(ctx context.Context, username string) (*models.User, error)
	UpdateLoginAuditFunc func(ctx context.Context, userID int64, ip string, now time.Time) error
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.FindByUsernameFunc != nil {
		return m.FindByUsernameFunc(ctx, username)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) UpdateLoginAudit(ctx context.Context, userID int64, ip string, now time.Time) error {
	if m.UpdateLoginAuditFunc != nil {
		return m.UpdateLoginAuditFunc(ctx, userID, ip, now)
	}
	return nil
}

// MockRoleLookup implements RoleLookup for testing
type MockRoleLookup struct {
	RolesForUserFunc func(ctx context.Context, userID int64) ([]models.Role, error)
}

func (m *MockRoleLookup) RolesForUser(ctx context.Context, userID int64) ([]models.Role, error) {
	if m.RolesForUserFunc != nil {
		return m.RolesForUserFunc(ctx, userID)
	}
	return []models.Role{}, nil
}

// MockDeptLookup implements DeptLookup for testing
type MockDeptLookup struct {
	AncestorChainFunc func(ctx context.Context, deptID int64) ([]string, error)
}

func (m *MockDeptLookup) AncestorChain(ctx context.Context, deptID int64) ([]string, error) {
	if m.AncestorChainFunc != nil {
		return m.AncestorChainFunc(ctx, deptID)
	}
	return []string{}, nil
}

// NewTestUser returns a normal-status account for tests.
func NewTestUser(id int64, username, passwordHash string) *models.User {
	return &models.User{
		ID:           id,
		Username:     username,
		Nickname:     username,
		PasswordHash: passwordHash,
		Status:       models.StatusNormal,
		CreatedAt:    time.Now().Add(-24 * time.Hour),
	}
}
