package services

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zhaoeryu/eu-authd/internal/auth"
	"github.com/zhaoeryu/eu-authd/internal/device"
	"github.com/zhaoeryu/eu-authd/internal/geo"
	"github.com/zhaoeryu/eu-authd/internal/models"
)

const testUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func newSessionService(t *testing.T, roles RoleLookup, depts DeptLookup) *SessionService {
	t.Helper()

	store, _ := newTestKVStore(t)
	tokens := auth.NewTokenManager("test-secret-at-least-16", time.Hour)

	if roles == nil {
		roles = &MockRoleLookup{}
	}
	if depts == nil {
		depts = &MockDeptLookup{}
	}

	return NewSessionService(store, tokens, roles, depts, geo.NewStaticResolver("Testland"), slog.Default())
}

func TestSessionService_Assemble(t *testing.T) {
	roles := &MockRoleLookup{
		RolesForUserFunc: func(ctx context.Context, userID int64) ([]models.Role, error) {
			return []models.Role{{ID: 1, Code: "ops", Name: "Operations"}}, nil
		},
	}
	deptID := int64(9)
	depts := &MockDeptLookup{
		AncestorChainFunc: func(ctx context.Context, id int64) ([]string, error) {
			return []string{"Head Office", "Engineering", "Platform"}, nil
		},
	}
	svc := newSessionService(t, roles, depts)

	prevLogin := time.Now().Add(-48 * time.Hour)
	user := NewTestUser(7, "alice", "hash")
	user.DeptID = &deptID
	user.LoginIP = "198.51.100.9"
	user.LoginTime = &prevLogin

	now := time.Now()
	sctx, err := svc.Assemble(context.Background(), user, "203.0.113.5", testUserAgent, now)
	require.NoError(t, err)

	assert.Equal(t, int64(7), sctx.UserID)
	assert.Equal(t, []string{"ops"}, sctx.Roles)
	assert.Equal(t, "203.0.113.5", sctx.LoginIP)
	assert.Equal(t, "Testland", sctx.LoginRegion)
	assert.Equal(t, now, sctx.LoginTime)
	assert.Equal(t, "198.51.100.9", sctx.PrevLoginIP)
	assert.Equal(t, "Testland", sctx.PrevLoginRegion)
	require.NotNil(t, sctx.PrevLoginTime)
	assert.Equal(t, prevLogin, *sctx.PrevLoginTime)

	// Display name is the last element of the root-to-leaf chain.
	assert.Equal(t, []string{"Head Office", "Engineering", "Platform"}, sctx.DeptNames)
	assert.Equal(t, "Platform", sctx.DeptName)

	assert.Equal(t, "Windows", sctx.OS)
	assert.Equal(t, "Chrome", sctx.Browser)
}

func TestSessionService_Assemble_NoPreviousLogin(t *testing.T) {
	svc := newSessionService(t, nil, nil)

	user := NewTestUser(7, "alice", "hash")

	sctx, err := svc.Assemble(context.Background(), user, "203.0.113.5", testUserAgent, time.Now())
	require.NoError(t, err)

	// No previous IP means the previous region is absent, not an error and
	// not "Unknown".
	assert.Empty(t, sctx.PrevLoginIP)
	assert.Empty(t, sctx.PrevLoginRegion)
	assert.Nil(t, sctx.PrevLoginTime)
}

func TestSessionService_Assemble_NoDept(t *testing.T) {
	depts := &MockDeptLookup{
		AncestorChainFunc: func(ctx context.Context, id int64) ([]string, error) {
			t.Fatal("dept lookup must be skipped when the user has no dept")
			return nil, nil
		},
	}
	svc := newSessionService(t, nil, depts)

	sctx, err := svc.Assemble(context.Background(), NewTestUser(7, "alice", "hash"), "203.0.113.5", testUserAgent, time.Now())
	require.NoError(t, err)
	assert.Empty(t, sctx.DeptName)
	assert.Empty(t, sctx.DeptNames)
}

func TestSessionService_Assemble_UnparsableUserAgent(t *testing.T) {
	svc := newSessionService(t, nil, nil)

	sctx, err := svc.Assemble(context.Background(), NewTestUser(7, "alice", "hash"), "203.0.113.5", "gibberish", time.Now())
	require.NoError(t, err)
	assert.Equal(t, device.Unknown, sctx.OS)
	assert.Equal(t, device.Unknown, sctx.Browser)
}

func TestSessionService_IssueAndCurrentIdentity(t *testing.T) {
	svc := newSessionService(t, nil, nil)
	ctx := context.Background()

	sctx := &models.SessionContext{UserID: 7, Username: "alice", LoginIP: "203.0.113.5"}

	token, err := svc.Issue(ctx, sctx, models.DeviceClassAdmin, time.Now())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := svc.CurrentIdentity(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.UserID)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "203.0.113.5", got.LoginIP)
}

func TestSessionService_ReissueReplacesPriorSession(t *testing.T) {
	svc := newSessionService(t, nil, nil)
	ctx := context.Background()

	sctx := &models.SessionContext{UserID: 7, Username: "alice"}

	first, err := svc.Issue(ctx, sctx, models.DeviceClassAdmin, time.Now())
	require.NoError(t, err)

	second, err := svc.Issue(ctx, sctx, models.DeviceClassAdmin, time.Now())
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	// The second issuance for the same (user, device) pair drops the first
	// session record.
	_, err = svc.CurrentIdentity(ctx, first)
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	_, err = svc.CurrentIdentity(ctx, second)
	assert.NoError(t, err)
}

func TestSessionService_CurrentIdentity_BadToken(t *testing.T) {
	svc := newSessionService(t, nil, nil)

	_, err := svc.CurrentIdentity(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}
