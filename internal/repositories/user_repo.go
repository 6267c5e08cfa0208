package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/zhaoeryu/eu-authd/internal/database"
	"github.com/zhaoeryu/eu-authd/internal/models"
)

type UserRepository struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByUsername returns at most one account for a username. An ambiguous
// username resolves the same way as a missing one: models.ErrNotFound.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `
		SELECT id, username, nickname, avatar, mobile, email, sex, admin, password, status, dept_id, login_ip, login_time, created_at, updated_at
		FROM sys_user WHERE username = $1 LIMIT 1
	`

	var user models.User
	var passwordHash, loginIP *string
	var loginTime *time.Time

	err := r.db.Pool.QueryRow(ctx, query, username).Scan(
		&user.ID, &user.Username, &user.Nickname, &user.Avatar,
		&user.Mobile, &user.Email, &user.Sex, &user.Admin,
		&passwordHash, &user.Status, &user.DeptID,
		&loginIP, &loginTime,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	if passwordHash != nil {
		user.PasswordHash = *passwordHash
	}
	if loginIP != nil {
		user.LoginIP = *loginIP
	}
	user.LoginTime = loginTime

	return &user, nil
}

// UpdateLoginAudit records the IP and time of a successful login on the
// account row.
func (r *UserRepository) UpdateLoginAudit(ctx context.Context, userID int64, ip string, now time.Time) error {
	query := `
		UPDATE sys_user SET login_ip = $2, login_time = $3, last_active_time = $3
		WHERE id = $1
	`

	tag, err := r.db.Pool.Exec(ctx, query, userID, ip, now)
	if err != nil {
		return fmt.Errorf("failed to update login audit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
