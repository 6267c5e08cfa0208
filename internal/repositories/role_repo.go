package repositories

import (
	"context"
	"fmt"

	"github.com/zhaoeryu/eu-authd/internal/database"
	"github.com/zhaoeryu/eu-authd/internal/models"
)

type RoleRepository struct {
	db *database.DB
}

func NewRoleRepository(db *database.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

// RolesForUser returns the roles granted to a user, possibly empty.
func (r *RoleRepository) RolesForUser(ctx context.Context, userID int64) ([]models.Role, error) {
	query := `
		SELECT r.id, r.code, r.name
		FROM sys_role r
		JOIN sys_user_role ur ON ur.role_id = r.id
		WHERE ur.user_id = $1
		ORDER BY r.id
	`

	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query roles: %w", err)
	}
	defer rows.Close()

	roles := make([]models.Role, 0)
	for rows.Next() {
		var role models.Role
		if err := rows.Scan(&role.ID, &role.Code, &role.Name); err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating roles: %w", err)
	}

	return roles, nil
}
