package repositories

import (
	"context"
	"fmt"

	"github.com/zhaoeryu/eu-authd/internal/database"
)

type DeptRepository struct {
	db *database.DB
}

func NewDeptRepository(db *database.DB) *DeptRepository {
	return &DeptRepository{db: db}
}

// AncestorChain returns the department names from the root of the tree down
// to deptID itself. The last element is the department's own name; callers
// use it as the display name.
func (r *DeptRepository) AncestorChain(ctx context.Context, deptID int64) ([]string, error) {
	query := `
		WITH RECURSIVE chain AS (
			SELECT id, parent_id, name, 0 AS depth
			FROM sys_dept WHERE id = $1
			UNION ALL
			SELECT d.id, d.parent_id, d.name, c.depth + 1
			FROM sys_dept d
			JOIN chain c ON d.id = c.parent_id
		)
		SELECT name FROM chain ORDER BY depth DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, deptID)
	if err != nil {
		return nil, fmt.Errorf("failed to query dept chain: %w", err)
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan dept name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dept chain: %w", err)
	}

	return names, nil
}
