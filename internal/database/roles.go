package database

import "context"

const listRolePermissions = `
SELECT role, permission
FROM role_permissions
ORDER BY role, permission
`

func (q *Queries) ListRolePermissions(ctx context.Context) ([]RolePermission, error) {
	rows, err := q.db.Query(ctx, listRolePermissions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pairs []RolePermission
	for rows.Next() {
		var rp RolePermission
		if err := rows.Scan(&rp.Role, &rp.Permission); err != nil {
			return nil, err
		}
		pairs = append(pairs, rp)
	}
	return pairs, rows.Err()
}
