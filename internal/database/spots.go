package database

import (
	"context"

	"github.com/google/uuid"
)

const createSpot = `
INSERT INTO spots (name)
VALUES ($1)
RETURNING id, name, created_at, updated_at
`

func (q *Queries) CreateSpot(ctx context.Context, name string) (Spot, error) {
	row := q.db.QueryRow(ctx, createSpot, name)
	var s Spot
	err := row.Scan(&s.ID, &s.Name, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

const getSpot = `
SELECT id, name, created_at, updated_at
FROM spots
WHERE id = $1
`

func (q *Queries) GetSpot(ctx context.Context, id uuid.UUID) (Spot, error) {
	row := q.db.QueryRow(ctx, getSpot, id)
	var s Spot
	err := row.Scan(&s.ID, &s.Name, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

const listSpots = `
SELECT id, name, created_at, updated_at
FROM spots
ORDER BY name
`

func (q *Queries) ListSpots(ctx context.Context) ([]Spot, error) {
	rows, err := q.db.Query(ctx, listSpots)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var spots []Spot
	for rows.Next() {
		var s Spot
		if err := rows.Scan(&s.ID, &s.Name, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		spots = append(spots, s)
	}
	return spots, rows.Err()
}

const renameSpot = `
UPDATE spots
SET name = $2, updated_at = now()
WHERE id = $1
RETURNING id, name, created_at, updated_at
`

type RenameSpotParams struct {
	ID   uuid.UUID
	Name string
}

func (q *Queries) RenameSpot(ctx context.Context, arg RenameSpotParams) (Spot, error) {
	row := q.db.QueryRow(ctx, renameSpot, arg.ID, arg.Name)
	var s Spot
	err := row.Scan(&s.ID, &s.Name, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}
