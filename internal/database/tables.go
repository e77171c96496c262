package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const tableColumns = `id, restaurant_id, label, capacity, status, current_order_id, updated_at`

func scanTable(row pgx.Row) (DiningTable, error) {
	var t DiningTable
	err := row.Scan(&t.ID, &t.RestaurantID, &t.Label, &t.Capacity, &t.Status, &t.CurrentOrderID, &t.UpdatedAt)
	return t, err
}

const getTable = `
SELECT ` + tableColumns + `
FROM dining_tables
WHERE id = $1 AND restaurant_id = $2
`

type GetTableParams struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
}

func (q *Queries) GetTable(ctx context.Context, arg GetTableParams) (DiningTable, error) {
	return scanTable(q.db.QueryRow(ctx, getTable, arg.ID, arg.RestaurantID))
}

const getTableForUpdate = `
SELECT ` + tableColumns + `
FROM dining_tables
WHERE id = $1 AND restaurant_id = $2
FOR NO KEY UPDATE
`

type GetTableForUpdateParams struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
}

func (q *Queries) GetTableForUpdate(ctx context.Context, arg GetTableForUpdateParams) (DiningTable, error) {
	return scanTable(q.db.QueryRow(ctx, getTableForUpdate, arg.ID, arg.RestaurantID))
}

const listTables = `
SELECT ` + tableColumns + `
FROM dining_tables
WHERE restaurant_id = $1
ORDER BY label
`

func (q *Queries) ListTables(ctx context.Context, restaurantID uuid.UUID) ([]DiningTable, error) {
	rows, err := q.db.Query(ctx, listTables, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []DiningTable
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

const occupyTable = `
UPDATE dining_tables
SET status = 'OCCUPIED', current_order_id = $3, updated_at = now()
WHERE id = $1 AND restaurant_id = $2
  AND (status <> 'OCCUPIED' OR current_order_id = $3)
RETURNING ` + tableColumns

type OccupyTableParams struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
	OrderID      uuid.UUID
}

// OccupyTable claims the table for an order. The guard makes the claim
// idempotent for the same order while rejecting a table already held by a
// different one, which surfaces as pgx.ErrNoRows.
func (q *Queries) OccupyTable(ctx context.Context, arg OccupyTableParams) (DiningTable, error) {
	return scanTable(q.db.QueryRow(ctx, occupyTable, arg.ID, arg.RestaurantID, arg.OrderID))
}

const freeTable = `
UPDATE dining_tables
SET status = 'AVAILABLE', current_order_id = NULL, updated_at = now()
WHERE id = $1 AND restaurant_id = $2
RETURNING ` + tableColumns

type FreeTableParams struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
}

func (q *Queries) FreeTable(ctx context.Context, arg FreeTableParams) (DiningTable, error) {
	return scanTable(q.db.QueryRow(ctx, freeTable, arg.ID, arg.RestaurantID))
}

const freeTableForOrder = `
UPDATE dining_tables
SET status = 'AVAILABLE', current_order_id = NULL, updated_at = now()
WHERE id = $1 AND current_order_id = $2
`

type FreeTableForOrderParams struct {
	ID      uuid.UUID
	OrderID uuid.UUID
}

// FreeTableForOrder releases the table only if the given order still holds
// it, so a stale release cannot clobber a newer seating.
func (q *Queries) FreeTableForOrder(ctx context.Context, arg FreeTableForOrderParams) (int64, error) {
	tag, err := q.db.Exec(ctx, freeTableForOrder, arg.ID, arg.OrderID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
