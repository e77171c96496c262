package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const stockItemColumns = `id, restaurant_id, name, unit, quantity, updated_at`

func scanStockItem(row pgx.Row) (StockItem, error) {
	var s StockItem
	err := row.Scan(&s.ID, &s.RestaurantID, &s.Name, &s.Unit, &s.Quantity, &s.UpdatedAt)
	return s, err
}

const getStockItemForUpdate = `
SELECT ` + stockItemColumns + `
FROM stock_items
WHERE id = $1 AND restaurant_id = $2
FOR UPDATE
`

type GetStockItemForUpdateParams struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
}

func (q *Queries) GetStockItemForUpdate(ctx context.Context, arg GetStockItemForUpdateParams) (StockItem, error) {
	return scanStockItem(q.db.QueryRow(ctx, getStockItemForUpdate, arg.ID, arg.RestaurantID))
}

const listStockItems = `
SELECT ` + stockItemColumns + `
FROM stock_items
WHERE restaurant_id = $1
ORDER BY name
`

func (q *Queries) ListStockItems(ctx context.Context, restaurantID uuid.UUID) ([]StockItem, error) {
	rows, err := q.db.Query(ctx, listStockItems, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []StockItem
	for rows.Next() {
		s, err := scanStockItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

const updateStockQuantity = `
UPDATE stock_items
SET quantity = $2, updated_at = now()
WHERE id = $1
RETURNING ` + stockItemColumns

type UpdateStockQuantityParams struct {
	ID       uuid.UUID
	Quantity pgtype.Numeric
}

func (q *Queries) UpdateStockQuantity(ctx context.Context, arg UpdateStockQuantityParams) (StockItem, error) {
	return scanStockItem(q.db.QueryRow(ctx, updateStockQuantity, arg.ID, arg.Quantity))
}

const stockMovementColumns = `id, restaurant_id, stock_item_id, order_id, previous_quantity, new_quantity, change, cause, created_at`

func scanStockMovement(row pgx.Row) (StockMovement, error) {
	var m StockMovement
	err := row.Scan(
		&m.ID, &m.RestaurantID, &m.StockItemID, &m.OrderID,
		&m.PreviousQuantity, &m.NewQuantity, &m.Change, &m.Cause, &m.CreatedAt,
	)
	return m, err
}

const createStockMovement = `
INSERT INTO stock_movements (restaurant_id, stock_item_id, order_id, previous_quantity, new_quantity, change, cause)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + stockMovementColumns

type CreateStockMovementParams struct {
	RestaurantID     uuid.UUID
	StockItemID      uuid.UUID
	OrderID          pgtype.UUID
	PreviousQuantity pgtype.Numeric
	NewQuantity      pgtype.Numeric
	Change           pgtype.Numeric
	Cause            string
}

func (q *Queries) CreateStockMovement(ctx context.Context, arg CreateStockMovementParams) (StockMovement, error) {
	row := q.db.QueryRow(ctx, createStockMovement,
		arg.RestaurantID, arg.StockItemID, arg.OrderID,
		arg.PreviousQuantity, arg.NewQuantity, arg.Change, arg.Cause,
	)
	return scanStockMovement(row)
}

const listStockMovements = `
SELECT ` + stockMovementColumns + `
FROM stock_movements
WHERE restaurant_id = $1
  AND ($2::uuid IS NULL OR stock_item_id = $2)
ORDER BY created_at DESC
LIMIT $3 OFFSET $4
`

type ListStockMovementsParams struct {
	RestaurantID uuid.UUID
	StockItemID  pgtype.UUID
	Limit        int32
	Offset       int32
}

func (q *Queries) ListStockMovements(ctx context.Context, arg ListStockMovementsParams) ([]StockMovement, error) {
	rows, err := q.db.Query(ctx, listStockMovements, arg.RestaurantID, arg.StockItemID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []StockMovement
	for rows.Next() {
		m, err := scanStockMovement(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}
