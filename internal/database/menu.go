package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const menuItemColumns = `id, restaurant_id, name, price, discounted_price, is_veg, is_available, created_at, updated_at`

func scanMenuItem(row pgx.Row) (MenuItem, error) {
	var m MenuItem
	err := row.Scan(
		&m.ID, &m.RestaurantID, &m.Name, &m.Price, &m.DiscountedPrice,
		&m.IsVeg, &m.IsAvailable, &m.CreatedAt, &m.UpdatedAt,
	)
	return m, err
}

const getMenuItemForOrder = `
SELECT ` + menuItemColumns + `
FROM menu_items
WHERE id = $1 AND restaurant_id = $2 AND is_available
`

type GetMenuItemForOrderParams struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
}

// GetMenuItemForOrder resolves a line's menu item, treating unavailable
// items the same as missing ones.
func (q *Queries) GetMenuItemForOrder(ctx context.Context, arg GetMenuItemForOrderParams) (MenuItem, error) {
	return scanMenuItem(q.db.QueryRow(ctx, getMenuItemForOrder, arg.ID, arg.RestaurantID))
}

const listMenuItems = `
SELECT ` + menuItemColumns + `
FROM menu_items
WHERE restaurant_id = $1
ORDER BY name
`

func (q *Queries) ListMenuItems(ctx context.Context, restaurantID uuid.UUID) ([]MenuItem, error) {
	rows, err := q.db.Query(ctx, listMenuItems, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []MenuItem
	for rows.Next() {
		m, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

const listRecipeItemsByMenuItem = `
SELECT id, menu_item_id, stock_item_id, quantity_per_unit
FROM recipe_items
WHERE menu_item_id = $1
ORDER BY id
`

func (q *Queries) ListRecipeItemsByMenuItem(ctx context.Context, menuItemID uuid.UUID) ([]RecipeItem, error) {
	rows, err := q.db.Query(ctx, listRecipeItemsByMenuItem, menuItemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []RecipeItem
	for rows.Next() {
		var r RecipeItem
		if err := rows.Scan(&r.ID, &r.MenuItemID, &r.StockItemID, &r.QuantityPerUnit); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}
