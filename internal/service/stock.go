package service

import (
	"context"
	"fmt"

	"github.com/dineops/api/internal/database"
	"github.com/dineops/api/internal/enum"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// stockDeductor is the slice of store methods the deduction pass needs.
// Both OrderStore and TicketStore satisfy it.
type stockDeductor interface {
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
	ListRecipeItemsByMenuItem(ctx context.Context, menuItemID uuid.UUID) ([]database.RecipeItem, error)
	GetStockItemForUpdate(ctx context.Context, arg database.GetStockItemForUpdateParams) (database.StockItem, error)
	UpdateStockQuantity(ctx context.Context, arg database.UpdateStockQuantityParams) (database.StockItem, error)
	CreateStockMovement(ctx context.Context, arg database.CreateStockMovementParams) (database.StockMovement, error)
}

// deductOrderStock walks the order's lines, resolves each menu item's
// ingredient requirements, and deducts required quantities from stock.
// Balances are clamped at zero and every change is recorded as a movement
// row referencing the order. Insufficient stock never fails the caller's
// transition; the movement rows are the audit trail for the discrepancy.
func deductOrderStock(ctx context.Context, store stockDeductor, order database.Order) error {
	items, err := store.ListOrderItemsByOrder(ctx, order.ID)
	if err != nil {
		return fmt.Errorf("list order items: %w", err)
	}

	for _, item := range items {
		recipe, err := store.ListRecipeItemsByMenuItem(ctx, item.MenuItemID)
		if err != nil {
			return fmt.Errorf("list recipe items: %w", err)
		}
		for _, req := range recipe {
			required := numericToDecimal(req.QuantityPerUnit).Mul(decimal.NewFromInt32(item.Quantity))
			if !required.IsPositive() {
				continue
			}

			stock, err := store.GetStockItemForUpdate(ctx, database.GetStockItemForUpdateParams{
				ID:           req.StockItemID,
				RestaurantID: order.RestaurantID,
			})
			if err != nil {
				return fmt.Errorf("get stock item: %w", err)
			}

			previous := numericToDecimal(stock.Quantity)
			newBalance := previous.Sub(required)
			if newBalance.IsNegative() {
				newBalance = decimal.Zero
			}

			if _, err := store.UpdateStockQuantity(ctx, database.UpdateStockQuantityParams{
				ID:       stock.ID,
				Quantity: decimalToNumeric(newBalance),
			}); err != nil {
				return fmt.Errorf("update stock quantity: %w", err)
			}

			if _, err := store.CreateStockMovement(ctx, database.CreateStockMovementParams{
				RestaurantID:     order.RestaurantID,
				StockItemID:      stock.ID,
				OrderID:          pgtype.UUID{Bytes: order.ID, Valid: true},
				PreviousQuantity: decimalToNumeric(previous),
				NewQuantity:      decimalToNumeric(newBalance),
				Change:           decimalToNumeric(newBalance.Sub(previous)),
				Cause:            enum.MovementCauseOrderDeduction,
			}); err != nil {
				return fmt.Errorf("create stock movement: %w", err)
			}
		}
	}
	return nil
}
